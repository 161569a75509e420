package dto

import "time"

// CreateProjectRequest creates a project under a course.
type CreateProjectRequest struct {
	Title             string     `json:"title" binding:"required"`
	Description       string     `json:"description"`
	StartDate         time.Time  `json:"start_date" binding:"required"`
	DueDate           time.Time  `json:"due_date" binding:"required"`
	FormationDeadline *time.Time `json:"formation_deadline"`
	TeamSizeMin       int        `json:"team_size_min"`
	TeamSizeMax       int        `json:"team_size_max"`
}

// ProjectResponse is the public view of a project.
type ProjectResponse struct {
	ID                string     `json:"id"`
	CourseID          string     `json:"course_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	StartDate         time.Time  `json:"start_date"`
	DueDate           time.Time  `json:"due_date"`
	FormationDeadline *time.Time `json:"formation_deadline,omitempty"`
	TeamSizeMin       int        `json:"team_size_min"`
	TeamSizeMax       int        `json:"team_size_max"`
	IsPublished       bool       `json:"is_published"`
	CreatedAt         time.Time  `json:"created_at"`
}

// QuestionnaireStats summarizes questionnaire completion for a project.
type QuestionnaireStats struct {
	ProjectID       string  `json:"project_id"`
	Responses       int     `json:"responses"`
	ActiveStudents  int     `json:"active_students"`
	CompletionRatio float64 `json:"completion_ratio"`
}

// SubmitQuestionnaireRequest records a student's formation inputs.
type SubmitQuestionnaireRequest struct {
	BelbinScores       map[string]int `json:"belbin_scores" binding:"required"`
	Skills             map[string]int `json:"skills"`
	Availability       string         `json:"availability" binding:"required"`
	PreferredTeammates []string       `json:"preferred_teammates"`
}

// QuestionnaireResponseDTO is the public view of a submitted questionnaire.
type QuestionnaireResponseDTO struct {
	ID                 string         `json:"id"`
	ProjectID          string         `json:"project_id"`
	UserID             string         `json:"user_id"`
	BelbinScores       map[string]int `json:"belbin_scores"`
	Skills             map[string]int `json:"skills,omitempty"`
	Availability       string         `json:"availability"`
	PreferredTeammates []string       `json:"preferred_teammates,omitempty"`
	SubmittedAt        time.Time      `json:"submitted_at"`
}
