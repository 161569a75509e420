package dto

import "time"

// CreateTeamRequest creates a self-formed team on a project.
type CreateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

// TeamResponse is the public view of a team.
type TeamResponse struct {
	ID        string               `json:"id"`
	ProjectID string               `json:"project_id"`
	Name      string               `json:"name"`
	Origin    string               `json:"origin"`
	IsLocked  bool                 `json:"is_locked"`
	Score     float64              `json:"score,omitempty"`
	Members   []TeamMemberResponse `json:"members"`
	CreatedAt time.Time            `json:"created_at"`
}

// TeamMemberResponse is one member of a team.
type TeamMemberResponse struct {
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// FormationJobStatus reports the state of an asynchronous formation run.
type FormationJobStatus struct {
	ProjectID  string     `json:"project_id"`
	State      string     `json:"state"` // running, completed, failed
	TeamCount  int        `json:"team_count,omitempty"`
	Unassigned []string   `json:"unassigned,omitempty"`
	Score      float64    `json:"score,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// CompositionReport summarizes role coverage across a project's teams.
type CompositionReport struct {
	ProjectID       string             `json:"project_id"`
	TeamCount       int                `json:"team_count"`
	StudentsTeamed  int                `json:"students_teamed"`
	AverageScore    float64            `json:"average_score"`
	RoleDistribution map[string]int    `json:"role_distribution"`
	TeamsMissingRoles map[string][]string `json:"teams_missing_roles,omitempty"`
}
