package dto

import "time"

// CreateCourseRequest creates a course in the current tenant.
type CreateCourseRequest struct {
	Code               string     `json:"code" binding:"required"`
	Title              string     `json:"title" binding:"required"`
	Description        string     `json:"description"`
	Capacity           int        `json:"capacity" binding:"gte=0"`
	EnrollmentDeadline *time.Time `json:"enrollment_deadline"`
	AutoApproval       *bool      `json:"auto_approval"`
}

// UpdateCourseRequest edits a course. Pointer fields distinguish "unset".
type UpdateCourseRequest struct {
	Title              *string    `json:"title"`
	Description        *string    `json:"description"`
	Capacity           *int       `json:"capacity"`
	EnrollmentDeadline *time.Time `json:"enrollment_deadline"`
	AutoApproval       *bool      `json:"auto_approval"`
	IsActive           *bool      `json:"is_active"`
}

// AddInstructorRequest assigns an instructor to a course.
type AddInstructorRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role" binding:"required,oneof=primary_instructor co_instructor teaching_assistant"`
}

// CourseResponse is the public view of a course.
type CourseResponse struct {
	ID                 string               `json:"id"`
	Code               string               `json:"code"`
	Title              string               `json:"title"`
	Description        string               `json:"description,omitempty"`
	Capacity           int                  `json:"capacity"`
	EnrollmentDeadline *time.Time           `json:"enrollment_deadline,omitempty"`
	AutoApproval       bool                 `json:"auto_approval"`
	IsActive           bool                 `json:"is_active"`
	Instructors        []InstructorResponse `json:"instructors,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

// InstructorResponse is one instructor assignment on a course.
type InstructorResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// EnrollRequest adds a student to a course.
type EnrollRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// EnrollmentResponse is the public view of an enrollment.
type EnrollmentResponse struct {
	ID          string     `json:"id"`
	CourseID    string     `json:"course_id"`
	UserID      string     `json:"user_id"`
	Status      string     `json:"status"`
	Method      string     `json:"method"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DroppedAt   *time.Time `json:"dropped_at,omitempty"`
}

// CSVImportResult reports the outcome of a roster import.
type CSVImportResult struct {
	Enrolled int      `json:"enrolled"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
