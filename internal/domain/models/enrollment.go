package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
)

// Enrollment links a student to a course. Status transitions are
// pending -> active -> dropped|completed, with instructor-created
// enrollments starting active.
type Enrollment struct {
	ID             string                     `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string                     `gorm:"type:uuid;not null;index" json:"organization_id"`
	CourseID       string                     `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_course_user" json:"course_id"`
	UserID         string                     `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_course_user" json:"user_id"`
	Status         constants.EnrollmentStatus `gorm:"type:varchar(32);not null" json:"status"`
	Method         constants.EnrollmentMethod `gorm:"type:varchar(32);not null" json:"method"`
	EnrolledAt     time.Time                  `json:"enrolled_at"`
	CompletedAt    *time.Time                 `json:"completed_at,omitempty"`
	DroppedAt      *time.Time                 `json:"dropped_at,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// TableName specifies the database table name
func (Enrollment) TableName() string {
	return "enrollments"
}

// NewEnrollment creates an enrollment. Self-enrollments start pending unless
// the course auto-approves; every other method starts active.
func NewEnrollment(orgID, courseID, userID string, method constants.EnrollmentMethod, autoApprove bool) *Enrollment {
	status := constants.EnrollmentStatusActive
	if method == constants.EnrollmentMethodSelf && !autoApprove {
		status = constants.EnrollmentStatusPending
	}
	return &Enrollment{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		CourseID:       courseID,
		UserID:         userID,
		Status:         status,
		Method:         method,
		EnrolledAt:     time.Now(),
	}
}

// Approve moves a pending enrollment to active.
func (e *Enrollment) Approve() error {
	if e.Status != constants.EnrollmentStatusPending {
		return errors.ErrConflict("enrollment is not pending")
	}
	e.Status = constants.EnrollmentStatusActive
	e.UpdatedAt = time.Now()
	return nil
}

// Drop moves a pending or active enrollment to dropped.
func (e *Enrollment) Drop() error {
	if e.Status == constants.EnrollmentStatusCompleted {
		return errors.ErrConflict("completed enrollment cannot be dropped")
	}
	if e.Status == constants.EnrollmentStatusDropped {
		return errors.ErrConflict("enrollment is already dropped")
	}
	now := time.Now()
	e.Status = constants.EnrollmentStatusDropped
	e.DroppedAt = &now
	e.UpdatedAt = now
	return nil
}

// Reenroll reactivates a dropped enrollment as if newly created, reusing the
// row that holds the (course, user) key. The status follows the same rules
// as NewEnrollment.
func (e *Enrollment) Reenroll(method constants.EnrollmentMethod, autoApprove bool) error {
	if e.Status != constants.EnrollmentStatusDropped {
		return errors.ErrConflict("only dropped enrollments can be re-enrolled")
	}
	status := constants.EnrollmentStatusActive
	if method == constants.EnrollmentMethodSelf && !autoApprove {
		status = constants.EnrollmentStatusPending
	}
	now := time.Now()
	e.Status = status
	e.Method = method
	e.EnrolledAt = now
	e.DroppedAt = nil
	e.CompletedAt = nil
	e.UpdatedAt = now
	return nil
}

// Complete moves an active enrollment to completed.
func (e *Enrollment) Complete() error {
	if e.Status != constants.EnrollmentStatusActive {
		return errors.ErrConflict("only active enrollments can be completed")
	}
	now := time.Now()
	e.Status = constants.EnrollmentStatusCompleted
	e.CompletedAt = &now
	e.UpdatedAt = now
	return nil
}

// IsActive reports whether the enrollment currently counts against course
// capacity and team membership.
func (e *Enrollment) IsActive() bool {
	return e.Status == constants.EnrollmentStatusActive
}
