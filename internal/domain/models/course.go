package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
)

// Course is a tenant-scoped course. Code is unique per organization.
type Course struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string `gorm:"type:uuid;not null;uniqueIndex:idx_courses_org_code" json:"organization_id"`
	Code           string `gorm:"type:varchar(32);not null;uniqueIndex:idx_courses_org_code" json:"code"`
	Title          string `gorm:"type:varchar(255);not null" json:"title"`
	Description    string `gorm:"type:text" json:"description,omitempty"`

	// Capacity of zero means unlimited.
	Capacity           int        `gorm:"default:0" json:"capacity"`
	EnrollmentDeadline *time.Time `json:"enrollment_deadline,omitempty"`
	AutoApproval       bool       `gorm:"default:true" json:"auto_approval"`
	IsActive           bool       `gorm:"default:true" json:"is_active"`

	CreatedBy string    `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Instructors []CourseInstructor `gorm:"foreignKey:CourseID" json:"instructors,omitempty"`
}

// TableName specifies the database table name
func (Course) TableName() string {
	return "courses"
}

// NewCourse creates a course and assigns the creator as primary instructor.
func NewCourse(orgID, code, title, description, createdBy string) (*Course, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errors.ErrInvalidRequest("course code is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, errors.ErrInvalidRequest("course title is required")
	}
	id := uuid.New().String()
	return &Course{
		ID:             id,
		OrganizationID: orgID,
		Code:           code,
		Title:          strings.TrimSpace(title),
		Description:    strings.TrimSpace(description),
		AutoApproval:   true,
		IsActive:       true,
		CreatedBy:      createdBy,
		Instructors: []CourseInstructor{
			{
				ID:             uuid.New().String(),
				CourseID:       id,
				UserID:         createdBy,
				OrganizationID: orgID,
				Role:           constants.InstructorRolePrimary,
			},
		},
	}, nil
}

// EnrollmentOpen reports whether new enrollments are accepted at the given
// time. Capacity is checked separately against the active enrollment count.
func (c *Course) EnrollmentOpen(at time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.EnrollmentDeadline != nil && at.After(*c.EnrollmentDeadline) {
		return false
	}
	return true
}

// HasCapacityFor reports whether activeCount more enrollments fit.
func (c *Course) HasCapacityFor(activeCount int) bool {
	return c.Capacity == 0 || activeCount < c.Capacity
}

// HasInstructor reports whether userID is assigned to the course in any
// instructor role.
func (c *Course) HasInstructor(userID string) bool {
	for _, ci := range c.Instructors {
		if ci.UserID == userID {
			return true
		}
	}
	return false
}

// CourseInstructor links an instructor to a course. Roles are descriptive
// only; every assigned instructor has the same permissions on the course.
type CourseInstructor struct {
	ID             string                   `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID       string                   `gorm:"type:uuid;not null;uniqueIndex:idx_course_instructors" json:"course_id"`
	UserID         string                   `gorm:"type:uuid;not null;uniqueIndex:idx_course_instructors" json:"user_id"`
	OrganizationID string                   `gorm:"type:uuid;not null" json:"organization_id"`
	Role           constants.InstructorRole `gorm:"type:varchar(32);not null" json:"role"`
	CreatedAt      time.Time                `json:"created_at"`
}

// TableName specifies the database table name
func (CourseInstructor) TableName() string {
	return "course_instructors"
}
