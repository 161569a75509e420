package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elevate-edu/elevate/pkg/errors"
)

// Project is a team-based assignment within a course. Teams are formed per
// project, either by students (when the tenant allows it) or by the
// formation engine.
type Project struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string `gorm:"type:uuid;not null;index" json:"organization_id"`
	CourseID       string `gorm:"type:uuid;not null;index" json:"course_id"`
	Title          string `gorm:"type:varchar(255);not null" json:"title"`
	Description    string `gorm:"type:text" json:"description,omitempty"`

	StartDate         time.Time  `gorm:"not null" json:"start_date"`
	DueDate           time.Time  `gorm:"not null" json:"due_date"`
	FormationDeadline *time.Time `json:"formation_deadline,omitempty"`

	TeamSizeMin int  `gorm:"not null" json:"team_size_min"`
	TeamSizeMax int  `gorm:"not null" json:"team_size_max"`
	IsPublished bool `gorm:"default:false" json:"is_published"`

	CreatedBy string    `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a project and validates its date and size invariants.
func NewProject(orgID, courseID, title, description, createdBy string,
	start, due time.Time, formationDeadline *time.Time, sizeMin, sizeMax int) (*Project, error) {

	if strings.TrimSpace(title) == "" {
		return nil, errors.ErrInvalidRequest("project title is required")
	}
	p := &Project{
		ID:                uuid.New().String(),
		OrganizationID:    orgID,
		CourseID:          courseID,
		Title:             strings.TrimSpace(title),
		Description:       strings.TrimSpace(description),
		StartDate:         start,
		DueDate:           due,
		FormationDeadline: formationDeadline,
		TeamSizeMin:       sizeMin,
		TeamSizeMax:       sizeMax,
		CreatedBy:         createdBy,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the project invariants: start before due, formation
// deadline no later than due, and a sane team size range.
func (p *Project) Validate() error {
	if !p.StartDate.Before(p.DueDate) {
		return errors.ErrInvalidRequest("project start date must be before due date")
	}
	if p.FormationDeadline != nil && p.FormationDeadline.After(p.DueDate) {
		return errors.ErrInvalidRequest("formation deadline must not be after due date")
	}
	if p.TeamSizeMin < 2 {
		return errors.ErrInvalidRequest("minimum team size must be at least 2")
	}
	if p.TeamSizeMax < p.TeamSizeMin {
		return errors.ErrInvalidRequest("maximum team size must not be below the minimum")
	}
	return nil
}

// Publish makes the project visible to students.
func (p *Project) Publish() {
	p.IsPublished = true
	p.UpdatedAt = time.Now()
}

// FormationOpen reports whether teams may still be created or changed at the
// given time.
func (p *Project) FormationOpen(at time.Time) bool {
	if p.FormationDeadline != nil && at.After(*p.FormationDeadline) {
		return false
	}
	return at.Before(p.DueDate)
}
