package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/elevate-edu/elevate/pkg/errors"
)

// TeamOrigin records how a team came to exist.
type TeamOrigin string

const (
	// TeamOriginSelfFormed marks a team created by students
	TeamOriginSelfFormed TeamOrigin = "self_formed"

	// TeamOriginAutoFormed marks a team produced by the formation engine
	TeamOriginAutoFormed TeamOrigin = "auto_formed"

	// TeamOriginInstructor marks a team assembled manually by an instructor
	TeamOriginInstructor TeamOrigin = "instructor_assigned"
)

// Team is a group of students working on one project. A locked team rejects
// membership changes.
type Team struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string     `gorm:"type:uuid;not null;index" json:"organization_id"`
	ProjectID      string     `gorm:"type:uuid;not null;index" json:"project_id"`
	Name           string     `gorm:"type:varchar(120);not null" json:"name"`
	Origin         TeamOrigin `gorm:"type:varchar(32);not null" json:"origin"`
	IsLocked       bool       `gorm:"default:false" json:"is_locked"`

	// Score is the formation engine's composition score; zero for
	// self-formed teams.
	Score float64 `gorm:"default:0" json:"score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// TableName specifies the database table name
func (Team) TableName() string {
	return "teams"
}

// NewTeam creates an empty team for a project.
func NewTeam(orgID, projectID, name string, origin TeamOrigin) *Team {
	return &Team{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		ProjectID:      projectID,
		Name:           name,
		Origin:         origin,
	}
}

// AddMember appends a member, enforcing the lock and the size ceiling.
func (t *Team) AddMember(userID string, maxSize int) error {
	if t.IsLocked {
		return errors.ErrTeamLocked(t.ID)
	}
	if maxSize > 0 && len(t.Members) >= maxSize {
		return errors.ErrTeamFull(t.ID)
	}
	for _, m := range t.Members {
		if m.UserID == userID {
			return errors.ErrConflict("user is already a team member")
		}
	}
	t.Members = append(t.Members, TeamMember{
		ID:             uuid.New().String(),
		TeamID:         t.ID,
		UserID:         userID,
		OrganizationID: t.OrganizationID,
		JoinedAt:       time.Now(),
	})
	return nil
}

// RemoveMember removes a member, enforcing the lock.
func (t *Team) RemoveMember(userID string) error {
	if t.IsLocked {
		return errors.ErrTeamLocked(t.ID)
	}
	for i, m := range t.Members {
		if m.UserID == userID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			return nil
		}
	}
	return errors.ErrNotFound("team member", userID)
}

// Lock freezes the roster.
func (t *Team) Lock() {
	t.IsLocked = true
	t.UpdatedAt = time.Now()
}

// MemberIDs returns the member user ids in roster order.
func (t *Team) MemberIDs() []string {
	ids := make([]string, len(t.Members))
	for i, m := range t.Members {
		ids[i] = m.UserID
	}
	return ids
}

// TeamMember links a student to a team.
type TeamMember struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	TeamID         string    `gorm:"type:uuid;not null;uniqueIndex:idx_team_members" json:"team_id"`
	UserID         string    `gorm:"type:uuid;not null;uniqueIndex:idx_team_members" json:"user_id"`
	OrganizationID string    `gorm:"type:uuid;not null" json:"organization_id"`
	JoinedAt       time.Time `json:"joined_at"`
}

// TableName specifies the database table name
func (TeamMember) TableName() string {
	return "team_members"
}
