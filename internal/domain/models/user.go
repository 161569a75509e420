package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
)

// User is a tenant-scoped account. Email is unique per organization, not
// globally.
type User struct {
	ID             string             `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string             `gorm:"type:uuid;not null;uniqueIndex:idx_users_org_email" json:"organization_id"`
	Email          string             `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_org_email" json:"email"`
	PasswordHash   string             `gorm:"type:varchar(255);not null" json:"-"`
	FirstName      string             `gorm:"type:varchar(100)" json:"first_name"`
	LastName       string             `gorm:"type:varchar(100)" json:"last_name"`
	Role           constants.UserRole `gorm:"type:varchar(32);not null" json:"role"`
	IsActive       bool               `gorm:"default:true" json:"is_active"`
	LastLoginAt    *time.Time         `json:"last_login_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// TableName specifies the database table name
func (User) TableName() string {
	return "users"
}

// NewUser creates a user in the given organization. passwordHash must already
// be hashed; raw passwords never reach the domain layer.
func NewUser(orgID, email, passwordHash, firstName, lastName string, role constants.UserRole) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.ErrInvalidRequest("email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, errors.ErrInvalidRequest("invalid email address: %s", email)
	}
	if passwordHash == "" {
		return nil, errors.ErrInvalidRequest("password hash is required")
	}
	if !IsValidRole(role) {
		return nil, errors.ErrInvalidRequest("invalid role: %s", role)
	}
	return &User{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Email:          email,
		PasswordHash:   passwordHash,
		FirstName:      strings.TrimSpace(firstName),
		LastName:       strings.TrimSpace(lastName),
		Role:           role,
		IsActive:       true,
	}, nil
}

// NormalizeEmail lowercases and trims an email for tenant-scoped comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidRole reports whether role is one of the accepted user roles.
func IsValidRole(role constants.UserRole) bool {
	for _, r := range constants.ValidUserRoles {
		if r == role {
			return true
		}
	}
	return false
}

// FullName returns the display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin reports whether the user administers the organization.
func (u *User) IsAdmin() bool {
	return u.Role == constants.RoleAdmin
}

// IsInstructor reports whether the user can manage courses.
func (u *User) IsInstructor() bool {
	return u.Role == constants.RoleInstructor
}

// CanManageCourses reports whether the user may create and edit courses.
func (u *User) CanManageCourses() bool {
	return u.Role == constants.RoleAdmin || u.Role == constants.RoleInstructor
}

// RecordLogin stamps the last successful login time.
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
}

// Deactivate disables the account. Tokens already issued are rejected at
// verification time.
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
}
