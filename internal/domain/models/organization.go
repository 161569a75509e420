// Package models defines the domain entities of the Elevate platform. Every
// tenant-owned entity carries an OrganizationID and all queries are scoped by
// it at the repository layer.
package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
)

// slugPattern restricts organization slugs to lowercase letters, digits and
// hyphens.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Organization is the tenant root entity. Slug and Domain are globally
// unique and both resolve incoming requests to a tenant. Domain is optional
// and stored as NULL when absent so tenants without a custom domain do not
// collide on the unique index.
type Organization struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string     `gorm:"type:varchar(63);uniqueIndex;not null" json:"slug"`
	Domain    *string    `gorm:"type:varchar(255);uniqueIndex" json:"domain,omitempty"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"`

	Settings *OrganizationSettings `gorm:"foreignKey:OrganizationID" json:"settings,omitempty"`
}

// TableName specifies the database table name
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization creates an organization with defaults and default settings.
func NewOrganization(name, slug, domain string) (*Organization, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.ErrInvalidRequest("organization name is required")
	}
	id := uuid.New().String()
	org := &Organization{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Slug:     slug,
		IsActive: true,
		Settings: NewOrganizationSettings(id),
	}
	if d := strings.ToLower(strings.TrimSpace(domain)); d != "" {
		org.Domain = &d
	}
	return org, nil
}

// ValidateSlug checks the tenant slug format.
func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.ErrInvalidRequest("organization slug is required")
	}
	if len(slug) > 63 {
		return errors.ErrInvalidRequest("organization slug must be at most 63 characters")
	}
	if !slugPattern.MatchString(slug) {
		return errors.ErrInvalidRequest("organization slug may contain only lowercase letters, digits and hyphens")
	}
	if constants.ReservedSubdomains[slug] {
		return errors.ErrInvalidRequest("organization slug %q is reserved", slug)
	}
	return nil
}

// Deactivate suspends the tenant. All requests resolving to it are rejected.
func (o *Organization) Deactivate() {
	o.IsActive = false
	o.UpdatedAt = time.Now()
}

// Activate re-enables a suspended tenant.
func (o *Organization) Activate() {
	o.IsActive = true
	o.UpdatedAt = time.Now()
}

// SubscriptionPlan represents a tenant's subscription tier
type SubscriptionPlan string

const (
	PlanFree       SubscriptionPlan = "free"
	PlanStandard   SubscriptionPlan = "standard"
	PlanEnterprise SubscriptionPlan = "enterprise"
)

// OrganizationSettings holds per-tenant tunables. One row per organization.
type OrganizationSettings struct {
	ID             string           `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string           `gorm:"type:uuid;uniqueIndex;not null" json:"organization_id"`
	Plan           SubscriptionPlan `gorm:"type:varchar(32);default:'free'" json:"plan"`

	// Feature flags
	AllowSelfEnrollment  bool `gorm:"default:true" json:"allow_self_enrollment"`
	AllowSelfFormedTeams bool `gorm:"default:true" json:"allow_self_formed_teams"`
	EnableAnalytics      bool `gorm:"default:false" json:"enable_analytics"`

	// Team formation defaults
	DefaultTeamSizeMin      int           `gorm:"default:3" json:"default_team_size_min"`
	DefaultTeamSizeMax      int           `gorm:"default:6" json:"default_team_size_max"`
	FormationTimeoutSeconds int           `gorm:"default:30" json:"formation_timeout_seconds"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name
func (OrganizationSettings) TableName() string {
	return "organization_settings"
}

// NewOrganizationSettings creates settings with platform defaults.
func NewOrganizationSettings(orgID string) *OrganizationSettings {
	return &OrganizationSettings{
		ID:                      uuid.New().String(),
		OrganizationID:          orgID,
		Plan:                    PlanFree,
		AllowSelfEnrollment:     true,
		AllowSelfFormedTeams:    true,
		DefaultTeamSizeMin:      constants.DefaultTeamSizeMin,
		DefaultTeamSizeMax:      constants.DefaultTeamSizeMax,
		FormationTimeoutSeconds: int(constants.DefaultFormationTimeout.Seconds()),
	}
}

// Validate checks the settings invariants.
func (s *OrganizationSettings) Validate() error {
	if s.DefaultTeamSizeMin < 2 {
		return errors.ErrInvalidRequest("default minimum team size must be at least 2")
	}
	if s.DefaultTeamSizeMax < s.DefaultTeamSizeMin {
		return errors.ErrInvalidRequest("default maximum team size must not be below the minimum")
	}
	if s.FormationTimeoutSeconds <= 0 {
		return errors.ErrInvalidRequest("formation timeout must be positive")
	}
	return nil
}

// FormationTimeout returns the configured formation budget as a duration.
func (s *OrganizationSettings) FormationTimeout() time.Duration {
	return time.Duration(s.FormationTimeoutSeconds) * time.Second
}
