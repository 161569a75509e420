package dto

import "time"

// CreateOrganizationRequest provisions a new tenant.
type CreateOrganizationRequest struct {
	Name   string `json:"name" binding:"required"`
	Slug   string `json:"slug" binding:"required"`
	Domain string `json:"domain"`

	// Admin bootstrap account for the new tenant.
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	AdminPassword string `json:"admin_password" binding:"required,min=8"`
}

// UpdateOrganizationSettingsRequest tunes a tenant's settings. Pointer
// fields distinguish "unset" from zero values.
type UpdateOrganizationSettingsRequest struct {
	Plan                    *string `json:"plan"`
	AllowSelfEnrollment     *bool   `json:"allow_self_enrollment"`
	AllowSelfFormedTeams    *bool   `json:"allow_self_formed_teams"`
	EnableAnalytics         *bool   `json:"enable_analytics"`
	DefaultTeamSizeMin      *int    `json:"default_team_size_min"`
	DefaultTeamSizeMax      *int    `json:"default_team_size_max"`
	FormationTimeoutSeconds *int    `json:"formation_timeout_seconds"`
}

// OrganizationResponse is the public view of a tenant.
type OrganizationResponse struct {
	ID        string                        `json:"id"`
	Name      string                        `json:"name"`
	Slug      string                        `json:"slug"`
	Domain    string                        `json:"domain,omitempty"`
	IsActive  bool                          `json:"is_active"`
	CreatedAt time.Time                     `json:"created_at"`
	Settings  *OrganizationSettingsResponse `json:"settings,omitempty"`
}

// OrganizationSettingsResponse is the public view of tenant settings.
type OrganizationSettingsResponse struct {
	Plan                    string `json:"plan"`
	AllowSelfEnrollment     bool   `json:"allow_self_enrollment"`
	AllowSelfFormedTeams    bool   `json:"allow_self_formed_teams"`
	EnableAnalytics         bool   `json:"enable_analytics"`
	DefaultTeamSizeMin      int    `json:"default_team_size_min"`
	DefaultTeamSizeMax      int    `json:"default_team_size_max"`
	FormationTimeoutSeconds int    `json:"formation_timeout_seconds"`
}
