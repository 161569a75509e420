// Package constants defines system-wide constants for the Elevate platform.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// User Role Constants
// ================================================================================

// UserRole represents the role of a user within an organization
type UserRole string

const (
	// RoleAdmin represents an organization administrator
	RoleAdmin UserRole = "admin"

	// RoleInstructor represents a course instructor
	RoleInstructor UserRole = "instructor"

	// RoleStudent represents an enrolled student
	RoleStudent UserRole = "student"
)

// ValidUserRoles lists every role accepted at registration time.
var ValidUserRoles = []UserRole{RoleAdmin, RoleInstructor, RoleStudent}

// ================================================================================
// Enrollment Constants
// ================================================================================

// EnrollmentStatus represents the lifecycle status of a course enrollment
type EnrollmentStatus string

const (
	// EnrollmentStatusPending indicates the enrollment awaits instructor approval
	EnrollmentStatusPending EnrollmentStatus = "pending"

	// EnrollmentStatusActive indicates the student is currently enrolled
	EnrollmentStatusActive EnrollmentStatus = "active"

	// EnrollmentStatusDropped indicates the student dropped the course
	EnrollmentStatusDropped EnrollmentStatus = "dropped"

	// EnrollmentStatusCompleted indicates the course has been finished
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

// EnrollmentMethod records how an enrollment was created
type EnrollmentMethod string

const (
	EnrollmentMethodSelf       EnrollmentMethod = "self_enrolled"
	EnrollmentMethodInstructor EnrollmentMethod = "instructor_added"
	EnrollmentMethodCSVImport  EnrollmentMethod = "csv_import"
	EnrollmentMethodAdmin      EnrollmentMethod = "admin_added"
)

// ================================================================================
// Instructor Role Constants
// ================================================================================

// InstructorRole represents an instructor's role on a course.
// All instructor roles carry equal permissions.
type InstructorRole string

const (
	InstructorRolePrimary   InstructorRole = "primary_instructor"
	InstructorRoleCo        InstructorRole = "co_instructor"
	InstructorRoleAssistant InstructorRole = "teaching_assistant"
)

// ================================================================================
// Belbin Role Constants
// ================================================================================

// BelbinRole identifies one of the nine Belbin team roles used by the
// questionnaire and the team formation engine.
type BelbinRole string

const (
	BelbinPlant                BelbinRole = "plant"
	BelbinResourceInvestigator BelbinRole = "resource_investigator"
	BelbinCoordinator          BelbinRole = "coordinator"
	BelbinShaper               BelbinRole = "shaper"
	BelbinMonitorEvaluator     BelbinRole = "monitor_evaluator"
	BelbinTeamworker           BelbinRole = "teamworker"
	BelbinImplementer          BelbinRole = "implementer"
	BelbinCompleterFinisher    BelbinRole = "completer_finisher"
	BelbinSpecialist           BelbinRole = "specialist"
)

// AllBelbinRoles lists the nine roles in their canonical order.
var AllBelbinRoles = []BelbinRole{
	BelbinPlant,
	BelbinResourceInvestigator,
	BelbinCoordinator,
	BelbinShaper,
	BelbinMonitorEvaluator,
	BelbinTeamworker,
	BelbinImplementer,
	BelbinCompleterFinisher,
	BelbinSpecialist,
}

// ================================================================================
// Token Constants
// ================================================================================

// TokenType distinguishes access tokens from refresh tokens in the "type" claim
type TokenType string

const (
	// TokenTypeAccess represents a short-lived access token
	TokenTypeAccess TokenType = "access"

	// TokenTypeRefresh represents a long-lived refresh token
	TokenTypeRefresh TokenType = "refresh"
)

const (
	// AccessTokenDefaultTTL is the default lifetime for access tokens (30 minutes)
	AccessTokenDefaultTTL = 30 * time.Minute

	// RefreshTokenDefaultTTL is the default lifetime for refresh tokens (7 days)
	RefreshTokenDefaultTTL = 7 * 24 * time.Hour
)

// ================================================================================
// Team Formation Constants
// ================================================================================

const (
	// DefaultTeamSizeMin is the default lower bound for auto-formed teams
	DefaultTeamSizeMin = 3

	// DefaultTeamSizeMax is the default upper bound for auto-formed teams
	DefaultTeamSizeMax = 6

	// DefaultFormationTimeout is the default time budget for a formation run
	DefaultFormationTimeout = 30 * time.Second

	// BelbinScoreMin and BelbinScoreMax bound a single Belbin role score
	BelbinScoreMin = 0
	BelbinScoreMax = 100

	// SkillRatingMin and SkillRatingMax bound a single skill self-rating
	SkillRatingMin = 1
	SkillRatingMax = 5

	// HoursPerWeek is the length of the availability bitmask (7 days x 24 hours)
	HoursPerWeek = 7 * 24
)

// ================================================================================
// Cache TTL Constants
// ================================================================================

const (
	// OrgSettingsCacheTTL is the Redis cache lifetime for organization settings
	OrgSettingsCacheTTL = 30 * time.Minute

	// OrgSettingsL1CacheTTL is the in-memory (L1) cache lifetime for organization settings
	OrgSettingsL1CacheTTL = 1 * time.Minute

	// FormationJobStatusTTL is how long a formation job status survives in Redis
	FormationJobStatusTTL = 1 * time.Hour

	// RateLimitWindow is the sliding window used by the per-tenant rate limiter
	RateLimitWindow = 1 * time.Minute
)

// ================================================================================
// Domain Event Constants
// ================================================================================

// EventType identifies a domain event on the event bus
type EventType string

const (
	EventUserRegistered         EventType = "user.registered"
	EventCourseCreated          EventType = "course.created"
	EventQuestionnaireCompleted EventType = "questionnaire.completed"
	EventTeamFormed             EventType = "team.formed"
)

// ================================================================================
// Context Key Constants
// ================================================================================

// ContextKey is the type for request-scoped context keys
type ContextKey string

const (
	// ContextKeyRequestID carries the per-request correlation id
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTenantID carries the resolved tenant (organization) id
	ContextKeyTenantID ContextKey = "tenant_id"

	// ContextKeyUserID carries the authenticated user's id
	ContextKeyUserID ContextKey = "user_id"

	// ContextKeyUserRole carries the authenticated user's role
	ContextKeyUserRole ContextKey = "user_role"
)

// ================================================================================
// HTTP Constants
// ================================================================================

const (
	// HeaderTenantID is the header checked (and echoed) by the tenant middleware
	HeaderTenantID = "X-Tenant-ID"

	// HeaderRequestID is the header carrying the request correlation id
	HeaderRequestID = "X-Request-ID"
)

// ReservedSubdomains can never resolve to a tenant.
var ReservedSubdomains = map[string]bool{
	"www":   true,
	"api":   true,
	"admin": true,
}

// ================================================================================
// Pagination Constants
// ================================================================================

const (
	// DefaultPageSize is applied when a list request omits page_size
	DefaultPageSize = 20

	// MaxPageSize caps page_size on every list endpoint
	MaxPageSize = 100
)

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents the severity of a log entry
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)
