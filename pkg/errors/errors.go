// Package errors defines the unified error type used across the Elevate platform.
// Every layer returns *AppError so handlers can map failures onto HTTP status
// codes without inspecting layer-specific sentinel values.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in API responses.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL_ERROR"
	CodeUnavailable    = "SERVICE_UNAVAILABLE"
)

// AppError is the platform error type. It carries a machine-readable code,
// the HTTP status the interface layer should answer with, and optional
// metadata surfaced to the client.
type AppError struct {
	Code     string                 `json:"code"`
	Status   int                    `json:"-"`
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error and returns the receiver.
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithMetadata attaches a metadata entry and returns the receiver.
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// New creates an AppError with an explicit code and HTTP status.
func New(code string, status int, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap converts err into an internal AppError unless it already is one.
func Wrap(err error, format string, args ...interface{}) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(CodeInternal, http.StatusInternalServerError, format, args...).WithCause(err)
}

// As extracts an *AppError from err.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// ================================================================================
// Generic constructors
// ================================================================================

// ErrInvalidRequest reports a malformed or semantically invalid request.
func ErrInvalidRequest(format string, args ...interface{}) *AppError {
	return New(CodeInvalidRequest, http.StatusBadRequest, format, args...)
}

// ErrUnauthorized reports a missing or invalid credential.
func ErrUnauthorized(format string, args ...interface{}) *AppError {
	return New(CodeUnauthorized, http.StatusUnauthorized, format, args...)
}

// ErrForbidden reports an authenticated caller lacking permission.
func ErrForbidden(format string, args ...interface{}) *AppError {
	return New(CodeForbidden, http.StatusForbidden, format, args...)
}

// ErrNotFound reports a missing resource.
func ErrNotFound(resource, id string) *AppError {
	return New(CodeNotFound, http.StatusNotFound, "%s not found: %s", resource, id)
}

// ErrConflict reports a uniqueness or state conflict.
func ErrConflict(format string, args ...interface{}) *AppError {
	return New(CodeConflict, http.StatusConflict, format, args...)
}

// ErrInternal reports an unexpected internal failure.
func ErrInternal(format string, args ...interface{}) *AppError {
	return New(CodeInternal, http.StatusInternalServerError, format, args...)
}

// ErrDatabase wraps a storage-layer failure.
func ErrDatabase(err error) *AppError {
	return New(CodeInternal, http.StatusInternalServerError, "database operation failed").WithCause(err)
}

// ErrUnavailable reports a dependency outage.
func ErrUnavailable(format string, args ...interface{}) *AppError {
	return New(CodeUnavailable, http.StatusServiceUnavailable, format, args...)
}

// ================================================================================
// Tenancy
// ================================================================================

func ErrOrganizationNotFound(id string) *AppError {
	return ErrNotFound("organization", id)
}

func ErrSlugTaken(slug string) *AppError {
	return ErrConflict("organization slug already in use: %s", slug)
}

func ErrDomainTaken(domain string) *AppError {
	return ErrConflict("organization domain already in use: %s", domain)
}

func ErrTenantNotResolved() *AppError {
	return ErrInvalidRequest("unable to resolve tenant from request")
}

// ================================================================================
// Users and authentication
// ================================================================================

func ErrUserNotFound(id string) *AppError {
	return ErrNotFound("user", id)
}

func ErrEmailTaken(email string) *AppError {
	return ErrConflict("email already registered in this organization: %s", email)
}

func ErrInvalidCredentials() *AppError {
	return ErrUnauthorized("invalid email or password")
}

func ErrInvalidToken(reason string) *AppError {
	return ErrUnauthorized("invalid token: %s", reason)
}

func ErrUserInactive() *AppError {
	return ErrForbidden("user account is deactivated")
}

// ================================================================================
// Courses, projects and enrollments
// ================================================================================

func ErrCourseNotFound(id string) *AppError {
	return ErrNotFound("course", id)
}

func ErrCourseCodeTaken(code string) *AppError {
	return ErrConflict("course code already in use: %s", code)
}

func ErrCourseFull(courseID string) *AppError {
	return ErrConflict("course is at capacity").WithMetadata("course_id", courseID)
}

func ErrEnrollmentClosed(courseID string) *AppError {
	return ErrConflict("enrollment deadline has passed").WithMetadata("course_id", courseID)
}

func ErrAlreadyEnrolled(courseID string) *AppError {
	return ErrConflict("student is already enrolled").WithMetadata("course_id", courseID)
}

func ErrEnrollmentNotFound(id string) *AppError {
	return ErrNotFound("enrollment", id)
}

func ErrProjectNotFound(id string) *AppError {
	return ErrNotFound("project", id)
}

func ErrProjectNotPublished(id string) *AppError {
	return ErrConflict("project is not published").WithMetadata("project_id", id)
}

// ================================================================================
// Questionnaires and teams
// ================================================================================

func ErrQuestionnaireNotFound(id string) *AppError {
	return ErrNotFound("questionnaire response", id)
}

func ErrTeamNotFound(id string) *AppError {
	return ErrNotFound("team", id)
}

func ErrTeamLocked(id string) *AppError {
	return ErrConflict("team is locked").WithMetadata("team_id", id)
}

func ErrTeamFull(id string) *AppError {
	return ErrConflict("team is at maximum size").WithMetadata("team_id", id)
}

func ErrFormationClosed(projectID string) *AppError {
	return ErrConflict("team formation deadline has passed").WithMetadata("project_id", projectID)
}

func ErrFormationRunning(projectID string) *AppError {
	return ErrConflict("a formation job is already running").WithMetadata("project_id", projectID)
}

// ================================================================================
// Rate limiting
// ================================================================================

// ErrRateLimitExceeded reports a breached sliding window limit. retryAfter is
// the number of seconds until the caller may try again.
func ErrRateLimitExceeded(retryAfter int) *AppError {
	return New(CodeRateLimited, http.StatusTooManyRequests, "rate limit exceeded").
		WithMetadata("retry_after", retryAfter)
}

// ================================================================================
// Predicates
// ================================================================================

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == CodeNotFound
}

// IsConflict reports whether err carries the CONFLICT code.
func IsConflict(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == CodeConflict
}

// IsUnauthorized reports whether err carries the UNAUTHORIZED code.
func IsUnauthorized(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == CodeUnauthorized
}
