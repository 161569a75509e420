package repository

import (
	"context"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/pkg/constants"
)

// CourseRepository persists courses and their instructor assignments.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, orgID, id string) (*models.Course, error)
	GetByCode(ctx context.Context, orgID, code string) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	List(ctx context.Context, orgID string, offset, limit int) ([]*models.Course, int64, error)
	ListByInstructor(ctx context.Context, orgID, userID string, offset, limit int) ([]*models.Course, int64, error)

	AddInstructor(ctx context.Context, ci *models.CourseInstructor) error
	RemoveInstructor(ctx context.Context, orgID, courseID, userID string) error
}

// EnrollmentRepository persists course enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, orgID, id string) (*models.Enrollment, error)
	GetByCourseAndUser(ctx context.Context, orgID, courseID, userID string) (*models.Enrollment, error)
	Update(ctx context.Context, enrollment *models.Enrollment) error
	ListByCourse(ctx context.Context, orgID, courseID string, status constants.EnrollmentStatus, offset, limit int) ([]*models.Enrollment, int64, error)
	ListByUser(ctx context.Context, orgID, userID string, offset, limit int) ([]*models.Enrollment, int64, error)
	CountActive(ctx context.Context, orgID, courseID string) (int64, error)
}
