package postgres

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

type enrollmentRepo struct {
	db  *gorm.DB
	log logger.Logger
}

// NewEnrollmentRepository creates the PostgreSQL-backed enrollment repository.
func NewEnrollmentRepository(db *gorm.DB, log logger.Logger) repository.EnrollmentRepository {
	return &enrollmentRepo{db: db, log: log.WithComponent("enrollment_repo")}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if err := r.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		if isUniqueViolation(err) {
			return errors.ErrAlreadyEnrolled(enrollment.CourseID).WithCause(err)
		}
		return errors.ErrDatabase(err)
	}
	return nil
}

func (r *enrollmentRepo) GetByID(ctx context.Context, orgID, id string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		First(&enrollment, "organization_id = ? AND id = ?", orgID, id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrEnrollmentNotFound(id)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) GetByCourseAndUser(ctx context.Context, orgID, courseID, userID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		First(&enrollment, "organization_id = ? AND course_id = ? AND user_id = ?", orgID, courseID, userID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrEnrollmentNotFound(userID)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) Update(ctx context.Context, enrollment *models.Enrollment) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ?", enrollment.OrganizationID).
		Model(enrollment).
		Select("status", "method", "enrolled_at", "completed_at", "dropped_at", "updated_at").
		Updates(enrollment)
	if result.Error != nil {
		return errors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrEnrollmentNotFound(enrollment.ID)
	}
	return nil
}

func (r *enrollmentRepo) ListByCourse(ctx context.Context, orgID, courseID string, status constants.EnrollmentStatus, offset, limit int) ([]*models.Enrollment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("organization_id = ? AND course_id = ?", orgID, courseID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}

	var enrollments []*models.Enrollment
	if err := q.Order("enrolled_at ASC").Offset(offset).Limit(limit).Find(&enrollments).Error; err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}
	return enrollments, total, nil
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, orgID, userID string, offset, limit int) ([]*models.Enrollment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}

	var enrollments []*models.Enrollment
	if err := q.Order("enrolled_at DESC").Offset(offset).Limit(limit).Find(&enrollments).Error; err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}
	return enrollments, total, nil
}

func (r *enrollmentRepo) CountActive(ctx context.Context, orgID, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("organization_id = ? AND course_id = ? AND status = ?",
			orgID, courseID, constants.EnrollmentStatusActive).
		Count(&count).Error
	if err != nil {
		return 0, errors.ErrDatabase(err)
	}
	return count, nil
}
