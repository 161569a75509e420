package postgres

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

type courseRepo struct {
	db  *gorm.DB
	log logger.Logger
}

// NewCourseRepository creates the PostgreSQL-backed course repository.
func NewCourseRepository(db *gorm.DB, log logger.Logger) repository.CourseRepository {
	return &courseRepo{db: db, log: log.WithComponent("course_repo")}
}

func (r *courseRepo) Create(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		if isUniqueViolation(err) {
			return errors.ErrCourseCodeTaken(course.Code).WithCause(err)
		}
		return errors.ErrDatabase(err)
	}
	return nil
}

func (r *courseRepo) GetByID(ctx context.Context, orgID, id string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Preload("Instructors").
		First(&course, "organization_id = ? AND id = ?", orgID, id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrCourseNotFound(id)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &course, nil
}

func (r *courseRepo) GetByCode(ctx context.Context, orgID, code string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Preload("Instructors").
		First(&course, "organization_id = ? AND code = ?", orgID, code).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrCourseNotFound(code)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &course, nil
}

func (r *courseRepo) Update(ctx context.Context, course *models.Course) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ?", course.OrganizationID).
		Model(course).
		Select("title", "description", "capacity", "enrollment_deadline", "auto_approval", "is_active", "updated_at").
		Updates(course)
	if result.Error != nil {
		return errors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrCourseNotFound(course.ID)
	}
	return nil
}

func (r *courseRepo) List(ctx context.Context, orgID string, offset, limit int) ([]*models.Course, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Course{}).Where("organization_id = ?", orgID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}

	var courses []*models.Course
	err := q.Preload("Instructors").
		Order("code ASC").
		Offset(offset).Limit(limit).
		Find(&courses).Error
	if err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}
	return courses, total, nil
}

func (r *courseRepo) ListByInstructor(ctx context.Context, orgID, userID string, offset, limit int) ([]*models.Course, int64, error) {
	sub := r.db.Model(&models.CourseInstructor{}).
		Select("course_id").
		Where("organization_id = ? AND user_id = ?", orgID, userID)

	q := r.db.WithContext(ctx).Model(&models.Course{}).
		Where("organization_id = ? AND id IN (?)", orgID, sub)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}

	var courses []*models.Course
	err := q.Preload("Instructors").
		Order("code ASC").
		Offset(offset).Limit(limit).
		Find(&courses).Error
	if err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}
	return courses, total, nil
}

func (r *courseRepo) AddInstructor(ctx context.Context, ci *models.CourseInstructor) error {
	if err := r.db.WithContext(ctx).Create(ci).Error; err != nil {
		if isUniqueViolation(err) {
			return errors.ErrConflict("instructor already assigned to course").WithCause(err)
		}
		return errors.ErrDatabase(err)
	}
	return nil
}

func (r *courseRepo) RemoveInstructor(ctx context.Context, orgID, courseID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND course_id = ? AND user_id = ?", orgID, courseID, userID).
		Delete(&models.CourseInstructor{})
	if result.Error != nil {
		return errors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound("course instructor", userID)
	}
	return nil
}
