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

type userRepo struct {
	db  *gorm.DB
	log logger.Logger
}

// NewUserRepository creates the PostgreSQL-backed user repository. All
// lookups are tenant-scoped.
func NewUserRepository(db *gorm.DB, log logger.Logger) repository.UserRepository {
	return &userRepo{db: db, log: log.WithComponent("user_repo")}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return errors.ErrEmailTaken(user.Email).WithCause(err)
		}
		return errors.ErrDatabase(err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, orgID, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "organization_id = ? AND id = ?", orgID, id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound(id)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, orgID, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "organization_id = ? AND email = ?", orgID, models.NormalizeEmail(email)).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound(email)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ?", user.OrganizationID).
		Model(user).
		Select("first_name", "last_name", "role", "is_active", "password_hash", "last_login_at", "updated_at").
		Updates(user)
	if result.Error != nil {
		return errors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrUserNotFound(user.ID)
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, orgID string, filter repository.UserFilter, offset, limit int) ([]*models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("organization_id = ?", orgID)
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}

	var users []*models.User
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}
	return users, total, nil
}
