package repository

import (
	"context"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/pkg/constants"
)

// UserFilter narrows user listings. Zero values mean no filtering.
type UserFilter struct {
	Role   constants.UserRole
	Active *bool
	Search string
}

// UserRepository persists tenant-scoped user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, orgID, id string) (*models.User, error)
	GetByEmail(ctx context.Context, orgID, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, orgID string, filter UserFilter, offset, limit int) ([]*models.User, int64, error)
}
