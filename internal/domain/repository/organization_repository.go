// Package repository defines the persistence interfaces of the domain layer.
// Implementations live under internal/infrastructure/persistence.
package repository

import (
	"context"

	"github.com/elevate-edu/elevate/internal/domain/models"
)

// OrganizationRepository persists tenants and their settings.
type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id string) (*models.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
	GetByDomain(ctx context.Context, domain string) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	List(ctx context.Context, offset, limit int) ([]*models.Organization, int64, error)

	GetSettings(ctx context.Context, orgID string) (*models.OrganizationSettings, error)
	UpdateSettings(ctx context.Context, settings *models.OrganizationSettings) error
}
