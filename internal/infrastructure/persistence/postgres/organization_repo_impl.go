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

type organizationRepo struct {
	db  *gorm.DB
	log logger.Logger
}

// NewOrganizationRepository creates the PostgreSQL-backed organization
// repository.
func NewOrganizationRepository(db *gorm.DB, log logger.Logger) repository.OrganizationRepository {
	return &organizationRepo{db: db, log: log.WithComponent("organization_repo")}
}

func (r *organizationRepo) Create(ctx context.Context, org *models.Organization) error {
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		if isUniqueViolation(err) {
			return r.createConflict(ctx, org, err)
		}
		return errors.ErrDatabase(err)
	}
	return nil
}

// createConflict decides which unique key the insert collided on. Slug and
// domain share the constraint class, so the existing rows settle it.
func (r *organizationRepo) createConflict(ctx context.Context, org *models.Organization, cause error) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Organization{}).
		Where("slug = ?", org.Slug).
		Count(&count).Error
	if err == nil && count > 0 {
		return errors.ErrSlugTaken(org.Slug).WithCause(cause)
	}
	if org.Domain != nil {
		return errors.ErrDomainTaken(*org.Domain).WithCause(cause)
	}
	return errors.ErrSlugTaken(org.Slug).WithCause(cause)
}

func (r *organizationRepo) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).Preload("Settings").First(&org, "id = ?", id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrOrganizationNotFound(id)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &org, nil
}

func (r *organizationRepo) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).Preload("Settings").First(&org, "slug = ?", slug).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrOrganizationNotFound(slug)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &org, nil
}

func (r *organizationRepo) GetByDomain(ctx context.Context, domain string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).Preload("Settings").First(&org, "domain = ?", domain).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrOrganizationNotFound(domain)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &org, nil
}

func (r *organizationRepo) Update(ctx context.Context, org *models.Organization) error {
	result := r.db.WithContext(ctx).Model(org).
		Select("name", "domain", "is_active", "updated_at").
		Updates(org)
	if result.Error != nil {
		return errors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrOrganizationNotFound(org.ID)
	}
	return nil
}

func (r *organizationRepo) List(ctx context.Context, offset, limit int) ([]*models.Organization, int64, error) {
	var orgs []*models.Organization
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Organization{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}
	err := q.Preload("Settings").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orgs).Error
	if err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}
	return orgs, total, nil
}

func (r *organizationRepo) GetSettings(ctx context.Context, orgID string) (*models.OrganizationSettings, error) {
	var settings models.OrganizationSettings
	err := r.db.WithContext(ctx).First(&settings, "organization_id = ?", orgID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrOrganizationNotFound(orgID)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &settings, nil
}

func (r *organizationRepo) UpdateSettings(ctx context.Context, settings *models.OrganizationSettings) error {
	result := r.db.WithContext(ctx).Model(settings).
		Select("plan", "allow_self_enrollment", "allow_self_formed_teams", "enable_analytics",
			"default_team_size_min", "default_team_size_max", "formation_timeout_seconds", "updated_at").
		Updates(settings)
	if result.Error != nil {
		return errors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrOrganizationNotFound(settings.OrganizationID)
	}
	return nil
}
