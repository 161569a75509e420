// Package service implements the application services: use-case orchestration
// between the HTTP layer and the domain.
package service

import (
	"context"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	"github.com/elevate-edu/elevate/internal/infrastructure/crypto"
	rediscache "github.com/elevate-edu/elevate/internal/infrastructure/persistence/redis"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// OrganizationAppService manages tenants and their settings.
type OrganizationAppService interface {
	Create(ctx context.Context, req *dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error)
	GetByID(ctx context.Context, id string) (*dto.OrganizationResponse, error)
	List(ctx context.Context, page, pageSize int) ([]*dto.OrganizationResponse, int64, error)
	Deactivate(ctx context.Context, id string) error

	// GetSettings serves from cache where possible.
	GetSettings(ctx context.Context, orgID string) (*models.OrganizationSettings, error)
	UpdateSettings(ctx context.Context, orgID string, req *dto.UpdateOrganizationSettingsRequest) (*dto.OrganizationSettingsResponse, error)
}

type organizationAppService struct {
	orgs   repository.OrganizationRepository
	users  repository.UserRepository
	hasher crypto.PasswordHasher
	cache  *rediscache.CacheManager
	log    logger.Logger
}

// NewOrganizationAppService creates the organization application service.
func NewOrganizationAppService(
	orgs repository.OrganizationRepository,
	users repository.UserRepository,
	hasher crypto.PasswordHasher,
	cache *rediscache.CacheManager,
	log logger.Logger,
) OrganizationAppService {
	return &organizationAppService{
		orgs:   orgs,
		users:  users,
		hasher: hasher,
		cache:  cache,
		log:    log.WithComponent("organization_service"),
	}
}

// Create provisions a tenant together with its first admin account. The
// admin credentials are validated and hashed before anything is persisted so
// a rejected password never leaves a tenant row behind without an admin.
func (s *organizationAppService) Create(ctx context.Context, req *dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error) {
	org, err := models.NewOrganization(req.Name, req.Slug, req.Domain)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(req.AdminPassword)
	if err != nil {
		return nil, err
	}
	admin, err := models.NewUser(org.ID, req.AdminEmail, hash, "", "", constants.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "organization created",
		logger.String("org_id", org.ID),
		logger.String("slug", org.Slug),
	)
	return toOrganizationResponse(org), nil
}

func (s *organizationAppService) GetByID(ctx context.Context, id string) (*dto.OrganizationResponse, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrganizationResponse(org), nil
}

func (s *organizationAppService) List(ctx context.Context, page, pageSize int) ([]*dto.OrganizationResponse, int64, error) {
	offset, limit := pageOffset(page, pageSize)
	orgs, total, err := s.orgs.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*dto.OrganizationResponse, len(orgs))
	for i, org := range orgs {
		out[i] = toOrganizationResponse(org)
	}
	return out, total, nil
}

// Deactivate suspends a tenant. Requests for suspended tenants are rejected
// at the resolver, so this cuts off the whole organization at once.
func (s *organizationAppService) Deactivate(ctx context.Context, id string) error {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	org.Deactivate()
	if err := s.orgs.Update(ctx, org); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, rediscache.OrgSettingsKey(id)); err != nil {
		s.log.Warn(ctx, "settings cache invalidation failed", logger.ErrorField(err))
	}
	s.log.Info(ctx, "organization deactivated", logger.String("org_id", id))
	return nil
}

func (s *organizationAppService) GetSettings(ctx context.Context, orgID string) (*models.OrganizationSettings, error) {
	key := rediscache.OrgSettingsKey(orgID)

	var cached models.OrganizationSettings
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	settings, err := s.orgs.GetSettings(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, settings, constants.OrgSettingsCacheTTL); err != nil {
		s.log.Warn(ctx, "settings cache write failed", logger.ErrorField(err))
	}
	return settings, nil
}

func (s *organizationAppService) UpdateSettings(ctx context.Context, orgID string, req *dto.UpdateOrganizationSettingsRequest) (*dto.OrganizationSettingsResponse, error) {
	settings, err := s.orgs.GetSettings(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if req.Plan != nil {
		plan := models.SubscriptionPlan(*req.Plan)
		switch plan {
		case models.PlanFree, models.PlanStandard, models.PlanEnterprise:
			settings.Plan = plan
		default:
			return nil, errors.ErrInvalidRequest("unknown subscription plan: %s", *req.Plan)
		}
	}
	if req.AllowSelfEnrollment != nil {
		settings.AllowSelfEnrollment = *req.AllowSelfEnrollment
	}
	if req.AllowSelfFormedTeams != nil {
		settings.AllowSelfFormedTeams = *req.AllowSelfFormedTeams
	}
	if req.EnableAnalytics != nil {
		settings.EnableAnalytics = *req.EnableAnalytics
	}
	if req.DefaultTeamSizeMin != nil {
		settings.DefaultTeamSizeMin = *req.DefaultTeamSizeMin
	}
	if req.DefaultTeamSizeMax != nil {
		settings.DefaultTeamSizeMax = *req.DefaultTeamSizeMax
	}
	if req.FormationTimeoutSeconds != nil {
		settings.FormationTimeoutSeconds = *req.FormationTimeoutSeconds
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if err := s.orgs.UpdateSettings(ctx, settings); err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, rediscache.OrgSettingsKey(orgID)); err != nil {
		s.log.Warn(ctx, "settings cache invalidation failed", logger.ErrorField(err))
	}

	return toSettingsResponse(settings), nil
}

func toOrganizationResponse(org *models.Organization) *dto.OrganizationResponse {
	resp := &dto.OrganizationResponse{
		ID:        org.ID,
		Name:      org.Name,
		Slug:      org.Slug,
		IsActive:  org.IsActive,
		CreatedAt: org.CreatedAt,
	}
	if org.Domain != nil {
		resp.Domain = *org.Domain
	}
	if org.Settings != nil {
		resp.Settings = toSettingsResponse(org.Settings)
	}
	return resp
}

func toSettingsResponse(s *models.OrganizationSettings) *dto.OrganizationSettingsResponse {
	return &dto.OrganizationSettingsResponse{
		Plan:                    string(s.Plan),
		AllowSelfEnrollment:     s.AllowSelfEnrollment,
		AllowSelfFormedTeams:    s.AllowSelfFormedTeams,
		EnableAnalytics:         s.EnableAnalytics,
		DefaultTeamSizeMin:      s.DefaultTeamSizeMin,
		DefaultTeamSizeMax:      s.DefaultTeamSizeMax,
		FormationTimeoutSeconds: s.FormationTimeoutSeconds,
	}
}

// pageOffset converts page/page_size inputs into offset/limit, applying the
// platform defaults and ceiling.
func pageOffset(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}
	return (page - 1) * pageSize, pageSize
}
