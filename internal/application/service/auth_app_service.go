package service

import (
	"context"
	"strings"
	"time"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	"github.com/elevate-edu/elevate/internal/infrastructure/crypto"
	"github.com/elevate-edu/elevate/internal/infrastructure/events"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// AuthAppService handles registration, login and token refresh. Every
// operation is scoped to the tenant resolved from the request.
type AuthAppService interface {
	Register(ctx context.Context, orgID string, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, orgID string, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, orgID string, req *dto.RefreshRequest) (*dto.TokenResponse, error)
	GetUser(ctx context.Context, orgID, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, orgID, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, orgID string, filter repository.UserFilter, page, pageSize int) ([]*dto.UserResponse, int64, error)
	DeactivateUser(ctx context.Context, orgID, userID string) error
}

type authAppService struct {
	users     repository.UserRepository
	hasher    crypto.PasswordHasher
	tokens    *crypto.JWTManager
	publisher events.Publisher
	log       logger.Logger
}

// NewAuthAppService creates the auth application service.
func NewAuthAppService(
	users repository.UserRepository,
	hasher crypto.PasswordHasher,
	tokens *crypto.JWTManager,
	publisher events.Publisher,
	log logger.Logger,
) AuthAppService {
	return &authAppService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		publisher: publisher,
		log:       log.WithComponent("auth_service"),
	}
}

func (s *authAppService) Register(ctx context.Context, orgID string, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := models.NewUser(orgID, req.Email, hash, req.FirstName, req.LastName, constants.UserRole(req.Role))
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, models.UserRegisteredEvent(user)); err != nil {
		s.log.Warn(ctx, "user.registered event publish failed", logger.ErrorField(err))
	}

	s.log.Info(ctx, "user registered",
		logger.String("user_id", user.ID),
		logger.String("role", string(user.Role)),
	)
	return toUserResponse(user), nil
}

func (s *authAppService) Login(ctx context.Context, orgID string, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, orgID, req.Email)
	if err != nil {
		// Do not reveal whether the account exists.
		if errors.IsNotFound(err) {
			return nil, errors.ErrInvalidCredentials()
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.ErrUserInactive()
	}
	if err := s.hasher.Verify(user.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}

	user.RecordLogin(time.Now())
	if err := s.users.Update(ctx, user); err != nil {
		s.log.Warn(ctx, "last login update failed", logger.ErrorField(err))
	}

	return toTokenResponse(pair), nil
}

func (s *authAppService) Refresh(ctx context.Context, orgID string, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	claims, err := s.tokens.Verify(req.RefreshToken, constants.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if claims.TenantID != orgID {
		return nil, errors.ErrInvalidToken("token does not belong to this tenant")
	}

	user, err := s.users.GetByID(ctx, orgID, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.ErrUserInactive()
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}
	return toTokenResponse(pair), nil
}

func (s *authAppService) GetUser(ctx context.Context, orgID, userID string) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// UpdateProfile applies the caller's own profile changes. Changing the
// password requires verifying the current one first.
func (s *authAppService) UpdateProfile(ctx context.Context, orgID, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.NewPassword != nil {
		if req.CurrentPassword == nil {
			return nil, errors.ErrInvalidRequest("current password is required to set a new one")
		}
		if err := s.hasher.Verify(user.PasswordHash, *req.CurrentPassword); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*req.NewPassword)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *authAppService) ListUsers(ctx context.Context, orgID string, filter repository.UserFilter, page, pageSize int) ([]*dto.UserResponse, int64, error) {
	offset, limit := pageOffset(page, pageSize)
	users, total, err := s.users.List(ctx, orgID, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*dto.UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out, total, nil
}

func (s *authAppService) DeactivateUser(ctx context.Context, orgID, userID string) error {
	user, err := s.users.GetByID(ctx, orgID, userID)
	if err != nil {
		return err
	}
	user.Deactivate()
	return s.users.Update(ctx, user)
}

func toUserResponse(u *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func toTokenResponse(pair *crypto.TokenPair) *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    pair.ExpiresAt,
	}
}
