package crypto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/elevate-edu/elevate/internal/config"
	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
)

// SecretSource supplies the HS256 signing key. The static config value and
// the Vault client both implement it.
type SecretSource interface {
	SigningKey() ([]byte, error)
}

// StaticSecretSource wraps a configured signing key.
type StaticSecretSource struct {
	key []byte
}

// NewStaticSecretSource creates a source from the configured secret.
func NewStaticSecretSource(secret string) *StaticSecretSource {
	return &StaticSecretSource{key: []byte(secret)}
}

// SigningKey returns the configured key.
func (s *StaticSecretSource) SigningKey() ([]byte, error) {
	return s.key, nil
}

// Claims are the token claims issued by the platform. Tokens bind a user to
// a tenant: verification rejects any token whose tenant does not match the
// request's resolved tenant.
type Claims struct {
	TokenType constants.TokenType `json:"type"`
	TenantID  string              `json:"tenant_id"`
	Role      string              `json:"role"`
	jwt.RegisteredClaims
}

// TokenPair bundles the two tokens returned at login and refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// JWTManager issues and verifies HS256 token pairs.
type JWTManager struct {
	secrets    SecretSource
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTManager creates a manager from the JWT configuration.
func NewJWTManager(cfg config.JWTConfig, secrets SecretSource) *JWTManager {
	return &JWTManager{
		secrets:    secrets,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// IssuePair signs an access and refresh token for the user.
func (m *JWTManager) IssuePair(user *models.User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(m.accessTTL)

	access, err := m.sign(user, constants.TokenTypeAccess, now, accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(user, constants.TokenTypeRefresh, now, now.Add(m.refreshTTL))
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExpiry,
	}, nil
}

func (m *JWTManager) sign(user *models.User, tokenType constants.TokenType, now, expiry time.Time) (string, error) {
	key, err := m.secrets.SigningKey()
	if err != nil {
		return "", errors.ErrInternal("load signing key").WithCause(err)
	}
	claims := Claims{
		TokenType: tokenType,
		TenantID:  user.OrganizationID,
		Role:      string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", errors.ErrInternal("sign token").WithCause(err)
	}
	return signed, nil
}

// Verify parses and validates the token, requiring the expected token type.
func (m *JWTManager) Verify(tokenString string, expected constants.TokenType) (*Claims, error) {
	key, err := m.secrets.SigningKey()
	if err != nil {
		return nil, errors.ErrInternal("load signing key").WithCause(err)
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrInvalidToken("unexpected signing method")
		}
		return key, nil
	})
	if err != nil {
		return nil, errors.ErrInvalidToken(err.Error())
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.ErrInvalidToken("malformed claims")
	}
	if claims.TokenType != expected {
		return nil, errors.ErrInvalidToken("wrong token type")
	}
	return claims, nil
}
