package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/infrastructure/crypto"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
)

// Gin context keys set by the auth middleware.
const (
	GinKeyUserID   = "user_id"
	GinKeyUserRole = "user_role"
)

// JWTAuth verifies the bearer token and binds it to the resolved tenant: a
// valid token for another tenant is rejected.
func JWTAuth(tokens *crypto.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractBearer(c)
		if err != nil {
			abortWithError(c, err)
			return
		}

		claims, err := tokens.Verify(tokenString, constants.TokenTypeAccess)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if tenantID := TenantID(c); tenantID != "" && claims.TenantID != tenantID {
			abortWithError(c, errors.ErrInvalidToken("token does not belong to this tenant"))
			return
		}

		c.Set(GinKeyUserID, claims.Subject)
		c.Set(GinKeyUserRole, claims.Role)

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyUserID, claims.Subject)
		ctx = context.WithValue(ctx, constants.ContextKeyUserRole, claims.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole allows only the listed roles past.
func RequireRole(roles ...constants.UserRole) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString(GinKeyUserRole)] {
			abortWithError(c, errors.ErrForbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

func extractBearer(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.ErrUnauthorized("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.ErrUnauthorized("malformed authorization header")
	}
	return parts[1], nil
}

// UserID returns the authenticated user id from the gin context.
func UserID(c *gin.Context) string {
	return c.GetString(GinKeyUserID)
}

// abortWithError writes the envelope for an AppError and stops the chain.
func abortWithError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.ErrInternal("unexpected error").WithCause(err)
	}
	c.AbortWithStatusJSON(appErr.Status, dto.Fail(appErr.Code, appErr.Message, appErr.Metadata))
}
