package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevate-edu/elevate/internal/config"
	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/infrastructure/crypto"
	"github.com/elevate-edu/elevate/pkg/constants"
)

func newTestTokens() *crypto.JWTManager {
	return crypto.NewJWTManager(config.JWTConfig{
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "elevate-test",
	}, crypto.NewStaticSecretSource("test-signing-key"))
}

func issueFor(t *testing.T, tokens *crypto.JWTManager, orgID string, role constants.UserRole) *crypto.TokenPair {
	t.Helper()
	pair, err := tokens.IssuePair(&models.User{
		ID:             "user-1",
		OrganizationID: orgID,
		Role:           role,
	})
	require.NoError(t, err)
	return pair
}

func authTestRouter(tokens *crypto.JWTManager, tenantID string, roles ...constants.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := gin.HandlersChain{
		func(c *gin.Context) {
			if tenantID != "" {
				c.Set(GinKeyTenantID, tenantID)
			}
		},
		JWTAuth(tokens),
	}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	r.GET("/secure", chain...)
	return r
}

func TestJWTAuth_ValidToken(t *testing.T) {
	tokens := newTestTokens()
	router := authTestRouter(tokens, "org-1")
	pair := issueFor(t, tokens, "org-1", constants.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	router := authTestRouter(newTestTokens(), "org-1")

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	tokens := newTestTokens()
	router := authTestRouter(tokens, "org-1")
	pair := issueFor(t, tokens, "org-1", constants.RoleStudent)

	for _, header := range []string{
		pair.AccessToken,
		"Basic " + pair.AccessToken,
		"Bearer ",
	} {
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestJWTAuth_RefreshTokenRejected(t *testing.T) {
	tokens := newTestTokens()
	router := authTestRouter(tokens, "org-1")
	pair := issueFor(t, tokens, "org-1", constants.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_ForeignTenantRejected(t *testing.T) {
	tokens := newTestTokens()
	router := authTestRouter(tokens, "org-2")
	pair := issueFor(t, tokens, "org-1", constants.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	tokens := newTestTokens()
	router := authTestRouter(tokens, "org-1", constants.RoleAdmin, constants.RoleInstructor)

	t.Run("allowed role", func(t *testing.T) {
		pair := issueFor(t, tokens, "org-1", constants.RoleInstructor)
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("forbidden role", func(t *testing.T) {
		pair := issueFor(t, tokens, "org-1", constants.RoleStudent)
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestExtractBearer_CaseInsensitiveScheme(t *testing.T) {
	tokens := newTestTokens()
	router := authTestRouter(tokens, "org-1")
	pair := issueFor(t, tokens, "org-1", constants.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
