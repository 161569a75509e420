package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/application/service"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	"github.com/elevate-edu/elevate/internal/interfaces/http/middleware"
	"github.com/elevate-edu/elevate/pkg/constants"
)

// AuthHandler serves registration, login, refresh and user administration.
type AuthHandler struct {
	auth service.AuthAppService
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(auth service.AuthAppService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := h.auth.Register(c.Request.Context(), middleware.TenantID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, user)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	tokens, err := h.auth.Login(c.Request.Context(), middleware.TenantID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tokens)
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	tokens, err := h.auth.Refresh(c.Request.Context(), middleware.TenantID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tokens)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

// UpdateMe handles PATCH /api/v1/auth/me.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

// ListUsers handles GET /api/v1/users.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := repository.UserFilter{
		Role:   constants.UserRole(c.Query("role")),
		Search: c.Query("search"),
	}
	users, total, err := h.auth.ListUsers(c.Request.Context(), middleware.TenantID(c), filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, users, page, pageSize, total)
}

// GetUser handles GET /api/v1/users/:id.
func (h *AuthHandler) GetUser(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

// DeactivateUser handles DELETE /api/v1/users/:id.
func (h *AuthHandler) DeactivateUser(c *gin.Context) {
	err := h.auth.DeactivateUser(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deactivated": true})
}
