package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/application/service"
	"github.com/elevate-edu/elevate/internal/interfaces/http/middleware"
)

// OrganizationHandler serves tenant provisioning and settings endpoints.
type OrganizationHandler struct {
	orgs service.OrganizationAppService
}

// NewOrganizationHandler creates the organization handler.
func NewOrganizationHandler(orgs service.OrganizationAppService) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs}
}

// Create handles POST /api/v1/organizations. This endpoint is not tenant
// scoped: it provisions new tenants.
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req dto.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	org, err := h.orgs.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, org)
}

// Current handles GET /api/v1/organization, returning the resolved tenant.
func (h *OrganizationHandler) Current(c *gin.Context) {
	org, err := h.orgs.GetByID(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, org)
}

// GetSettings handles GET /api/v1/organization/settings.
func (h *OrganizationHandler) GetSettings(c *gin.Context) {
	org, err := h.orgs.GetByID(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, org.Settings)
}

// UpdateSettings handles PATCH /api/v1/organization/settings.
func (h *OrganizationHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateOrganizationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	settings, err := h.orgs.UpdateSettings(c.Request.Context(), middleware.TenantID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, settings)
}
