package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/application/service"
	"github.com/elevate-edu/elevate/internal/interfaces/http/middleware"
)

// TeamHandler serves team lifecycle and formation endpoints.
type TeamHandler struct {
	teams service.TeamAppService
}

// NewTeamHandler creates the team handler.
func NewTeamHandler(teams service.TeamAppService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// Create handles POST /api/v1/projects/:id/teams.
func (h *TeamHandler) Create(c *gin.Context) {
	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	team, err := h.teams.CreateSelfFormed(c.Request.Context(),
		middleware.TenantID(c), c.Param("id"), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, team)
}

// ListByProject handles GET /api/v1/projects/:id/teams.
func (h *TeamHandler) ListByProject(c *gin.Context) {
	teams, err := h.teams.ListByProject(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, teams)
}

// Get handles GET /api/v1/teams/:id.
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.teams.GetByID(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, team)
}

// Join handles POST /api/v1/teams/:id/join.
func (h *TeamHandler) Join(c *gin.Context) {
	team, err := h.teams.Join(c.Request.Context(),
		middleware.TenantID(c), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, team)
}

// Leave handles POST /api/v1/teams/:id/leave.
func (h *TeamHandler) Leave(c *gin.Context) {
	err := h.teams.Leave(c.Request.Context(),
		middleware.TenantID(c), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"left": true})
}

// Lock handles POST /api/v1/teams/:id/lock.
func (h *TeamHandler) Lock(c *gin.Context) {
	err := h.teams.Lock(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"locked": true})
}

// StartFormation handles POST /api/v1/projects/:id/formation.
func (h *TeamHandler) StartFormation(c *gin.Context) {
	status, err := h.teams.StartFormation(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, status)
}

// FormationStatus handles GET /api/v1/projects/:id/formation.
func (h *TeamHandler) FormationStatus(c *gin.Context) {
	status, err := h.teams.JobStatus(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, status)
}

// CompositionReport handles GET /api/v1/projects/:id/composition.
func (h *TeamHandler) CompositionReport(c *gin.Context) {
	report, err := h.teams.CompositionReport(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, report)
}
