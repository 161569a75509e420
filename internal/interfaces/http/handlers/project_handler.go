package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/application/service"
	"github.com/elevate-edu/elevate/internal/interfaces/http/middleware"
)

// ProjectHandler serves project and questionnaire endpoints.
type ProjectHandler struct {
	projects service.ProjectAppService
}

// NewProjectHandler creates the project handler.
func NewProjectHandler(projects service.ProjectAppService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Create handles POST /api/v1/courses/:id/projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	project, err := h.projects.Create(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, project)
}

// ListByCourse handles GET /api/v1/courses/:id/projects.
func (h *ProjectHandler) ListByCourse(c *gin.Context) {
	page, pageSize := pageParams(c)
	publishedOnly := c.Query("published") == "true"
	projects, total, err := h.projects.ListByCourse(c.Request.Context(),
		middleware.TenantID(c), c.Param("id"), publishedOnly, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, projects, page, pageSize, total)
}

// Get handles GET /api/v1/projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.GetByID(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, project)
}

// Publish handles POST /api/v1/projects/:id/publish.
func (h *ProjectHandler) Publish(c *gin.Context) {
	project, err := h.projects.Publish(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, project)
}

// SubmitQuestionnaire handles PUT /api/v1/projects/:id/questionnaire.
func (h *ProjectHandler) SubmitQuestionnaire(c *gin.Context) {
	var req dto.SubmitQuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	response, err := h.projects.SubmitQuestionnaire(c.Request.Context(),
		middleware.TenantID(c), c.Param("id"), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, response)
}

// GetQuestionnaire handles GET /api/v1/projects/:id/questionnaire.
func (h *ProjectHandler) GetQuestionnaire(c *gin.Context) {
	response, err := h.projects.GetQuestionnaire(c.Request.Context(),
		middleware.TenantID(c), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, response)
}

// QuestionnaireStats handles GET /api/v1/projects/:id/questionnaires/stats.
func (h *ProjectHandler) QuestionnaireStats(c *gin.Context) {
	stats, err := h.projects.QuestionnaireStats(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

// ListQuestionnaires handles GET /api/v1/projects/:id/questionnaires.
func (h *ProjectHandler) ListQuestionnaires(c *gin.Context) {
	responses, err := h.projects.ListQuestionnaires(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, responses)
}
