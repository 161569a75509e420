package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/application/service"
	"github.com/elevate-edu/elevate/internal/interfaces/http/middleware"
)

// CourseHandler serves course and instructor assignment endpoints.
type CourseHandler struct {
	courses service.CourseAppService
}

// NewCourseHandler creates the course handler.
func NewCourseHandler(courses service.CourseAppService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// Create handles POST /api/v1/courses.
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	course, err := h.courses.Create(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, course)
}

// List handles GET /api/v1/courses.
func (h *CourseHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	courses, total, err := h.courses.List(c.Request.Context(), middleware.TenantID(c), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, courses, page, pageSize, total)
}

// Get handles GET /api/v1/courses/:id.
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.GetByID(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, course)
}

// Update handles PATCH /api/v1/courses/:id.
func (h *CourseHandler) Update(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	course, err := h.courses.Update(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, course)
}

// AddInstructor handles POST /api/v1/courses/:id/instructors.
func (h *CourseHandler) AddInstructor(c *gin.Context) {
	var req dto.AddInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	err := h.courses.AddInstructor(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, gin.H{"added": true})
}

// RemoveInstructor handles DELETE /api/v1/courses/:id/instructors/:userId.
func (h *CourseHandler) RemoveInstructor(c *gin.Context) {
	err := h.courses.RemoveInstructor(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c),
		c.Param("id"), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"removed": true})
}
