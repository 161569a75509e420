package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/application/service"
	"github.com/elevate-edu/elevate/internal/interfaces/http/middleware"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
)

// EnrollmentHandler serves enrollment endpoints including CSV import.
type EnrollmentHandler struct {
	enrollments service.EnrollmentAppService
}

// NewEnrollmentHandler creates the enrollment handler.
func NewEnrollmentHandler(enrollments service.EnrollmentAppService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// SelfEnroll handles POST /api/v1/courses/:id/enroll.
func (h *EnrollmentHandler) SelfEnroll(c *gin.Context) {
	enrollment, err := h.enrollments.SelfEnroll(c.Request.Context(),
		middleware.TenantID(c), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, enrollment)
}

// AddStudent handles POST /api/v1/courses/:id/enrollments.
func (h *EnrollmentHandler) AddStudent(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	enrollment, err := h.enrollments.AddStudent(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, enrollment)
}

// ImportCSV handles POST /api/v1/courses/:id/enrollments/import with a
// multipart file field named "file".
func (h *EnrollmentHandler) ImportCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, errors.ErrInvalidRequest("missing file upload"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, errors.ErrInvalidRequest("unreadable file upload"))
		return
	}
	defer file.Close()

	result, err := h.enrollments.ImportCSV(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), c.Param("id"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// ListByCourse handles GET /api/v1/courses/:id/enrollments.
func (h *EnrollmentHandler) ListByCourse(c *gin.Context) {
	page, pageSize := pageParams(c)
	status := constants.EnrollmentStatus(c.Query("status"))
	enrollments, total, err := h.enrollments.ListByCourse(c.Request.Context(),
		middleware.TenantID(c), c.Param("id"), status, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, enrollments, page, pageSize, total)
}

// MyEnrollments handles GET /api/v1/enrollments.
func (h *EnrollmentHandler) MyEnrollments(c *gin.Context) {
	page, pageSize := pageParams(c)
	enrollments, total, err := h.enrollments.ListByUser(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, enrollments, page, pageSize, total)
}

// Approve handles POST /api/v1/enrollments/:id/approve.
func (h *EnrollmentHandler) Approve(c *gin.Context) {
	if err := h.enrollments.Approve(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"approved": true})
}

// Drop handles POST /api/v1/enrollments/:id/drop.
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	if err := h.enrollments.Drop(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"dropped": true})
}

// Complete handles POST /api/v1/enrollments/:id/complete.
func (h *EnrollmentHandler) Complete(c *gin.Context) {
	if err := h.enrollments.Complete(c.Request.Context(),
		middleware.TenantID(c), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"completed": true})
}
