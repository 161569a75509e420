package service

import (
	"context"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	"github.com/elevate-edu/elevate/internal/infrastructure/events"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// CourseAppService manages courses and instructor assignments.
type CourseAppService interface {
	Create(ctx context.Context, orgID, actorID string, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, orgID, id string) (*dto.CourseResponse, error)
	Update(ctx context.Context, orgID, actorID, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	List(ctx context.Context, orgID string, page, pageSize int) ([]*dto.CourseResponse, int64, error)
	AddInstructor(ctx context.Context, orgID, actorID, courseID string, req *dto.AddInstructorRequest) error
	RemoveInstructor(ctx context.Context, orgID, actorID, courseID, userID string) error
}

type courseAppService struct {
	courses   repository.CourseRepository
	users     repository.UserRepository
	publisher events.Publisher
	log       logger.Logger
}

// NewCourseAppService creates the course application service.
func NewCourseAppService(
	courses repository.CourseRepository,
	users repository.UserRepository,
	publisher events.Publisher,
	log logger.Logger,
) CourseAppService {
	return &courseAppService{
		courses:   courses,
		users:     users,
		publisher: publisher,
		log:       log.WithComponent("course_service"),
	}
}

func (s *courseAppService) Create(ctx context.Context, orgID, actorID string, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	course, err := models.NewCourse(orgID, req.Code, req.Title, req.Description, actorID)
	if err != nil {
		return nil, err
	}
	course.Capacity = req.Capacity
	course.EnrollmentDeadline = req.EnrollmentDeadline
	if req.AutoApproval != nil {
		course.AutoApproval = *req.AutoApproval
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, models.CourseCreatedEvent(course)); err != nil {
		s.log.Warn(ctx, "course.created event publish failed", logger.ErrorField(err))
	}

	s.log.Info(ctx, "course created",
		logger.String("course_id", course.ID),
		logger.String("code", course.Code),
	)
	return toCourseResponse(course), nil
}

func (s *courseAppService) GetByID(ctx context.Context, orgID, id string) (*dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return toCourseResponse(course), nil
}

// requireCourseAccess loads the course and checks the actor may manage it:
// org admins always can, instructors only when assigned.
func (s *courseAppService) requireCourseAccess(ctx context.Context, orgID, actorID, courseID string) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, orgID, courseID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.GetByID(ctx, orgID, actorID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || course.HasInstructor(actorID) {
		return course, nil
	}
	return nil, errors.ErrForbidden("not an instructor of this course")
}

func (s *courseAppService) Update(ctx context.Context, orgID, actorID, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.requireCourseAccess(ctx, orgID, actorID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Capacity != nil {
		if *req.Capacity < 0 {
			return nil, errors.ErrInvalidRequest("capacity must not be negative")
		}
		course.Capacity = *req.Capacity
	}
	if req.EnrollmentDeadline != nil {
		course.EnrollmentDeadline = req.EnrollmentDeadline
	}
	if req.AutoApproval != nil {
		course.AutoApproval = *req.AutoApproval
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	return toCourseResponse(course), nil
}

func (s *courseAppService) List(ctx context.Context, orgID string, page, pageSize int) ([]*dto.CourseResponse, int64, error) {
	offset, limit := pageOffset(page, pageSize)
	courses, total, err := s.courses.List(ctx, orgID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*dto.CourseResponse, len(courses))
	for i, c := range courses {
		out[i] = toCourseResponse(c)
	}
	return out, total, nil
}

func (s *courseAppService) AddInstructor(ctx context.Context, orgID, actorID, courseID string, req *dto.AddInstructorRequest) error {
	if _, err := s.requireCourseAccess(ctx, orgID, actorID, courseID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, orgID, req.UserID)
	if err != nil {
		return err
	}
	if !user.CanManageCourses() {
		return errors.ErrInvalidRequest("user %s cannot be assigned as instructor", req.UserID)
	}

	role := constants.InstructorRole(req.Role)
	switch role {
	case constants.InstructorRolePrimary, constants.InstructorRoleCo, constants.InstructorRoleAssistant:
	default:
		return errors.ErrInvalidRequest("unknown instructor role: %s", req.Role)
	}

	return s.courses.AddInstructor(ctx, &models.CourseInstructor{
		ID:             newID(),
		CourseID:       courseID,
		UserID:         req.UserID,
		OrganizationID: orgID,
		Role:           role,
	})
}

func (s *courseAppService) RemoveInstructor(ctx context.Context, orgID, actorID, courseID, userID string) error {
	course, err := s.requireCourseAccess(ctx, orgID, actorID, courseID)
	if err != nil {
		return err
	}
	if len(course.Instructors) <= 1 {
		return errors.ErrConflict("a course must keep at least one instructor")
	}
	return s.courses.RemoveInstructor(ctx, orgID, courseID, userID)
}

func toCourseResponse(c *models.Course) *dto.CourseResponse {
	resp := &dto.CourseResponse{
		ID:                 c.ID,
		Code:               c.Code,
		Title:              c.Title,
		Description:        c.Description,
		Capacity:           c.Capacity,
		EnrollmentDeadline: c.EnrollmentDeadline,
		AutoApproval:       c.AutoApproval,
		IsActive:           c.IsActive,
		CreatedAt:          c.CreatedAt,
	}
	for _, ci := range c.Instructors {
		resp.Instructors = append(resp.Instructors, dto.InstructorResponse{
			UserID: ci.UserID,
			Role:   string(ci.Role),
		})
	}
	return resp
}
