package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// EnrollmentAppService manages course enrollments, including self-enrollment,
// instructor additions and CSV roster import.
type EnrollmentAppService interface {
	SelfEnroll(ctx context.Context, orgID, courseID, userID string) (*dto.EnrollmentResponse, error)
	AddStudent(ctx context.Context, orgID, actorID, courseID string, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error)
	ImportCSV(ctx context.Context, orgID, actorID, courseID string, r io.Reader) (*dto.CSVImportResult, error)
	Approve(ctx context.Context, orgID, actorID, enrollmentID string) error
	Drop(ctx context.Context, orgID, actorID, enrollmentID string) error
	Complete(ctx context.Context, orgID, actorID, enrollmentID string) error
	ListByCourse(ctx context.Context, orgID, courseID string, status constants.EnrollmentStatus, page, pageSize int) ([]*dto.EnrollmentResponse, int64, error)
	ListByUser(ctx context.Context, orgID, userID string, page, pageSize int) ([]*dto.EnrollmentResponse, int64, error)
}

type enrollmentAppService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	users       repository.UserRepository
	settings    OrganizationAppService
	log         logger.Logger
}

// NewEnrollmentAppService creates the enrollment application service.
func NewEnrollmentAppService(
	enrollments repository.EnrollmentRepository,
	courses repository.CourseRepository,
	users repository.UserRepository,
	settings OrganizationAppService,
	log logger.Logger,
) EnrollmentAppService {
	return &enrollmentAppService{
		enrollments: enrollments,
		courses:     courses,
		users:       users,
		settings:    settings,
		log:         log.WithComponent("enrollment_service"),
	}
}

func (s *enrollmentAppService) SelfEnroll(ctx context.Context, orgID, courseID, userID string) (*dto.EnrollmentResponse, error) {
	orgSettings, err := s.settings.GetSettings(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !orgSettings.AllowSelfEnrollment {
		return nil, errors.ErrForbidden("self-enrollment is disabled for this organization")
	}

	course, err := s.courses.GetByID(ctx, orgID, courseID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.enroll(ctx, course, userID, constants.EnrollmentMethodSelf)
	if err != nil {
		return nil, err
	}
	return toEnrollmentResponse(enrollment), nil
}

func (s *enrollmentAppService) AddStudent(ctx context.Context, orgID, actorID, courseID string, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	course, method, err := s.requireRosterAccess(ctx, orgID, actorID, courseID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.enroll(ctx, course, req.UserID, method)
	if err != nil {
		return nil, err
	}
	return toEnrollmentResponse(enrollment), nil
}

// enroll applies the shared enrollment rules: the student must exist and be
// a student, the deadline must not have passed and capacity must remain.
func (s *enrollmentAppService) enroll(ctx context.Context, course *models.Course, userID string, method constants.EnrollmentMethod) (*models.Enrollment, error) {
	student, err := s.users.GetByID(ctx, course.OrganizationID, userID)
	if err != nil {
		return nil, err
	}
	if student.Role != constants.RoleStudent {
		return nil, errors.ErrInvalidRequest("only students can be enrolled")
	}
	if !course.EnrollmentOpen(time.Now()) {
		return nil, errors.ErrEnrollmentClosed(course.ID)
	}

	active, err := s.enrollments.CountActive(ctx, course.OrganizationID, course.ID)
	if err != nil {
		return nil, err
	}
	if !course.HasCapacityFor(int(active)) {
		return nil, errors.ErrCourseFull(course.ID)
	}

	// A dropped enrollment keeps its row for the (course, user) key, so a
	// returning student reactivates it instead of inserting a duplicate.
	existing, err := s.enrollments.GetByCourseAndUser(ctx, course.OrganizationID, course.ID, userID)
	switch {
	case err == nil && existing.Status == constants.EnrollmentStatusDropped:
		if err := existing.Reenroll(method, course.AutoApproval); err != nil {
			return nil, err
		}
		if err := s.enrollments.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.log.Info(ctx, "student re-enrolled",
			logger.String("course_id", course.ID),
			logger.String("user_id", userID),
			logger.String("method", string(method)),
			logger.String("status", string(existing.Status)),
		)
		return existing, nil
	case err == nil:
		return nil, errors.ErrAlreadyEnrolled(course.ID)
	case !errors.IsNotFound(err):
		return nil, err
	}

	enrollment := models.NewEnrollment(course.OrganizationID, course.ID, userID, method, course.AutoApproval)
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "student enrolled",
		logger.String("course_id", course.ID),
		logger.String("user_id", userID),
		logger.String("method", string(method)),
		logger.String("status", string(enrollment.Status)),
	)
	return enrollment, nil
}

// ImportCSV enrolls students listed in a CSV with an "email" column. Rows
// that fail are reported but do not abort the import.
func (s *enrollmentAppService) ImportCSV(ctx context.Context, orgID, actorID, courseID string, r io.Reader) (*dto.CSVImportResult, error) {
	course, _, err := s.requireRosterAccess(ctx, orgID, actorID, courseID)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.ErrInvalidRequest("empty or unreadable CSV")
	}
	emailCol := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "email") {
			emailCol = i
			break
		}
	}
	if emailCol < 0 {
		return nil, errors.ErrInvalidRequest("CSV must contain an email column")
	}

	result := &dto.CSVImportResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if emailCol >= len(record) {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: missing email", line))
			continue
		}
		email := models.NormalizeEmail(record[emailCol])

		student, err := s.users.GetByEmail(ctx, orgID, email)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %s: no such user", line, email))
			continue
		}
		if _, err := s.enroll(ctx, course, student.ID, constants.EnrollmentMethodCSVImport); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %s: %s", line, email, importError(err)))
			continue
		}
		result.Enrolled++
	}

	s.log.Info(ctx, "csv import finished",
		logger.String("course_id", courseID),
		logger.Int("enrolled", result.Enrolled),
		logger.Int("skipped", result.Skipped),
	)
	return result, nil
}

func importError(err error) string {
	if appErr, ok := errors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// requireRosterAccess checks the actor may manage the course roster and
// returns the enrollment method matching the actor's role.
func (s *enrollmentAppService) requireRosterAccess(ctx context.Context, orgID, actorID, courseID string) (*models.Course, constants.EnrollmentMethod, error) {
	course, err := s.courses.GetByID(ctx, orgID, courseID)
	if err != nil {
		return nil, "", err
	}
	actor, err := s.users.GetByID(ctx, orgID, actorID)
	if err != nil {
		return nil, "", err
	}
	if actor.IsAdmin() {
		return course, constants.EnrollmentMethodAdmin, nil
	}
	if course.HasInstructor(actorID) {
		return course, constants.EnrollmentMethodInstructor, nil
	}
	return nil, "", errors.ErrForbidden("not an instructor of this course")
}

func (s *enrollmentAppService) Approve(ctx context.Context, orgID, actorID, enrollmentID string) error {
	return s.transition(ctx, orgID, actorID, enrollmentID, func(e *models.Enrollment) error { return e.Approve() })
}

func (s *enrollmentAppService) Complete(ctx context.Context, orgID, actorID, enrollmentID string) error {
	return s.transition(ctx, orgID, actorID, enrollmentID, func(e *models.Enrollment) error { return e.Complete() })
}

// Drop may be performed by the enrolled student, a course instructor or an
// admin.
func (s *enrollmentAppService) Drop(ctx context.Context, orgID, actorID, enrollmentID string) error {
	enrollment, err := s.enrollments.GetByID(ctx, orgID, enrollmentID)
	if err != nil {
		return err
	}
	if enrollment.UserID != actorID {
		if _, _, err := s.requireRosterAccess(ctx, orgID, actorID, enrollment.CourseID); err != nil {
			return err
		}
	}
	if err := enrollment.Drop(); err != nil {
		return err
	}
	return s.enrollments.Update(ctx, enrollment)
}

func (s *enrollmentAppService) transition(ctx context.Context, orgID, actorID, enrollmentID string, apply func(*models.Enrollment) error) error {
	enrollment, err := s.enrollments.GetByID(ctx, orgID, enrollmentID)
	if err != nil {
		return err
	}
	if _, _, err := s.requireRosterAccess(ctx, orgID, actorID, enrollment.CourseID); err != nil {
		return err
	}
	if err := apply(enrollment); err != nil {
		return err
	}
	return s.enrollments.Update(ctx, enrollment)
}

func (s *enrollmentAppService) ListByCourse(ctx context.Context, orgID, courseID string, status constants.EnrollmentStatus, page, pageSize int) ([]*dto.EnrollmentResponse, int64, error) {
	offset, limit := pageOffset(page, pageSize)
	enrollments, total, err := s.enrollments.ListByCourse(ctx, orgID, courseID, status, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return toEnrollmentResponses(enrollments), total, nil
}

func (s *enrollmentAppService) ListByUser(ctx context.Context, orgID, userID string, page, pageSize int) ([]*dto.EnrollmentResponse, int64, error) {
	offset, limit := pageOffset(page, pageSize)
	enrollments, total, err := s.enrollments.ListByUser(ctx, orgID, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return toEnrollmentResponses(enrollments), total, nil
}

func toEnrollmentResponse(e *models.Enrollment) *dto.EnrollmentResponse {
	return &dto.EnrollmentResponse{
		ID:          e.ID,
		CourseID:    e.CourseID,
		UserID:      e.UserID,
		Status:      string(e.Status),
		Method:      string(e.Method),
		EnrolledAt:  e.EnrolledAt,
		CompletedAt: e.CompletedAt,
		DroppedAt:   e.DroppedAt,
	}
}

func toEnrollmentResponses(list []*models.Enrollment) []*dto.EnrollmentResponse {
	out := make([]*dto.EnrollmentResponse, len(list))
	for i, e := range list {
		out[i] = toEnrollmentResponse(e)
	}
	return out
}
