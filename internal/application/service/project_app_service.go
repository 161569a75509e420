package service

import (
	"context"
	"time"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	"github.com/elevate-edu/elevate/internal/infrastructure/events"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// ProjectAppService manages projects and questionnaire submissions.
type ProjectAppService interface {
	Create(ctx context.Context, orgID, actorID, courseID string, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	GetByID(ctx context.Context, orgID, id string) (*dto.ProjectResponse, error)
	Publish(ctx context.Context, orgID, actorID, id string) (*dto.ProjectResponse, error)
	ListByCourse(ctx context.Context, orgID, courseID string, publishedOnly bool, page, pageSize int) ([]*dto.ProjectResponse, int64, error)

	SubmitQuestionnaire(ctx context.Context, orgID, projectID, userID string, req *dto.SubmitQuestionnaireRequest) (*dto.QuestionnaireResponseDTO, error)
	GetQuestionnaire(ctx context.Context, orgID, projectID, userID string) (*dto.QuestionnaireResponseDTO, error)
	ListQuestionnaires(ctx context.Context, orgID, actorID, projectID string) ([]*dto.QuestionnaireResponseDTO, error)
	QuestionnaireStats(ctx context.Context, orgID, actorID, projectID string) (*dto.QuestionnaireStats, error)
}

type projectAppService struct {
	projects       repository.ProjectRepository
	courses        repository.CourseRepository
	enrollments    repository.EnrollmentRepository
	questionnaires repository.QuestionnaireRepository
	users          repository.UserRepository
	settings       OrganizationAppService
	publisher      events.Publisher
	log            logger.Logger
}

// NewProjectAppService creates the project application service.
func NewProjectAppService(
	projects repository.ProjectRepository,
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	questionnaires repository.QuestionnaireRepository,
	users repository.UserRepository,
	settings OrganizationAppService,
	publisher events.Publisher,
	log logger.Logger,
) ProjectAppService {
	return &projectAppService{
		projects:       projects,
		courses:        courses,
		enrollments:    enrollments,
		questionnaires: questionnaires,
		users:          users,
		settings:       settings,
		publisher:      publisher,
		log:            log.WithComponent("project_service"),
	}
}

func (s *projectAppService) Create(ctx context.Context, orgID, actorID, courseID string, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if _, err := s.requireCourseInstructor(ctx, orgID, actorID, courseID); err != nil {
		return nil, err
	}

	sizeMin, sizeMax := req.TeamSizeMin, req.TeamSizeMax
	if sizeMin == 0 && sizeMax == 0 {
		orgSettings, err := s.settings.GetSettings(ctx, orgID)
		if err != nil {
			return nil, err
		}
		sizeMin, sizeMax = orgSettings.DefaultTeamSizeMin, orgSettings.DefaultTeamSizeMax
	}

	project, err := models.NewProject(orgID, courseID, req.Title, req.Description, actorID,
		req.StartDate, req.DueDate, req.FormationDeadline, sizeMin, sizeMax)
	if err != nil {
		return nil, err
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "project created",
		logger.String("project_id", project.ID),
		logger.String("course_id", courseID),
	)
	return toProjectResponse(project), nil
}

func (s *projectAppService) GetByID(ctx context.Context, orgID, id string) (*dto.ProjectResponse, error) {
	project, err := s.projects.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *projectAppService) Publish(ctx context.Context, orgID, actorID, id string) (*dto.ProjectResponse, error) {
	project, err := s.projects.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCourseInstructor(ctx, orgID, actorID, project.CourseID); err != nil {
		return nil, err
	}
	project.Publish()
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *projectAppService) ListByCourse(ctx context.Context, orgID, courseID string, publishedOnly bool, page, pageSize int) ([]*dto.ProjectResponse, int64, error) {
	offset, limit := pageOffset(page, pageSize)
	projects, total, err := s.projects.ListByCourse(ctx, orgID, courseID, publishedOnly, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*dto.ProjectResponse, len(projects))
	for i, p := range projects {
		out[i] = toProjectResponse(p)
	}
	return out, total, nil
}

// SubmitQuestionnaire records or replaces the student's answers. The project
// must be published, the student enrolled and formation still open.
func (s *projectAppService) SubmitQuestionnaire(ctx context.Context, orgID, projectID, userID string, req *dto.SubmitQuestionnaireRequest) (*dto.QuestionnaireResponseDTO, error) {
	project, err := s.projects.GetByID(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsPublished {
		return nil, errors.ErrProjectNotPublished(projectID)
	}
	if !project.FormationOpen(time.Now()) {
		return nil, errors.ErrFormationClosed(projectID)
	}

	enrollment, err := s.enrollments.GetByCourseAndUser(ctx, orgID, project.CourseID, userID)
	if err != nil {
		return nil, errors.ErrForbidden("not enrolled in this course")
	}
	if !enrollment.IsActive() {
		return nil, errors.ErrForbidden("enrollment is not active")
	}

	scores := make(models.BelbinScores, len(req.BelbinScores))
	for role, score := range req.BelbinScores {
		scores[constants.BelbinRole(role)] = score
	}

	response, err := models.NewQuestionnaireResponse(orgID, projectID, userID,
		scores, models.SkillRatings(req.Skills), req.Availability, req.PreferredTeammates)
	if err != nil {
		return nil, err
	}
	if err := s.questionnaires.Upsert(ctx, response); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, models.QuestionnaireCompletedEvent(response)); err != nil {
		s.log.Warn(ctx, "questionnaire.completed event publish failed", logger.ErrorField(err))
	}
	return toQuestionnaireDTO(response), nil
}

func (s *projectAppService) GetQuestionnaire(ctx context.Context, orgID, projectID, userID string) (*dto.QuestionnaireResponseDTO, error) {
	response, err := s.questionnaires.GetByProjectAndUser(ctx, orgID, projectID, userID)
	if err != nil {
		return nil, err
	}
	return toQuestionnaireDTO(response), nil
}

func (s *projectAppService) ListQuestionnaires(ctx context.Context, orgID, actorID, projectID string) ([]*dto.QuestionnaireResponseDTO, error) {
	project, err := s.projects.GetByID(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCourseInstructor(ctx, orgID, actorID, project.CourseID); err != nil {
		return nil, err
	}

	responses, err := s.questionnaires.ListByProject(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.QuestionnaireResponseDTO, len(responses))
	for i, r := range responses {
		out[i] = toQuestionnaireDTO(r)
	}
	return out, nil
}

// QuestionnaireStats reports how much of the course's active roster has
// submitted, which tells an instructor whether formation is worth starting.
func (s *projectAppService) QuestionnaireStats(ctx context.Context, orgID, actorID, projectID string) (*dto.QuestionnaireStats, error) {
	project, err := s.projects.GetByID(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCourseInstructor(ctx, orgID, actorID, project.CourseID); err != nil {
		return nil, err
	}

	responses, err := s.questionnaires.ListByProject(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	active, err := s.enrollments.CountActive(ctx, orgID, project.CourseID)
	if err != nil {
		return nil, err
	}

	stats := &dto.QuestionnaireStats{
		ProjectID:      projectID,
		Responses:      len(responses),
		ActiveStudents: int(active),
	}
	if active > 0 {
		stats.CompletionRatio = float64(len(responses)) / float64(active)
	}
	return stats, nil
}

func (s *projectAppService) requireCourseInstructor(ctx context.Context, orgID, actorID, courseID string) (*models.Course, error) {
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

func toProjectResponse(p *models.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:                p.ID,
		CourseID:          p.CourseID,
		Title:             p.Title,
		Description:       p.Description,
		StartDate:         p.StartDate,
		DueDate:           p.DueDate,
		FormationDeadline: p.FormationDeadline,
		TeamSizeMin:       p.TeamSizeMin,
		TeamSizeMax:       p.TeamSizeMax,
		IsPublished:       p.IsPublished,
		CreatedAt:         p.CreatedAt,
	}
}

func toQuestionnaireDTO(r *models.QuestionnaireResponse) *dto.QuestionnaireResponseDTO {
	scores := make(map[string]int, len(r.BelbinScores))
	for role, score := range r.BelbinScores {
		scores[string(role)] = score
	}
	return &dto.QuestionnaireResponseDTO{
		ID:                 r.ID,
		ProjectID:          r.ProjectID,
		UserID:             r.UserID,
		BelbinScores:       scores,
		Skills:             map[string]int(r.Skills),
		Availability:       r.Availability,
		PreferredTeammates: r.PreferredTeammates,
		SubmittedAt:        r.SubmittedAt,
	}
}
