package service

import (
	"context"
	"time"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	domainservice "github.com/elevate-edu/elevate/internal/domain/service"
	"github.com/elevate-edu/elevate/internal/infrastructure/events"
	"github.com/elevate-edu/elevate/internal/infrastructure/monitoring"
	rediscache "github.com/elevate-edu/elevate/internal/infrastructure/persistence/redis"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// TeamAppService manages teams: self-formed team lifecycle, instructor
// actions and the asynchronous auto-formation job.
type TeamAppService interface {
	CreateSelfFormed(ctx context.Context, orgID, projectID, userID string, req *dto.CreateTeamRequest) (*dto.TeamResponse, error)
	Join(ctx context.Context, orgID, teamID, userID string) (*dto.TeamResponse, error)
	Leave(ctx context.Context, orgID, teamID, userID string) error
	Lock(ctx context.Context, orgID, actorID, teamID string) error
	GetByID(ctx context.Context, orgID, teamID string) (*dto.TeamResponse, error)
	ListByProject(ctx context.Context, orgID, projectID string) ([]*dto.TeamResponse, error)

	// StartFormation launches the engine in the background and returns
	// immediately; progress is tracked via JobStatus.
	StartFormation(ctx context.Context, orgID, actorID, projectID string) (*dto.FormationJobStatus, error)
	JobStatus(ctx context.Context, orgID, projectID string) (*dto.FormationJobStatus, error)

	CompositionReport(ctx context.Context, orgID, actorID, projectID string) (*dto.CompositionReport, error)
}

type teamAppService struct {
	teams          repository.TeamRepository
	projects       repository.ProjectRepository
	courses        repository.CourseRepository
	users          repository.UserRepository
	enrollments    repository.EnrollmentRepository
	questionnaires repository.QuestionnaireRepository
	settings       OrganizationAppService
	engine         *domainservice.TeamFormationEngine
	cache          *rediscache.CacheManager
	publisher      events.Publisher
	metrics        *monitoring.Metrics
	log            logger.Logger
}

// NewTeamAppService creates the team application service.
func NewTeamAppService(
	teams repository.TeamRepository,
	projects repository.ProjectRepository,
	courses repository.CourseRepository,
	users repository.UserRepository,
	enrollments repository.EnrollmentRepository,
	questionnaires repository.QuestionnaireRepository,
	settings OrganizationAppService,
	engine *domainservice.TeamFormationEngine,
	cache *rediscache.CacheManager,
	publisher events.Publisher,
	metrics *monitoring.Metrics,
	log logger.Logger,
) TeamAppService {
	return &teamAppService{
		teams:          teams,
		projects:       projects,
		courses:        courses,
		users:          users,
		enrollments:    enrollments,
		questionnaires: questionnaires,
		settings:       settings,
		engine:         engine,
		cache:          cache,
		publisher:      publisher,
		metrics:        metrics,
		log:            log.WithComponent("team_service"),
	}
}

func (s *teamAppService) CreateSelfFormed(ctx context.Context, orgID, projectID, userID string, req *dto.CreateTeamRequest) (*dto.TeamResponse, error) {
	orgSettings, err := s.settings.GetSettings(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !orgSettings.AllowSelfFormedTeams {
		return nil, errors.ErrForbidden("self-formed teams are disabled for this organization")
	}

	project, err := s.openProject(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUnteamed(ctx, orgID, projectID, userID); err != nil {
		return nil, err
	}

	team := models.NewTeam(orgID, projectID, req.Name, models.TeamOriginSelfFormed)
	if err := team.AddMember(userID, project.TeamSizeMax); err != nil {
		return nil, err
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}
	return toTeamResponse(team), nil
}

func (s *teamAppService) Join(ctx context.Context, orgID, teamID, userID string) (*dto.TeamResponse, error) {
	team, err := s.teams.GetByID(ctx, orgID, teamID)
	if err != nil {
		return nil, err
	}
	project, err := s.openProject(ctx, orgID, team.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUnteamed(ctx, orgID, team.ProjectID, userID); err != nil {
		return nil, err
	}
	if err := team.AddMember(userID, project.TeamSizeMax); err != nil {
		return nil, err
	}
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, err
	}
	return toTeamResponse(team), nil
}

func (s *teamAppService) Leave(ctx context.Context, orgID, teamID, userID string) error {
	team, err := s.teams.GetByID(ctx, orgID, teamID)
	if err != nil {
		return err
	}
	if _, err := s.openProject(ctx, orgID, team.ProjectID); err != nil {
		return err
	}
	if err := team.RemoveMember(userID); err != nil {
		return err
	}
	// An emptied team is removed rather than left as a shell.
	if len(team.Members) == 0 {
		return s.teams.Delete(ctx, orgID, teamID)
	}
	return s.teams.Update(ctx, team)
}

func (s *teamAppService) Lock(ctx context.Context, orgID, actorID, teamID string) error {
	team, err := s.teams.GetByID(ctx, orgID, teamID)
	if err != nil {
		return err
	}
	project, err := s.projects.GetByID(ctx, orgID, team.ProjectID)
	if err != nil {
		return err
	}
	if _, err := s.requireInstructor(ctx, orgID, actorID, project.CourseID); err != nil {
		return err
	}
	if len(team.Members) < project.TeamSizeMin {
		return errors.ErrConflict("team is below the minimum size of %d", project.TeamSizeMin)
	}
	team.Lock()
	return s.teams.Update(ctx, team)
}

func (s *teamAppService) GetByID(ctx context.Context, orgID, teamID string) (*dto.TeamResponse, error) {
	team, err := s.teams.GetByID(ctx, orgID, teamID)
	if err != nil {
		return nil, err
	}
	return toTeamResponse(team), nil
}

func (s *teamAppService) ListByProject(ctx context.Context, orgID, projectID string) ([]*dto.TeamResponse, error) {
	teams, err := s.teams.ListByProject(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TeamResponse, len(teams))
	for i, t := range teams {
		out[i] = toTeamResponse(t)
	}
	return out, nil
}

// StartFormation validates the request, marks the job running in Redis and
// launches the engine in a goroutine detached from the request context.
func (s *teamAppService) StartFormation(ctx context.Context, orgID, actorID, projectID string) (*dto.FormationJobStatus, error) {
	project, err := s.projects.GetByID(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireInstructor(ctx, orgID, actorID, project.CourseID); err != nil {
		return nil, err
	}

	responses, err := s.questionnaires.ListByProject(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	// Only students not already on a team participate.
	teamed := make(map[string]bool)
	existingTeams, err := s.teams.ListByProject(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	for _, t := range existingTeams {
		for _, id := range t.MemberIDs() {
			teamed[id] = true
		}
	}
	pool := responses[:0:0]
	for _, r := range responses {
		if !teamed[r.UserID] {
			pool = append(pool, r)
		}
	}
	if len(pool) < project.TeamSizeMin {
		return nil, errors.ErrInvalidRequest("not enough questionnaire responses to form a team: have %d, need %d",
			len(pool), project.TeamSizeMin)
	}

	orgSettings, err := s.settings.GetSettings(ctx, orgID)
	if err != nil {
		return nil, err
	}

	// One job per project at a time. The slot is claimed atomically so two
	// concurrent starts cannot both launch; the TTL frees it if the worker
	// dies without releasing.
	lockKey := rediscache.FormationLockKey(projectID)
	acquired, err := s.cache.Acquire(ctx, lockKey, orgSettings.FormationTimeout()+time.Minute)
	if err != nil {
		return nil, errors.ErrUnavailable("formation job slot unavailable").WithCause(err)
	}
	if !acquired {
		return nil, errors.ErrFormationRunning(projectID)
	}

	status := &dto.FormationJobStatus{
		ProjectID: projectID,
		State:     "running",
		StartedAt: time.Now(),
	}
	if err := s.setJobStatus(ctx, projectID, status); err != nil {
		if relErr := s.cache.Release(ctx, lockKey); relErr != nil {
			s.log.Warn(ctx, "formation lock release failed", logger.ErrorField(relErr))
		}
		return nil, err
	}

	go s.runFormation(orgID, project, pool, orgSettings.FormationTimeout(), status)

	// The worker owns status from here on; callers get their own snapshot.
	snapshot := *status
	return &snapshot, nil
}

// runFormation executes the engine with its own context bounded by the
// tenant's formation timeout.
func (s *teamAppService) runFormation(orgID string, project *models.Project,
	pool []*models.QuestionnaireResponse, timeout time.Duration, status *dto.FormationJobStatus) {

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	defer func() {
		if err := s.cache.Release(context.Background(), rediscache.FormationLockKey(project.ID)); err != nil {
			s.log.Warn(context.Background(), "formation lock release failed", logger.ErrorField(err))
		}
	}()

	result, err := s.engine.Form(ctx, domainservice.FormationInput{
		OrganizationID: orgID,
		ProjectID:      project.ID,
		Responses:      pool,
		TeamSizeMin:    project.TeamSizeMin,
		TeamSizeMax:    project.TeamSizeMax,
	})

	now := time.Now()
	status.FinishedAt = &now
	bg := context.Background()

	if err == nil {
		err = s.teams.CreateBatch(bg, result.Teams)
	}
	if err != nil {
		status.State = "failed"
		status.Error = importError(err)
		s.metrics.FormationRuns.WithLabelValues("failed").Inc()
		s.log.Error(bg, "formation job failed", err, logger.String("project_id", project.ID))
	} else {
		status.State = "completed"
		status.TeamCount = len(result.Teams)
		status.Unassigned = result.Unassigned
		if len(result.Teams) > 0 {
			status.Score = result.TotalScore / float64(len(result.Teams))
		}
		s.metrics.FormationRuns.WithLabelValues("completed").Inc()
		s.metrics.FormationDuration.Observe(result.Elapsed.Seconds())
		s.metrics.FormationScore.Observe(status.Score)

		for _, team := range result.Teams {
			if pubErr := s.publisher.Publish(bg, models.TeamFormedEvent(team)); pubErr != nil {
				s.log.Warn(bg, "team.formed event publish failed", logger.ErrorField(pubErr))
			}
		}
	}

	if err := s.setJobStatus(bg, project.ID, status); err != nil {
		s.log.Warn(bg, "formation job status write failed", logger.ErrorField(err))
	}
}

func (s *teamAppService) JobStatus(ctx context.Context, orgID, projectID string) (*dto.FormationJobStatus, error) {
	// Ensure the project belongs to the tenant before exposing job state.
	if _, err := s.projects.GetByID(ctx, orgID, projectID); err != nil {
		return nil, err
	}
	var status dto.FormationJobStatus
	if err := s.cache.Get(ctx, rediscache.FormationJobKey(projectID), &status); err != nil {
		return nil, errors.ErrNotFound("formation job", projectID)
	}
	return &status, nil
}

func (s *teamAppService) setJobStatus(ctx context.Context, projectID string, status *dto.FormationJobStatus) error {
	return s.cache.Set(ctx, rediscache.FormationJobKey(projectID), status, constants.FormationJobStatusTTL)
}

// CompositionReport aggregates dominant-role coverage across the project's
// teams. Available only when the tenant enables analytics.
func (s *teamAppService) CompositionReport(ctx context.Context, orgID, actorID, projectID string) (*dto.CompositionReport, error) {
	orgSettings, err := s.settings.GetSettings(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !orgSettings.EnableAnalytics {
		return nil, errors.ErrForbidden("analytics are disabled for this organization")
	}

	project, err := s.projects.GetByID(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireInstructor(ctx, orgID, actorID, project.CourseID); err != nil {
		return nil, err
	}

	teams, err := s.teams.ListByProject(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	responses, err := s.questionnaires.ListByProject(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	roleByUser := make(map[string]constants.BelbinRole, len(responses))
	for _, r := range responses {
		roleByUser[r.UserID] = r.DominantRole()
	}

	report := &dto.CompositionReport{
		ProjectID:        projectID,
		TeamCount:        len(teams),
		RoleDistribution: make(map[string]int),
	}
	scoreSum := 0.0
	for _, team := range teams {
		scoreSum += team.Score
		covered := make(map[constants.BelbinRole]bool)
		for _, userID := range team.MemberIDs() {
			report.StudentsTeamed++
			if role, ok := roleByUser[userID]; ok {
				report.RoleDistribution[string(role)]++
				covered[role] = true
			}
		}
		var missing []string
		for _, role := range constants.AllBelbinRoles {
			if !covered[role] {
				missing = append(missing, string(role))
			}
		}
		if len(missing) > 0 && len(missing) < len(constants.AllBelbinRoles) {
			if report.TeamsMissingRoles == nil {
				report.TeamsMissingRoles = make(map[string][]string)
			}
			report.TeamsMissingRoles[team.ID] = missing
		}
	}
	if len(teams) > 0 {
		report.AverageScore = scoreSum / float64(len(teams))
	}
	return report, nil
}

// openProject loads a project and checks it is published with formation
// still open.
func (s *teamAppService) openProject(ctx context.Context, orgID, projectID string) (*models.Project, error) {
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
	return project, nil
}

// requireUnteamed checks the user is actively enrolled and not already on a
// team for the project.
func (s *teamAppService) requireUnteamed(ctx context.Context, orgID, projectID, userID string) error {
	project, err := s.projects.GetByID(ctx, orgID, projectID)
	if err != nil {
		return err
	}
	enrollment, err := s.enrollments.GetByCourseAndUser(ctx, orgID, project.CourseID, userID)
	if err != nil {
		return errors.ErrForbidden("not enrolled in this course")
	}
	if !enrollment.IsActive() {
		return errors.ErrForbidden("enrollment is not active")
	}
	if _, err := s.teams.GetByProjectAndMember(ctx, orgID, projectID, userID); err == nil {
		return errors.ErrConflict("user is already on a team for this project")
	}
	return nil
}

func (s *teamAppService) requireInstructor(ctx context.Context, orgID, actorID, courseID string) (*models.Course, error) {
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

func toTeamResponse(t *models.Team) *dto.TeamResponse {
	resp := &dto.TeamResponse{
		ID:        t.ID,
		ProjectID: t.ProjectID,
		Name:      t.Name,
		Origin:    string(t.Origin),
		IsLocked:  t.IsLocked,
		Score:     t.Score,
		Members:   make([]dto.TeamMemberResponse, len(t.Members)),
		CreatedAt: t.CreatedAt,
	}
	for i, m := range t.Members {
		resp.Members[i] = dto.TeamMemberResponse{UserID: m.UserID, JoinedAt: m.JoinedAt}
	}
	return resp
}
