package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/domain/models"
	domainservice "github.com/elevate-edu/elevate/internal/domain/service"
	"github.com/elevate-edu/elevate/internal/infrastructure/crypto"
	"github.com/elevate-edu/elevate/internal/infrastructure/monitoring"
	"github.com/elevate-edu/elevate/internal/infrastructure/persistence/postgres"
	rediscache "github.com/elevate-edu/elevate/internal/infrastructure/persistence/redis"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// newServiceDB opens an in-memory database with the full schema, mirroring
// the repository test setup.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, postgres.AutoMigrate(db))
	return db
}

func newServiceCache(t *testing.T) (*rediscache.CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return rediscache.NewCacheManager(client, logger.NewNop()), mr
}

type formationFixture struct {
	teams   TeamAppService
	cache   *rediscache.CacheManager
	redis   *miniredis.Miniredis
	db      *gorm.DB
	org     *models.Organization
	admin   *models.User
	project *models.Project
}

// newFormationFixture wires a team service against real repositories and a
// miniredis-backed cache, with one published project and the given number of
// questionnaire respondents.
func newFormationFixture(t *testing.T, students int) *formationFixture {
	t.Helper()

	db := newServiceDB(t)
	cache, mr := newServiceCache(t)
	log := logger.NewNop()

	org, err := models.NewOrganization("Acme University", "acme", "")
	require.NoError(t, err)
	require.NoError(t, db.Create(org).Error)

	admin, err := models.NewUser(org.ID, "admin@example.edu", "hashed-password", "Site", "Admin", constants.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, db.Create(admin).Error)

	course, err := models.NewCourse(org.ID, "CS101", "Course CS101", "", admin.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(course).Error)

	now := time.Now()
	project, err := models.NewProject(org.ID, course.ID, "Capstone", "", admin.ID,
		now.Add(-time.Hour), now.Add(30*24*time.Hour), nil, 3, 6)
	require.NoError(t, err)
	project.Publish()
	require.NoError(t, db.Create(project).Error)

	for i := 0; i < students; i++ {
		student, err := models.NewUser(org.ID, fmt.Sprintf("s%02d@example.edu", i),
			"hashed-password", "Student", fmt.Sprintf("%02d", i), constants.RoleStudent)
		require.NoError(t, err)
		require.NoError(t, db.Create(student).Error)
		seedFormationResponse(t, db, org.ID, project.ID, student.ID,
			constants.AllBelbinRoles[i%len(constants.AllBelbinRoles)])
	}

	orgRepo := postgres.NewOrganizationRepository(db, log)
	userRepo := postgres.NewUserRepository(db, log)
	courseRepo := postgres.NewCourseRepository(db, log)
	enrollmentRepo := postgres.NewEnrollmentRepository(db, log)
	projectRepo := postgres.NewProjectRepository(db, log)
	questionnaireRepo := postgres.NewQuestionnaireRepository(db, log)
	teamRepo := postgres.NewTeamRepository(db, log)

	orgSvc := NewOrganizationAppService(orgRepo, userRepo,
		crypto.NewBcryptHasher(bcrypt.MinCost), cache, log)
	engine := domainservice.NewTeamFormationEngine(log, 2)
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())

	teams := NewTeamAppService(teamRepo, projectRepo, courseRepo, userRepo,
		enrollmentRepo, questionnaireRepo, orgSvc, engine, cache, &fakePublisher{}, metrics, log)

	return &formationFixture{
		teams:   teams,
		cache:   cache,
		redis:   mr,
		db:      db,
		org:     org,
		admin:   admin,
		project: project,
	}
}

func seedFormationResponse(t *testing.T, db *gorm.DB, orgID, projectID, userID string, dominant constants.BelbinRole) {
	t.Helper()
	scores := make(models.BelbinScores, len(constants.AllBelbinRoles))
	for _, role := range constants.AllBelbinRoles {
		scores[role] = 10
	}
	scores[dominant] = 90
	r, err := models.NewQuestionnaireResponse(orgID, projectID, userID,
		scores, nil, strings.Repeat("1", constants.HoursPerWeek), nil)
	require.NoError(t, err)
	require.NoError(t, db.Create(r).Error)
}

func waitForFormation(t *testing.T, teams TeamAppService, orgID, projectID string) *dto.FormationJobStatus {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		status, err := teams.JobStatus(context.Background(), orgID, projectID)
		if err == nil && status.State != "running" {
			return status
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("formation job did not finish in time")
	return nil
}

func TestTeamService_StartFormation_ReturnsDetachedStatus(t *testing.T) {
	fx := newFormationFixture(t, 9)
	ctx := context.Background()

	started, err := fx.teams.StartFormation(ctx, fx.org.ID, fx.admin.ID, fx.project.ID)
	require.NoError(t, err)
	assert.Equal(t, "running", started.State)
	assert.Nil(t, started.FinishedAt)

	final := waitForFormation(t, fx.teams, fx.org.ID, fx.project.ID)
	assert.Equal(t, "completed", final.State)
	assert.Greater(t, final.TeamCount, 0)
	assert.NotNil(t, final.FinishedAt)

	// The caller's value is a snapshot; the worker updates its own copy, so
	// encoding the response never races with the background run.
	assert.Equal(t, "running", started.State)
	assert.Nil(t, started.FinishedAt)
}

func TestTeamService_StartFormation_SingleRunPerProject(t *testing.T) {
	fx := newFormationFixture(t, 9)
	ctx := context.Background()
	lockKey := rediscache.FormationLockKey(fx.project.ID)

	// A held job slot rejects every further start, no matter how the status
	// record looks.
	held, err := fx.cache.Acquire(ctx, lockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	_, err = fx.teams.StartFormation(ctx, fx.org.ID, fx.admin.ID, fx.project.ID)
	assert.True(t, errors.IsConflict(err))

	require.NoError(t, fx.cache.Release(ctx, lockKey))

	_, err = fx.teams.StartFormation(ctx, fx.org.ID, fx.admin.ID, fx.project.ID)
	require.NoError(t, err)

	final := waitForFormation(t, fx.teams, fx.org.ID, fx.project.ID)
	assert.Equal(t, "completed", final.State)

	// The worker frees the slot when it finishes.
	assert.Eventually(t, func() bool { return !fx.redis.Exists(lockKey) },
		2*time.Second, 10*time.Millisecond)
}
