package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/infrastructure/crypto"
	"github.com/elevate-edu/elevate/internal/infrastructure/persistence/postgres"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

type enrollmentFixture struct {
	enrollments EnrollmentAppService
	org         *models.Organization
	course      *models.Course
	student     *models.User
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	t.Helper()

	db := newServiceDB(t)
	cache, _ := newServiceCache(t)
	log := logger.NewNop()

	org, err := models.NewOrganization("Acme University", "acme", "")
	require.NoError(t, err)
	require.NoError(t, db.Create(org).Error)

	instructor, err := models.NewUser(org.ID, "teacher@example.edu", "hashed-password", "Test", "Teacher", constants.RoleInstructor)
	require.NoError(t, err)
	require.NoError(t, db.Create(instructor).Error)

	student, err := models.NewUser(org.ID, "student@example.edu", "hashed-password", "Test", "Student", constants.RoleStudent)
	require.NoError(t, err)
	require.NoError(t, db.Create(student).Error)

	course, err := models.NewCourse(org.ID, "CS101", "Course CS101", "", instructor.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(course).Error)

	orgRepo := postgres.NewOrganizationRepository(db, log)
	userRepo := postgres.NewUserRepository(db, log)
	courseRepo := postgres.NewCourseRepository(db, log)
	enrollmentRepo := postgres.NewEnrollmentRepository(db, log)

	orgSvc := NewOrganizationAppService(orgRepo, userRepo,
		crypto.NewBcryptHasher(bcrypt.MinCost), cache, log)
	enrollments := NewEnrollmentAppService(enrollmentRepo, courseRepo, userRepo, orgSvc, log)

	return &enrollmentFixture{
		enrollments: enrollments,
		org:         org,
		course:      course,
		student:     student,
	}
}

func TestEnrollmentService_SelfEnroll(t *testing.T) {
	fx := newEnrollmentFixture(t)
	ctx := context.Background()

	resp, err := fx.enrollments.SelfEnroll(ctx, fx.org.ID, fx.course.ID, fx.student.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.EnrollmentStatusActive), resp.Status)
	assert.Equal(t, string(constants.EnrollmentMethodSelf), resp.Method)

	// Enrolling while already enrolled conflicts.
	_, err = fx.enrollments.SelfEnroll(ctx, fx.org.ID, fx.course.ID, fx.student.ID)
	assert.True(t, errors.IsConflict(err))
}

func TestEnrollmentService_ReenrollAfterDrop(t *testing.T) {
	fx := newEnrollmentFixture(t)
	ctx := context.Background()

	first, err := fx.enrollments.SelfEnroll(ctx, fx.org.ID, fx.course.ID, fx.student.ID)
	require.NoError(t, err)

	// Students may drop their own enrollment.
	require.NoError(t, fx.enrollments.Drop(ctx, fx.org.ID, fx.student.ID, first.ID))

	second, err := fx.enrollments.SelfEnroll(ctx, fx.org.ID, fx.course.ID, fx.student.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, string(constants.EnrollmentStatusActive), second.Status)
	assert.Nil(t, second.DroppedAt)
}
