package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
)

func TestEnrollmentRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewEnrollmentRepository(db, nopLog())
	ctx := context.Background()
	org := seedOrganization(t, db, "acme")
	instructor := seedUser(t, db, org.ID, "teacher@example.edu", constants.RoleInstructor)
	student := seedUser(t, db, org.ID, "student@example.edu", constants.RoleStudent)
	course := seedCourse(t, db, org.ID, "CS101", instructor.ID)

	enrollment := models.NewEnrollment(org.ID, course.ID, student.ID, constants.EnrollmentMethodSelf, true)
	require.NoError(t, repo.Create(ctx, enrollment))

	got, err := repo.GetByCourseAndUser(ctx, org.ID, course.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.ID, got.ID)
	assert.Equal(t, constants.EnrollmentStatusActive, got.Status)
}

func TestEnrollmentRepo_DuplicateEnrollmentConflicts(t *testing.T) {
	db := newTestDB(t)
	repo := NewEnrollmentRepository(db, nopLog())
	ctx := context.Background()
	org := seedOrganization(t, db, "acme")
	instructor := seedUser(t, db, org.ID, "teacher@example.edu", constants.RoleInstructor)
	student := seedUser(t, db, org.ID, "student@example.edu", constants.RoleStudent)
	course := seedCourse(t, db, org.ID, "CS101", instructor.ID)

	require.NoError(t, repo.Create(ctx, models.NewEnrollment(org.ID, course.ID, student.ID, constants.EnrollmentMethodSelf, true)))

	err := repo.Create(ctx, models.NewEnrollment(org.ID, course.ID, student.ID, constants.EnrollmentMethodSelf, true))
	assert.True(t, errors.IsConflict(err))
}

func TestEnrollmentRepo_StatusTransitionPersists(t *testing.T) {
	db := newTestDB(t)
	repo := NewEnrollmentRepository(db, nopLog())
	ctx := context.Background()
	org := seedOrganization(t, db, "acme")
	instructor := seedUser(t, db, org.ID, "teacher@example.edu", constants.RoleInstructor)
	student := seedUser(t, db, org.ID, "student@example.edu", constants.RoleStudent)
	course := seedCourse(t, db, org.ID, "CS101", instructor.ID)

	enrollment := models.NewEnrollment(org.ID, course.ID, student.ID, constants.EnrollmentMethodSelf, false)
	require.NoError(t, repo.Create(ctx, enrollment))
	assert.Equal(t, constants.EnrollmentStatusPending, enrollment.Status)

	require.NoError(t, enrollment.Approve())
	require.NoError(t, repo.Update(ctx, enrollment))

	got, err := repo.GetByID(ctx, org.ID, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.EnrollmentStatusActive, got.Status)

	require.NoError(t, enrollment.Complete())
	require.NoError(t, repo.Update(ctx, enrollment))

	got, err = repo.GetByID(ctx, org.ID, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.EnrollmentStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
}

func TestEnrollmentRepo_DropAndReenrollPersists(t *testing.T) {
	db := newTestDB(t)
	repo := NewEnrollmentRepository(db, nopLog())
	ctx := context.Background()
	org := seedOrganization(t, db, "acme")
	instructor := seedUser(t, db, org.ID, "teacher@example.edu", constants.RoleInstructor)
	student := seedUser(t, db, org.ID, "student@example.edu", constants.RoleStudent)
	course := seedCourse(t, db, org.ID, "CS101", instructor.ID)

	enrollment := models.NewEnrollment(org.ID, course.ID, student.ID, constants.EnrollmentMethodSelf, true)
	require.NoError(t, repo.Create(ctx, enrollment))

	require.NoError(t, enrollment.Drop())
	require.NoError(t, repo.Update(ctx, enrollment))

	got, err := repo.GetByID(ctx, org.ID, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.EnrollmentStatusDropped, got.Status)
	assert.NotNil(t, got.DroppedAt)

	// Re-enrollment reuses the row, so the unique (course, user) key holds.
	require.NoError(t, got.Reenroll(constants.EnrollmentMethodInstructor, false))
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByCourseAndUser(ctx, org.ID, course.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.ID, again.ID)
	assert.Equal(t, constants.EnrollmentStatusActive, again.Status)
	assert.Equal(t, constants.EnrollmentMethodInstructor, again.Method)
	assert.Nil(t, again.DroppedAt)
}

func TestEnrollmentRepo_CountActive(t *testing.T) {
	db := newTestDB(t)
	repo := NewEnrollmentRepository(db, nopLog())
	ctx := context.Background()
	org := seedOrganization(t, db, "acme")
	instructor := seedUser(t, db, org.ID, "teacher@example.edu", constants.RoleInstructor)
	course := seedCourse(t, db, org.ID, "CS101", instructor.ID)

	for i := 0; i < 3; i++ {
		student := seedUser(t, db, org.ID, fmt.Sprintf("s%d@example.edu", i), constants.RoleStudent)
		require.NoError(t, repo.Create(ctx, models.NewEnrollment(org.ID, course.ID, student.ID, constants.EnrollmentMethodInstructor, true)))
	}
	pendingStudent := seedUser(t, db, org.ID, "pending@example.edu", constants.RoleStudent)
	require.NoError(t, repo.Create(ctx, models.NewEnrollment(org.ID, course.ID, pendingStudent.ID, constants.EnrollmentMethodSelf, false)))

	count, err := repo.CountActive(ctx, org.ID, course.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestEnrollmentRepo_ListByCourse(t *testing.T) {
	db := newTestDB(t)
	repo := NewEnrollmentRepository(db, nopLog())
	ctx := context.Background()
	org := seedOrganization(t, db, "acme")
	instructor := seedUser(t, db, org.ID, "teacher@example.edu", constants.RoleInstructor)
	course := seedCourse(t, db, org.ID, "CS101", instructor.ID)

	active := seedUser(t, db, org.ID, "active@example.edu", constants.RoleStudent)
	pending := seedUser(t, db, org.ID, "pending@example.edu", constants.RoleStudent)
	require.NoError(t, repo.Create(ctx, models.NewEnrollment(org.ID, course.ID, active.ID, constants.EnrollmentMethodInstructor, true)))
	require.NoError(t, repo.Create(ctx, models.NewEnrollment(org.ID, course.ID, pending.ID, constants.EnrollmentMethodSelf, false)))

	all, total, err := repo.ListByCourse(ctx, org.ID, course.ID, "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	pendingOnly, total, err := repo.ListByCourse(ctx, org.ID, course.ID, constants.EnrollmentStatusPending, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, pendingOnly, 1)
	assert.Equal(t, pending.ID, pendingOnly[0].UserID)
}
