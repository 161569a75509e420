package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
)

func TestCourseRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewCourseRepository(db, nopLog())
	ctx := context.Background()
	org := seedOrganization(t, db, "acme")
	instructor := seedUser(t, db, org.ID, "teacher@example.edu", constants.RoleInstructor)

	course, err := models.NewCourse(org.ID, "cs101", "Intro to CS", "", instructor.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, course))

	got, err := repo.GetByID(ctx, org.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "CS101", got.Code)
	require.Len(t, got.Instructors, 1)
	assert.Equal(t, instructor.ID, got.Instructors[0].UserID)
	assert.Equal(t, constants.InstructorRolePrimary, got.Instructors[0].Role)

	byCode, err := repo.GetByCode(ctx, org.ID, "CS101")
	require.NoError(t, err)
	assert.Equal(t, course.ID, byCode.ID)
}

func TestCourseRepo_CodeUniquePerOrganization(t *testing.T) {
	db := newTestDB(t)
	repo := NewCourseRepository(db, nopLog())
	ctx := context.Background()
	orgA := seedOrganization(t, db, "acme")
	orgB := seedOrganization(t, db, "globex")
	instructor := seedUser(t, db, orgA.ID, "teacher@example.edu", constants.RoleInstructor)

	seedCourse(t, db, orgA.ID, "CS101", instructor.ID)

	dup, err := models.NewCourse(orgA.ID, "CS101", "Duplicate", "", instructor.ID)
	require.NoError(t, err)
	assert.True(t, errors.IsConflict(repo.Create(ctx, dup)))

	other, err := models.NewCourse(orgB.ID, "CS101", "Other tenant", "", instructor.ID)
	require.NoError(t, err)
	assert.NoError(t, repo.Create(ctx, other))
}

func TestCourseRepo_Instructors(t *testing.T) {
	db := newTestDB(t)
	repo := NewCourseRepository(db, nopLog())
	ctx := context.Background()
	org := seedOrganization(t, db, "acme")
	primary := seedUser(t, db, org.ID, "primary@example.edu", constants.RoleInstructor)
	second := seedUser(t, db, org.ID, "second@example.edu", constants.RoleInstructor)
	course := seedCourse(t, db, org.ID, "CS101", primary.ID)

	ci := &models.CourseInstructor{
		ID:             uuid.New().String(),
		CourseID:       course.ID,
		UserID:         second.ID,
		OrganizationID: org.ID,
		Role:           constants.InstructorRoleAssistant,
	}
	require.NoError(t, repo.AddInstructor(ctx, ci))

	t.Run("duplicate assignment conflicts", func(t *testing.T) {
		dup := *ci
		dup.ID = uuid.New().String()
		assert.True(t, errors.IsConflict(repo.AddInstructor(ctx, &dup)))
	})

	t.Run("list by instructor", func(t *testing.T) {
		courses, total, err := repo.ListByInstructor(ctx, org.ID, second.ID, 0, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, courses, 1)
		assert.Equal(t, course.ID, courses[0].ID)
	})

	t.Run("remove instructor", func(t *testing.T) {
		require.NoError(t, repo.RemoveInstructor(ctx, org.ID, course.ID, second.ID))
		_, total, err := repo.ListByInstructor(ctx, org.ID, second.ID, 0, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)

		err = repo.RemoveInstructor(ctx, org.ID, course.ID, second.ID)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestCourseRepo_Update(t *testing.T) {
	db := newTestDB(t)
	repo := NewCourseRepository(db, nopLog())
	ctx := context.Background()
	org := seedOrganization(t, db, "acme")
	instructor := seedUser(t, db, org.ID, "teacher@example.edu", constants.RoleInstructor)
	course := seedCourse(t, db, org.ID, "CS101", instructor.ID)

	course.Title = "Renamed"
	course.Capacity = 40
	require.NoError(t, repo.Update(ctx, course))

	got, err := repo.GetByID(ctx, org.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, 40, got.Capacity)
}
