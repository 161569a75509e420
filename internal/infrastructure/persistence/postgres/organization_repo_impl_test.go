package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/pkg/errors"
)

func TestOrganizationRepo_CreateAndLookups(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationRepository(db, nopLog())
	ctx := context.Background()

	org, err := models.NewOrganization("Acme University", "acme", "acme.example.edu")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, org))

	byID, err := repo.GetByID(ctx, org.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.Settings)
	assert.Equal(t, models.PlanFree, byID.Settings.Plan)

	bySlug, err := repo.GetBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, org.ID, bySlug.ID)

	byDomain, err := repo.GetByDomain(ctx, "acme.example.edu")
	require.NoError(t, err)
	assert.Equal(t, org.ID, byDomain.ID)

	_, err = repo.GetBySlug(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestOrganizationRepo_SlugConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationRepository(db, nopLog())
	ctx := context.Background()

	seedOrganization(t, db, "acme")

	dup, err := models.NewOrganization("Another Acme", "acme", "")
	require.NoError(t, err)
	createErr := repo.Create(ctx, dup)
	assert.True(t, errors.IsConflict(createErr))
	assert.Contains(t, createErr.Error(), "slug")
}

func TestOrganizationRepo_DomainConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationRepository(db, nopLog())
	ctx := context.Background()

	seedOrganization(t, db, "acme")

	dup, err := models.NewOrganization("Globex Corp", "globex", "acme.example.edu")
	require.NoError(t, err)
	createErr := repo.Create(ctx, dup)
	assert.True(t, errors.IsConflict(createErr))
	assert.Contains(t, createErr.Error(), "domain")
}

func TestOrganizationRepo_CreateWithoutDomain(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationRepository(db, nopLog())
	ctx := context.Background()

	first, err := models.NewOrganization("Acme University", "acme", "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := models.NewOrganization("Globex Corp", "globex", "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, second))
}

func TestOrganizationRepo_Settings(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationRepository(db, nopLog())
	ctx := context.Background()
	org := seedOrganization(t, db, "acme")

	settings, err := repo.GetSettings(ctx, org.ID)
	require.NoError(t, err)
	assert.True(t, settings.AllowSelfEnrollment)

	settings.AllowSelfEnrollment = false
	settings.EnableAnalytics = true
	settings.DefaultTeamSizeMin = 4
	require.NoError(t, repo.UpdateSettings(ctx, settings))

	got, err := repo.GetSettings(ctx, org.ID)
	require.NoError(t, err)
	assert.False(t, got.AllowSelfEnrollment)
	assert.True(t, got.EnableAnalytics)
	assert.Equal(t, 4, got.DefaultTeamSizeMin)
}

func TestOrganizationRepo_Deactivate(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationRepository(db, nopLog())
	ctx := context.Background()
	org := seedOrganization(t, db, "acme")

	org.Deactivate()
	require.NoError(t, repo.Update(ctx, org))

	got, err := repo.GetByID(ctx, org.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestOrganizationRepo_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrganizationRepository(db, nopLog())
	ctx := context.Background()

	seedOrganization(t, db, "acme")
	seedOrganization(t, db, "globex")

	orgs, total, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, orgs, 2)
}
