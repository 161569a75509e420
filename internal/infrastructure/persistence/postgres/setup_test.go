package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// newTestDB opens an in-memory database with the full schema. The repository
// queries stay in portable SQL so the suite runs without a server.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func seedOrganization(t *testing.T, db *gorm.DB, slug string) *models.Organization {
	t.Helper()
	org, err := models.NewOrganization(strings.ToUpper(slug), slug, slug+".example.edu")
	require.NoError(t, err)
	require.NoError(t, db.Create(org).Error)
	return org
}

func seedUser(t *testing.T, db *gorm.DB, orgID, email string, role constants.UserRole) *models.User {
	t.Helper()
	user, err := models.NewUser(orgID, email, "hashed-password", "Test", "User", role)
	require.NoError(t, err)
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, orgID, code, createdBy string) *models.Course {
	t.Helper()
	course, err := models.NewCourse(orgID, code, "Course "+code, "", createdBy)
	require.NoError(t, err)
	require.NoError(t, db.Create(course).Error)
	return course
}

func nopLog() logger.Logger {
	return logger.NewNop()
}
