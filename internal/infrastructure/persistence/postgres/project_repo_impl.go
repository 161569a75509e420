package postgres

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

type projectRepo struct {
	db  *gorm.DB
	log logger.Logger
}

// NewProjectRepository creates the PostgreSQL-backed project repository.
func NewProjectRepository(db *gorm.DB, log logger.Logger) repository.ProjectRepository {
	return &projectRepo{db: db, log: log.WithComponent("project_repo")}
}

func (r *projectRepo) Create(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return errors.ErrDatabase(err)
	}
	return nil
}

func (r *projectRepo) GetByID(ctx context.Context, orgID, id string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		First(&project, "organization_id = ? AND id = ?", orgID, id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProjectNotFound(id)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &project, nil
}

func (r *projectRepo) Update(ctx context.Context, project *models.Project) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ?", project.OrganizationID).
		Model(project).
		Select("title", "description", "start_date", "due_date", "formation_deadline",
			"team_size_min", "team_size_max", "is_published", "updated_at").
		Updates(project)
	if result.Error != nil {
		return errors.ErrDatabase(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrProjectNotFound(project.ID)
	}
	return nil
}

func (r *projectRepo) ListByCourse(ctx context.Context, orgID, courseID string, publishedOnly bool, offset, limit int) ([]*models.Project, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("organization_id = ? AND course_id = ?", orgID, courseID)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}

	var projects []*models.Project
	if err := q.Order("due_date ASC").Offset(offset).Limit(limit).Find(&projects).Error; err != nil {
		return nil, 0, errors.ErrDatabase(err)
	}
	return projects, total, nil
}

type questionnaireRepo struct {
	db  *gorm.DB
	log logger.Logger
}

// NewQuestionnaireRepository creates the PostgreSQL-backed questionnaire
// repository.
func NewQuestionnaireRepository(db *gorm.DB, log logger.Logger) repository.QuestionnaireRepository {
	return &questionnaireRepo{db: db, log: log.WithComponent("questionnaire_repo")}
}

// Upsert inserts a response or replaces the existing one for the same
// project and user, so resubmission before the deadline overwrites.
func (r *questionnaireRepo) Upsert(ctx context.Context, response *models.QuestionnaireResponse) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"belbin_scores", "skills", "availability", "preferred_teammates", "submitted_at", "updated_at",
		}),
	}).Create(response).Error
	if err != nil {
		return errors.ErrDatabase(err)
	}
	return nil
}

func (r *questionnaireRepo) GetByProjectAndUser(ctx context.Context, orgID, projectID, userID string) (*models.QuestionnaireResponse, error) {
	var response models.QuestionnaireResponse
	err := r.db.WithContext(ctx).
		First(&response, "organization_id = ? AND project_id = ? AND user_id = ?", orgID, projectID, userID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrQuestionnaireNotFound(userID)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &response, nil
}

func (r *questionnaireRepo) ListByProject(ctx context.Context, orgID, projectID string) ([]*models.QuestionnaireResponse, error) {
	var responses []*models.QuestionnaireResponse
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND project_id = ?", orgID, projectID).
		Order("submitted_at ASC").
		Find(&responses).Error
	if err != nil {
		return nil, errors.ErrDatabase(err)
	}
	return responses, nil
}
