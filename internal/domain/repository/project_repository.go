package repository

import (
	"context"

	"github.com/elevate-edu/elevate/internal/domain/models"
)

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, orgID, id string) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	ListByCourse(ctx context.Context, orgID, courseID string, publishedOnly bool, offset, limit int) ([]*models.Project, int64, error)
}

// QuestionnaireRepository persists questionnaire responses.
type QuestionnaireRepository interface {
	Upsert(ctx context.Context, response *models.QuestionnaireResponse) error
	GetByProjectAndUser(ctx context.Context, orgID, projectID, userID string) (*models.QuestionnaireResponse, error)
	ListByProject(ctx context.Context, orgID, projectID string) ([]*models.QuestionnaireResponse, error)
}

// TeamRepository persists teams and their memberships.
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, orgID, id string) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, orgID, id string) error
	ListByProject(ctx context.Context, orgID, projectID string) ([]*models.Team, error)
	GetByProjectAndMember(ctx context.Context, orgID, projectID, userID string) (*models.Team, error)

	// CreateBatch persists a full formation result atomically.
	CreateBatch(ctx context.Context, teams []*models.Team) error
}
