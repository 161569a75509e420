package postgres

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

type teamRepo struct {
	db  *gorm.DB
	log logger.Logger
}

// NewTeamRepository creates the PostgreSQL-backed team repository.
func NewTeamRepository(db *gorm.DB, log logger.Logger) repository.TeamRepository {
	return &teamRepo{db: db, log: log.WithComponent("team_repo")}
}

func (r *teamRepo) Create(ctx context.Context, team *models.Team) error {
	if err := r.db.WithContext(ctx).Create(team).Error; err != nil {
		return errors.ErrDatabase(err)
	}
	return nil
}

func (r *teamRepo) GetByID(ctx context.Context, orgID, id string) (*models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).Preload("Members").
		First(&team, "organization_id = ? AND id = ?", orgID, id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrTeamNotFound(id)
		}
		return nil, errors.ErrDatabase(err)
	}
	return &team, nil
}

// Update persists the team row and fully replaces its membership. Member
// changes go through the domain model, so the roster is written as a whole.
func (r *teamRepo) Update(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("organization_id = ?", team.OrganizationID).
			Model(team).
			Select("name", "is_locked", "score", "updated_at").
			Updates(team)
		if result.Error != nil {
			return errors.ErrDatabase(result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.ErrTeamNotFound(team.ID)
		}
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return errors.ErrDatabase(err)
		}
		if len(team.Members) > 0 {
			if err := tx.Create(&team.Members).Error; err != nil {
				return errors.ErrDatabase(err)
			}
		}
		return nil
	})
}

func (r *teamRepo) Delete(ctx context.Context, orgID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return errors.ErrDatabase(err)
		}
		result := tx.Where("organization_id = ? AND id = ?", orgID, id).Delete(&models.Team{})
		if result.Error != nil {
			return errors.ErrDatabase(result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.ErrTeamNotFound(id)
		}
		return nil
	})
}

func (r *teamRepo) ListByProject(ctx context.Context, orgID, projectID string) ([]*models.Team, error) {
	var teams []*models.Team
	err := r.db.WithContext(ctx).Preload("Members").
		Where("organization_id = ? AND project_id = ?", orgID, projectID).
		Order("name ASC").
		Find(&teams).Error
	if err != nil {
		return nil, errors.ErrDatabase(err)
	}
	return teams, nil
}

func (r *teamRepo) GetByProjectAndMember(ctx context.Context, orgID, projectID, userID string) (*models.Team, error) {
	var member models.TeamMember
	err := r.db.WithContext(ctx).
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("team_members.organization_id = ? AND teams.project_id = ? AND team_members.user_id = ?",
			orgID, projectID, userID).
		First(&member).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrTeamNotFound(userID)
		}
		return nil, errors.ErrDatabase(err)
	}
	return r.GetByID(ctx, orgID, member.TeamID)
}

// CreateBatch writes a formation result in one transaction so a failed run
// never leaves a partial assignment behind.
func (r *teamRepo) CreateBatch(ctx context.Context, teams []*models.Team) error {
	if len(teams) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, team := range teams {
			if err := tx.Create(team).Error; err != nil {
				return errors.ErrDatabase(err)
			}
		}
		return nil
	})
}
