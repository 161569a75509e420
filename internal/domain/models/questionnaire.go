package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
)

// BelbinScores maps each Belbin role to a 0-100 score.
type BelbinScores map[constants.BelbinRole]int

// SkillRatings maps a free-form skill name to a 1-5 self rating.
type SkillRatings map[string]int

// QuestionnaireResponse captures a student's formation inputs for a project:
// Belbin role scores, skill self-ratings, weekly availability and preferred
// teammates. One response per student per project.
type QuestionnaireResponse struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string `gorm:"type:uuid;not null;index" json:"organization_id"`
	ProjectID      string `gorm:"type:uuid;not null;uniqueIndex:idx_questionnaire_project_user" json:"project_id"`
	UserID         string `gorm:"type:uuid;not null;uniqueIndex:idx_questionnaire_project_user" json:"user_id"`

	BelbinScores BelbinScores `gorm:"serializer:json;type:text" json:"belbin_scores"`
	Skills       SkillRatings `gorm:"serializer:json;type:text" json:"skills"`

	// Availability is a 168-character bitmask, one character per hour of the
	// week starting Monday 00:00, '1' meaning available.
	Availability string `gorm:"type:varchar(168)" json:"availability"`

	// PreferredTeammates holds user ids the student would like to work with.
	PreferredTeammates []string `gorm:"serializer:json;type:text" json:"preferred_teammates,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the database table name
func (QuestionnaireResponse) TableName() string {
	return "questionnaire_responses"
}

// NewQuestionnaireResponse creates a validated response.
func NewQuestionnaireResponse(orgID, projectID, userID string,
	scores BelbinScores, skills SkillRatings, availability string, preferred []string) (*QuestionnaireResponse, error) {

	r := &QuestionnaireResponse{
		ID:                 uuid.New().String(),
		OrganizationID:     orgID,
		ProjectID:          projectID,
		UserID:             userID,
		BelbinScores:       scores,
		Skills:             skills,
		Availability:       availability,
		PreferredTeammates: preferred,
		SubmittedAt:        time.Now(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks score ranges, the availability bitmask and skill ratings.
func (r *QuestionnaireResponse) Validate() error {
	if len(r.BelbinScores) != len(constants.AllBelbinRoles) {
		return errors.ErrInvalidRequest("all nine Belbin role scores are required")
	}
	for _, role := range constants.AllBelbinRoles {
		score, ok := r.BelbinScores[role]
		if !ok {
			return errors.ErrInvalidRequest("missing Belbin score for role %s", role)
		}
		if score < constants.BelbinScoreMin || score > constants.BelbinScoreMax {
			return errors.ErrInvalidRequest("Belbin score for %s must be between %d and %d",
				role, constants.BelbinScoreMin, constants.BelbinScoreMax)
		}
	}
	for skill, rating := range r.Skills {
		if strings.TrimSpace(skill) == "" {
			return errors.ErrInvalidRequest("skill name must not be empty")
		}
		if rating < constants.SkillRatingMin || rating > constants.SkillRatingMax {
			return errors.ErrInvalidRequest("skill rating for %s must be between %d and %d",
				skill, constants.SkillRatingMin, constants.SkillRatingMax)
		}
	}
	if len(r.Availability) != constants.HoursPerWeek {
		return errors.ErrInvalidRequest("availability must cover %d hours", constants.HoursPerWeek)
	}
	for i := 0; i < len(r.Availability); i++ {
		if c := r.Availability[i]; c != '0' && c != '1' {
			return errors.ErrInvalidRequest("availability bitmask may contain only '0' and '1'")
		}
	}
	return nil
}

// DominantRole returns the Belbin role with the highest score. Ties resolve
// to the role earliest in the canonical ordering.
func (r *QuestionnaireResponse) DominantRole() constants.BelbinRole {
	best := constants.AllBelbinRoles[0]
	bestScore := -1
	for _, role := range constants.AllBelbinRoles {
		if s := r.BelbinScores[role]; s > bestScore {
			best, bestScore = role, s
		}
	}
	return best
}

// AvailableHours returns the number of available hours in the week.
func (r *QuestionnaireResponse) AvailableHours() int {
	return strings.Count(r.Availability, "1")
}

// OverlapHours returns the number of hours both responses mark available.
func (r *QuestionnaireResponse) OverlapHours(other *QuestionnaireResponse) int {
	n := len(r.Availability)
	if len(other.Availability) < n {
		n = len(other.Availability)
	}
	count := 0
	for i := 0; i < n; i++ {
		if r.Availability[i] == '1' && other.Availability[i] == '1' {
			count++
		}
	}
	return count
}

// Prefers reports whether the response lists userID as a preferred teammate.
func (r *QuestionnaireResponse) Prefers(userID string) bool {
	for _, id := range r.PreferredTeammates {
		if id == userID {
			return true
		}
	}
	return false
}
