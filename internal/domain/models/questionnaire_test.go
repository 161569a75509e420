package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevate-edu/elevate/pkg/constants"
)

func fullScores(base int) BelbinScores {
	scores := make(BelbinScores, len(constants.AllBelbinRoles))
	for _, role := range constants.AllBelbinRoles {
		scores[role] = base
	}
	return scores
}

func allWeekAvailability() string {
	return strings.Repeat("1", constants.HoursPerWeek)
}

func TestNewQuestionnaireResponse(t *testing.T) {
	r, err := NewQuestionnaireResponse("org-1", "p-1", "u-1",
		fullScores(50), SkillRatings{"go": 4}, allWeekAvailability(), []string{"u-2"})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, constants.HoursPerWeek, r.AvailableHours())
	assert.True(t, r.Prefers("u-2"))
	assert.False(t, r.Prefers("u-3"))
}

func TestQuestionnaireResponse_Validate(t *testing.T) {
	t.Run("missing role score", func(t *testing.T) {
		scores := fullScores(50)
		delete(scores, constants.BelbinShaper)
		_, err := NewQuestionnaireResponse("org-1", "p-1", "u-1",
			scores, nil, allWeekAvailability(), nil)
		assert.Error(t, err)
	})

	t.Run("score out of range", func(t *testing.T) {
		scores := fullScores(50)
		scores[constants.BelbinPlant] = 101
		_, err := NewQuestionnaireResponse("org-1", "p-1", "u-1",
			scores, nil, allWeekAvailability(), nil)
		assert.Error(t, err)
	})

	t.Run("skill rating out of range", func(t *testing.T) {
		_, err := NewQuestionnaireResponse("org-1", "p-1", "u-1",
			fullScores(50), SkillRatings{"go": 6}, allWeekAvailability(), nil)
		assert.Error(t, err)
	})

	t.Run("availability wrong length", func(t *testing.T) {
		_, err := NewQuestionnaireResponse("org-1", "p-1", "u-1",
			fullScores(50), nil, "101", nil)
		assert.Error(t, err)
	})

	t.Run("availability bad characters", func(t *testing.T) {
		avail := strings.Repeat("1", constants.HoursPerWeek-1) + "x"
		_, err := NewQuestionnaireResponse("org-1", "p-1", "u-1",
			fullScores(50), nil, avail, nil)
		assert.Error(t, err)
	})
}

func TestQuestionnaireResponse_DominantRole(t *testing.T) {
	scores := fullScores(10)
	scores[constants.BelbinCoordinator] = 90
	r, err := NewQuestionnaireResponse("org-1", "p-1", "u-1",
		scores, nil, allWeekAvailability(), nil)
	require.NoError(t, err)
	assert.Equal(t, constants.BelbinCoordinator, r.DominantRole())
}

func TestQuestionnaireResponse_OverlapHours(t *testing.T) {
	a := strings.Repeat("1", 10) + strings.Repeat("0", constants.HoursPerWeek-10)
	b := strings.Repeat("0", 5) + strings.Repeat("1", constants.HoursPerWeek-5)

	ra, err := NewQuestionnaireResponse("org-1", "p-1", "u-1", fullScores(50), nil, a, nil)
	require.NoError(t, err)
	rb, err := NewQuestionnaireResponse("org-1", "p-1", "u-2", fullScores(50), nil, b, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, ra.OverlapHours(rb))
	assert.Equal(t, 5, rb.OverlapHours(ra))
}
