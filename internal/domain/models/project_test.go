package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	start := time.Now()
	due := start.Add(30 * 24 * time.Hour)
	deadline := start.Add(7 * 24 * time.Hour)

	p, err := NewProject("org-1", "c-1", "Capstone", "build something", "u-1",
		start, due, &deadline, 3, 5)
	require.NoError(t, err)
	assert.False(t, p.IsPublished)
	assert.Equal(t, 3, p.TeamSizeMin)
	assert.Equal(t, 5, p.TeamSizeMax)
}

func TestProject_Validate(t *testing.T) {
	start := time.Now()
	due := start.Add(30 * 24 * time.Hour)
	afterDue := due.Add(time.Hour)

	cases := []struct {
		name     string
		start    time.Time
		due      time.Time
		deadline *time.Time
		min, max int
		wantErr  bool
	}{
		{"valid", start, due, nil, 2, 4, false},
		{"start equals due", due, due, nil, 2, 4, true},
		{"start after due", due, start, nil, 2, 4, true},
		{"deadline after due", start, due, &afterDue, 2, 4, true},
		{"deadline equals due", start, due, &due, 2, 4, false},
		{"min below two", start, due, nil, 1, 4, true},
		{"max below min", start, due, nil, 4, 3, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProject("org-1", "c-1", "Capstone", "", "u-1",
				tc.start, tc.due, tc.deadline, tc.min, tc.max)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewProject_RequiresTitle(t *testing.T) {
	start := time.Now()
	_, err := NewProject("org-1", "c-1", "   ", "", "u-1",
		start, start.Add(time.Hour), nil, 2, 4)
	assert.Error(t, err)
}

func TestProject_FormationOpen(t *testing.T) {
	start := time.Now()
	due := start.Add(30 * 24 * time.Hour)
	deadline := start.Add(7 * 24 * time.Hour)

	p, err := NewProject("org-1", "c-1", "Capstone", "", "u-1",
		start, due, &deadline, 2, 4)
	require.NoError(t, err)

	assert.True(t, p.FormationOpen(start.Add(24*time.Hour)))
	assert.False(t, p.FormationOpen(deadline.Add(time.Minute)))

	p.FormationDeadline = nil
	assert.True(t, p.FormationOpen(due.Add(-time.Minute)))
	assert.False(t, p.FormationOpen(due))
}
