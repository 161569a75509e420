package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevate-edu/elevate/pkg/errors"
)

func TestTeam_AddMember(t *testing.T) {
	team := NewTeam("org-1", "p-1", "Team 1", TeamOriginSelfFormed)

	require.NoError(t, team.AddMember("u-1", 2))
	require.NoError(t, team.AddMember("u-2", 2))
	assert.Equal(t, []string{"u-1", "u-2"}, team.MemberIDs())

	t.Run("rejects duplicate member", func(t *testing.T) {
		err := team.AddMember("u-1", 4)
		assert.True(t, errors.IsConflict(err))
	})

	t.Run("enforces size ceiling", func(t *testing.T) {
		err := team.AddMember("u-3", 2)
		assert.True(t, errors.IsConflict(err))
	})

	t.Run("zero ceiling means unlimited", func(t *testing.T) {
		assert.NoError(t, team.AddMember("u-3", 0))
	})
}

func TestTeam_RemoveMember(t *testing.T) {
	team := NewTeam("org-1", "p-1", "Team 1", TeamOriginSelfFormed)
	require.NoError(t, team.AddMember("u-1", 0))
	require.NoError(t, team.AddMember("u-2", 0))

	require.NoError(t, team.RemoveMember("u-1"))
	assert.Equal(t, []string{"u-2"}, team.MemberIDs())

	err := team.RemoveMember("u-1")
	assert.True(t, errors.IsNotFound(err))
}

func TestTeam_Lock(t *testing.T) {
	team := NewTeam("org-1", "p-1", "Team 1", TeamOriginInstructor)
	require.NoError(t, team.AddMember("u-1", 0))

	team.Lock()
	assert.True(t, team.IsLocked)

	assert.Error(t, team.AddMember("u-2", 0))
	assert.Error(t, team.RemoveMember("u-1"))
}
