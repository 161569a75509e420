package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		key    string
		value  interface{}
		masked bool
	}{
		{"password", "hunter22", true},
		{"password_hash", "bcrypt...", true},
		{"access_token", "eyJ...", true},
		{"refresh_token", "eyJ...", true},
		{"secret", "abc", true},
		{"Authorization", "Bearer x", true},
		{"email", "ada@example.edu", false},
		{"user_id", "u-1", false},
	}
	for _, tc := range cases {
		got := Sanitize(tc.key, tc.value)
		if tc.masked {
			assert.Equal(t, "***", got, "key %s", tc.key)
		} else {
			assert.Equal(t, tc.value, got, "key %s", tc.key)
		}
	}
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "s", Value: "v"}, String("s", "v"))
	assert.Equal(t, Field{Key: "n", Value: 7}, Int("n", 7))
	assert.Equal(t, Field{Key: "d", Value: time.Second}, Duration("d", time.Second))

	err := assert.AnError
	assert.Equal(t, Field{Key: "error", Value: err.Error()}, ErrorField(err))
}

func TestNopLoggerIsSafe(t *testing.T) {
	log := NewNop().WithComponent("test")
	log.Info(nil, "message", String("k", "v")) //nolint:staticcheck
	log.Error(nil, "message", assert.AnError)  //nolint:staticcheck
}
