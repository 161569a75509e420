package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevate-edu/elevate/pkg/constants"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
jwt:
  secret: test-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "elevate_db", cfg.Database.Name)
	assert.Equal(t, "elevate_user", cfg.Database.User)
	assert.True(t, cfg.Database.Bootstrap.Enabled)
	assert.Equal(t, "elevate_db", cfg.Database.Bootstrap.GrantDatabase)
	assert.Equal(t, "elevate_user", cfg.Database.Bootstrap.GrantRole)
	assert.Equal(t, constants.AccessTokenDefaultTTL, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, constants.RefreshTokenDefaultTTL, cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, constants.DefaultFormationTimeout, cfg.TeamFormation.Timeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 300, cfg.RateLimit.RequestsPerMinute)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  mode: debug
database:
  host: db.internal
  name: custom_db
  bootstrap:
    enabled: false
    admin_user: postgres
    admin_password: supersecret
jwt:
  secret: test-secret
  access_token_ttl: 15m
  refresh_token_ttl: 24h
team_formation:
  timeout: 45s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.False(t, cfg.Database.Bootstrap.Enabled)
	assert.Equal(t, "postgres", cfg.Database.Bootstrap.AdminUser)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, 45*time.Second, cfg.TeamFormation.Timeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ELEVATE_DATABASE_HOST", "env-host")
	t.Setenv("ELEVATE_SERVER_PORT", "7070")

	path := writeConfigFile(t, `
jwt:
  secret: test-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing jwt secret", `
server:
  port: 8080
`},
		{"bad port", `
server:
  port: 70000
jwt:
  secret: test-secret
`},
		{"refresh ttl not above access ttl", `
jwt:
  secret: test-secret
  access_token_ttl: 1h
  refresh_token_ttl: 30m
`},
		{"zero formation timeout", `
jwt:
  secret: test-secret
team_formation:
  timeout: 0s
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfigFile(t, tc.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := writeConfigFile(t, `
jwt:
  secret: test-secret
log:
  level: info
`)

	updates := make(chan *Config, 1)
	require.NoError(t, Watch(path, func(cfg *Config) {
		select {
		case updates <- cfg:
		default:
		}
	}))

	require.NoError(t, os.WriteFile(path, []byte(`
jwt:
  secret: test-secret
log:
  level: debug
`), 0o644))

	select {
	case cfg := <-updates:
		assert.Equal(t, "debug", cfg.Log.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("no config reload observed")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "elevate_user",
		Password: "pw",
		Name:     "elevate_db",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=elevate_user password=pw dbname=elevate_db sslmode=disable",
		cfg.DSN())

	t.Run("admin dsn falls back to regular credentials", func(t *testing.T) {
		assert.Equal(t, cfg.DSN(), cfg.AdminDSN())
	})

	t.Run("admin dsn uses bootstrap credentials when set", func(t *testing.T) {
		withAdmin := cfg
		withAdmin.Bootstrap.AdminUser = "postgres"
		withAdmin.Bootstrap.AdminPassword = "root-pw"
		assert.Contains(t, withAdmin.AdminDSN(), "user=postgres")
		assert.Contains(t, withAdmin.AdminDSN(), "password=root-pw")
	})
}
