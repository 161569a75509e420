package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/elevate-edu/elevate/pkg/constants"
)

// Load reads configuration from the given file (optional) and the
// environment. Environment variables use the ELEVATE_ prefix with underscores
// for nesting, e.g. ELEVATE_DATABASE_HOST.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ELEVATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/elevate")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine: environment variables and defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Watch re-reads the config file on change and invokes onChange with the new
// configuration. Invalid updates are dropped.
func Watch(configPath string, onChange func(*Config)) error {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ELEVATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return
		}
		if err := cfg.Validate(); err != nil {
			return
		}
		onChange(&cfg)
	})
	v.WatchConfig()
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.base_domain", "elevate.local")
	v.SetDefault("server.cors_origins", []string{"*"})

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "elevate_user")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "elevate_db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.bootstrap.enabled", true)
	v.SetDefault("database.bootstrap.grant_database", "elevate_db")
	v.SetDefault("database.bootstrap.grant_role", "elevate_user")

	// Redis
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	// JWT
	v.SetDefault("jwt.access_token_ttl", constants.AccessTokenDefaultTTL)
	v.SetDefault("jwt.refresh_token_ttl", constants.RefreshTokenDefaultTTL)
	v.SetDefault("jwt.issuer", "elevate")

	// Kafka
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "elevate.events")

	// Vault
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.secret_path", "secret/data/elevate/jwt")
	v.SetDefault("vault.secret_key", "signing_key")

	// Rate limiting
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 300)

	// Team formation
	v.SetDefault("team_formation.timeout", constants.DefaultFormationTimeout)
	v.SetDefault("team_formation.workers", 4)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Tracing
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "elevate-api")
	v.SetDefault("tracing.endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.sample_ratio", 0.1)
}
