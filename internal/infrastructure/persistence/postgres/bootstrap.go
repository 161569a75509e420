package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/elevate-edu/elevate/internal/config"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// requiredExtensions are created during bootstrap. uuid-ossp backs
// uuid_generate_v4() defaults and pgcrypto backs digest/crypt helpers.
var requiredExtensions = []string{"uuid-ossp", "pgcrypto"}

// Bootstrapper prepares a PostgreSQL database for the application: it creates
// the required extensions and grants the application role full privileges on
// the database. Every step is idempotent, so running bootstrap repeatedly is
// safe. The database and the granted role must already exist; creating them
// is a provisioning concern outside this component.
type Bootstrapper struct {
	cfg config.DatabaseConfig
	log logger.Logger
}

// NewBootstrapper creates a Bootstrapper. The connection uses the bootstrap
// admin credentials when configured, because CREATE EXTENSION requires
// superuser rights on most installations.
func NewBootstrapper(cfg config.DatabaseConfig, log logger.Logger) *Bootstrapper {
	return &Bootstrapper{cfg: cfg, log: log.WithComponent("db_bootstrap")}
}

// BootstrapResult reports what a bootstrap run executed.
type BootstrapResult struct {
	ExtensionsCreated []string
	GrantedDatabase   string
	GrantedRole       string
}

// Run connects, applies the bootstrap statements in order and disconnects.
// The first failing statement aborts the run; there are no retries.
func (b *Bootstrapper) Run(ctx context.Context) (*BootstrapResult, error) {
	conn, err := pgx.Connect(ctx, b.cfg.AdminDSN())
	if err != nil {
		return nil, fmt.Errorf("connect for bootstrap: %w", err)
	}
	defer conn.Close(ctx)

	result := &BootstrapResult{}

	for _, ext := range requiredExtensions {
		// Extension names are not parameterizable; both values here are
		// compile-time constants.
		stmt := fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS %s`, pgx.Identifier{ext}.Sanitize())
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create extension %s: %w", ext, err)
		}
		result.ExtensionsCreated = append(result.ExtensionsCreated, ext)
		b.log.Info(ctx, "extension ensured", logger.String("extension", ext))
	}

	database := b.cfg.Bootstrap.GrantDatabase
	if database == "" {
		database = b.cfg.Name
	}
	role := b.cfg.Bootstrap.GrantRole
	if role == "" {
		role = b.cfg.User
	}

	grant := fmt.Sprintf(`GRANT ALL PRIVILEGES ON DATABASE %s TO %s`,
		pgx.Identifier{database}.Sanitize(), pgx.Identifier{role}.Sanitize())
	if _, err := conn.Exec(ctx, grant); err != nil {
		return nil, fmt.Errorf("grant privileges on %s to %s: %w", database, role, err)
	}
	result.GrantedDatabase = database
	result.GrantedRole = role
	b.log.Info(ctx, "database privileges granted",
		logger.String("database", database),
		logger.String("role", role),
	)

	return result, nil
}

// Verify checks that every required extension is installed and the role holds
// CREATE privilege on the database. It never modifies anything.
func (b *Bootstrapper) Verify(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, b.cfg.AdminDSN())
	if err != nil {
		return fmt.Errorf("connect for verification: %w", err)
	}
	defer conn.Close(ctx)

	for _, ext := range requiredExtensions {
		var installed bool
		err := conn.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = $1)`, ext).Scan(&installed)
		if err != nil {
			return fmt.Errorf("check extension %s: %w", ext, err)
		}
		if !installed {
			return fmt.Errorf("extension %s is not installed", ext)
		}
	}

	database := b.cfg.Bootstrap.GrantDatabase
	if database == "" {
		database = b.cfg.Name
	}
	role := b.cfg.Bootstrap.GrantRole
	if role == "" {
		role = b.cfg.User
	}

	var privileged bool
	err = conn.QueryRow(ctx,
		`SELECT has_database_privilege($1, $2, 'CREATE')`, role, database).Scan(&privileged)
	if err != nil {
		return fmt.Errorf("check privileges for role %s: %w", role, err)
	}
	if !privileged {
		return fmt.Errorf("role %s lacks privileges on database %s", role, database)
	}
	return nil
}
