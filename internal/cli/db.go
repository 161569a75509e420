package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elevate-edu/elevate/internal/infrastructure/persistence/postgres"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/logger"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database operations",
}

var dbBootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create required extensions and grant privileges",
	Long: `Bootstrap prepares the configured PostgreSQL database: it creates the
uuid-ossp and pgcrypto extensions and grants the application role all
privileges on the database. The run is idempotent; repeating it is safe.
The database and role must already exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.NewDefaultLogger(constants.LogLevelInfo)

		result, err := postgres.NewBootstrapper(cfg.Database, log).Run(cmd.Context())
		if err != nil {
			return err
		}
		for _, ext := range result.ExtensionsCreated {
			fmt.Printf("extension ensured: %s\n", ext)
		}
		fmt.Printf("granted all privileges on %s to %s\n", result.GrantedDatabase, result.GrantedRole)
		return nil
	},
}

var dbVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify bootstrap state without modifying anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.NewDefaultLogger(constants.LogLevelWarn)

		if err := postgres.NewBootstrapper(cfg.Database, log).Verify(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("bootstrap state verified")
		return nil
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the application schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.NewDefaultLogger(constants.LogLevelInfo)

		db, err := postgres.NewConnection(cmd.Context(), cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() { _ = postgres.Close(db) }()

		if err := postgres.AutoMigrate(db); err != nil {
			return err
		}
		fmt.Println("schema migrated")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbBootstrapCmd)
	dbCmd.AddCommand(dbVerifyCmd)
	dbCmd.AddCommand(dbMigrateCmd)
}
