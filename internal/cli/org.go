package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elevate-edu/elevate/internal/application/dto"
	appservice "github.com/elevate-edu/elevate/internal/application/service"
	"github.com/elevate-edu/elevate/internal/infrastructure/crypto"
	"github.com/elevate-edu/elevate/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/elevate-edu/elevate/internal/infrastructure/persistence/redis"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/logger"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Tenant operations",
}

var (
	orgName          string
	orgSlug          string
	orgDomain        string
	orgAdminEmail    string
	orgAdminPassword string
)

var orgCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a tenant with its first admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := orgService(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		org, err := svc.Create(cmd.Context(), &dto.CreateOrganizationRequest{
			Name:          orgName,
			Slug:          orgSlug,
			Domain:        orgDomain,
			AdminEmail:    orgAdminEmail,
			AdminPassword: orgAdminPassword,
		})
		if err != nil {
			return err
		}
		fmt.Printf("organization created: %s (%s)\n", org.ID, org.Slug)
		return nil
	},
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List provisioned tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := orgService(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		orgs, total, err := svc.List(cmd.Context(), 1, 100)
		if err != nil {
			return err
		}
		for _, org := range orgs {
			state := "active"
			if !org.IsActive {
				state = "suspended"
			}
			fmt.Printf("%s  %-24s %-12s %s\n", org.ID, org.Slug, state, org.Name)
		}
		fmt.Printf("%d organizations\n", total)
		return nil
	},
}

var orgDeactivateCmd = &cobra.Command{
	Use:   "deactivate <org-id>",
	Short: "Suspend a tenant; all of its requests are rejected",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := orgService(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := svc.Deactivate(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("organization suspended: %s\n", args[0])
		return nil
	},
}

// orgService wires the organization service for a CLI invocation. The
// returned cleanup closes the database and Redis connections.
func orgService(cmd *cobra.Command) (appservice.OrganizationAppService, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewDefaultLogger(constants.LogLevelWarn)
	ctx := cmd.Context()

	db, err := postgres.NewConnection(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	redisClient, err := redisinfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		_ = postgres.Close(db)
		return nil, nil, err
	}
	cleanup := func() {
		_ = redisClient.Close()
		_ = postgres.Close(db)
	}

	svc := appservice.NewOrganizationAppService(
		postgres.NewOrganizationRepository(db, log),
		postgres.NewUserRepository(db, log),
		crypto.NewBcryptHasher(0),
		redisinfra.NewCacheManager(redisClient, log),
		log,
	)
	return svc, cleanup, nil
}

func init() {
	orgCreateCmd.Flags().StringVar(&orgName, "name", "", "organization name")
	orgCreateCmd.Flags().StringVar(&orgSlug, "slug", "", "organization slug")
	orgCreateCmd.Flags().StringVar(&orgDomain, "domain", "", "custom domain (optional)")
	orgCreateCmd.Flags().StringVar(&orgAdminEmail, "admin-email", "", "first admin email")
	orgCreateCmd.Flags().StringVar(&orgAdminPassword, "admin-password", "", "first admin password")
	_ = orgCreateCmd.MarkFlagRequired("name")
	_ = orgCreateCmd.MarkFlagRequired("slug")
	_ = orgCreateCmd.MarkFlagRequired("admin-email")
	_ = orgCreateCmd.MarkFlagRequired("admin-password")

	orgCmd.AddCommand(orgCreateCmd)
	orgCmd.AddCommand(orgListCmd)
	orgCmd.AddCommand(orgDeactivateCmd)
}
