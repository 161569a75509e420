// Package cli implements the elevate-admin command line tool.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/elevate-edu/elevate/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "elevate-admin",
	Short: "Administrative tool for the Elevate platform",
	Long: `elevate-admin performs operational tasks against an Elevate deployment:
database bootstrap and verification, schema migration and tenant provisioning.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(orgCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
