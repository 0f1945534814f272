package cmd

import (
	"fmt"
	"os"

	"github.com/omarwdev/feedhub/internal/config"
	"github.com/omarwdev/feedhub/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := database.MigrateUp(cfg); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		fmt.Fprintln(os.Stdout, "migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := database.MigrateDown(cfg); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		fmt.Fprintln(os.Stdout, "migration rolled back")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}
