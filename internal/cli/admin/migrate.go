package admin

import (
	"fmt"

	"github.com/cloo-solutions/partsdesk/internal/database"
	"github.com/spf13/cobra"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply pending migrations for the postgres index backend",
		RunE:  runMigrate,
	}

	cmd.Flags().String("source", database.DefaultMigrationsSource, "Migration source URL")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required to run migrations")
	}

	source, _ := cmd.Flags().GetString("source")
	return database.Migrate(cfg.DatabaseURL, source)
}
