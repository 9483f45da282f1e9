package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/internal/config"
	pgInfra "github.com/fastygo/tracker/internal/infrastructure/postgres"
	"github.com/fastygo/tracker/repository/sqlite"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply every pending migration. With --down, PostgreSQL migrations are rolled back instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			switch cfg.Database.Driver {
			case "postgres":
				if err := pgInfra.Migrate(cfg, !down, logger); err != nil {
					return err
				}
			case "sqlite":
				if down {
					return fmt.Errorf("--down is not supported for sqlite; remove %s instead", cfg.Database.SQLitePath)
				}
				db, err := sqlite.Open(cfg.Database.SQLitePath, logger)
				if err != nil {
					return err
				}
				db.Close()
			default:
				return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations")
	return cmd
}
