package cmd

import (
	"autoshop/internal/app"
	"autoshop/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Migrate creates every table, then installs default site settings and email templates.`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, logger)

	if err := database.Migrate(db); err != nil {
		return err
	}
	svc := app.NewServices(app.Deps{DB: db, Config: cfg, Logger: logger})
	if err := svc.Settings.EnsureDefaults(cmd.Context()); err != nil {
		return err
	}

	logger.Info().Msg("database schema is up to date")
	return nil
}
