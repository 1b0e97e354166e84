package cmd

import (
	"errors"
	"fmt"

	"autoshop/internal/app"
	"autoshop/internal/models"
	"autoshop/internal/services"

	"github.com/spf13/cobra"
)

var adminInput services.RegisterInput

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a staff account or promote an existing user",
	Long: `Create-admin registers a user with admin rights. If the username already
exists the account is promoted instead.`,
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminInput.Username, "username", "admin", "username")
	createAdminCmd.Flags().StringVar(&adminInput.Email, "email", "admin@example.com", "email address")
	createAdminCmd.Flags().StringVar(&adminInput.Password, "password", "", "password, at least 8 characters")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, logger)

	ctx := cmd.Context()
	svc := app.NewServices(app.Deps{DB: db, Config: cfg, Logger: logger})

	user, err := svc.Auth.GetByUsername(ctx, adminInput.Username)
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		adminInput.RePassword = adminInput.Password
		user, err = svc.Auth.RegisterUser(ctx, adminInput)
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
	case err != nil:
		return err
	}

	if err := svc.Auth.Promote(ctx, user.ID); err != nil {
		return err
	}
	logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("admin account ready")
	return nil
}
