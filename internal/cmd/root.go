package cmd

import (
	"fmt"
	"os"

	"autoshop/internal/config"
	"autoshop/internal/database"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "autoshop",
	Short: "Autoshop - online store for car care products",
	Long: `Autoshop serves the storefront and admin REST API of a car care shop:
catalog, carts, orders with promo codes and campaigns, stock movements
and order notifications over RabbitMQ or Kafka.

Configuration is read from config.yaml (or --config) and SHOP_* environment variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the config file (default ./config.yaml)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and connects to the database.
func bootstrap() (*config.Config, zerolog.Logger, *gorm.DB, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, zerolog.Nop(), nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := config.NewLogger(cfg.Log)

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, logger, nil, err
	}
	return cfg, logger, db, nil
}

func closeDB(db *gorm.DB, logger zerolog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close database")
	}
}
