package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"autoshop/internal/app"
	"autoshop/internal/config"
	"autoshop/internal/database"
	"autoshop/pkg/events"
	"autoshop/pkg/kafka"
	"autoshop/pkg/rabbitmq"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the shop API server which provides:
- storefront catalog, cart and checkout under /api
- admin endpoints for products, stock, orders, promotions and settings
- order notifications published to the configured broker`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

const consumerGroup = "autoshop-notifier"

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	var wg sync.WaitGroup
	publisher, closePublisher, err := startEvents(ctx, cfg.Events, logger, &wg)
	if err != nil {
		return err
	}
	defer closePublisher()

	application, svc := app.NewApp(app.Deps{
		DB:         db,
		Config:     cfg,
		Publisher:  publisher,
		Logger:     logger,
		RequestLog: true,
	})
	if err := svc.Settings.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to install default settings: %w", err)
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.App.Port).Msg("starting server")
		listenErr <- application.Listen(cfg.App.Port)
	}()

	select {
	case err := <-listenErr:
		stop()
		wg.Wait()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	if err := application.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}
	wg.Wait()
	logger.Info().Msg("server gracefully stopped")
	return nil
}

// startEvents builds the configured publisher and, when enabled, starts the
// notification consumer. Consumers stop when ctx is done and signal wg.
func startEvents(ctx context.Context, cfg config.EventsConfig, logger zerolog.Logger, wg *sync.WaitGroup) (events.Publisher, func(), error) {
	notifier := events.NewLogNotifier(logger)

	switch cfg.Broker {
	case "amqp":
		client, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.Exchange,
			Queue:    cfg.Queue,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Consume {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := client.Consume(ctx, notifier.Handle); err != nil {
					logger.Error().Err(err).Msg("rabbitmq consumer stopped")
				}
			}()
		}
		return client, closer(client.Close, logger), nil

	case "kafka":
		broker := kafka.NewBroker(cfg.KafkaBrokers, logger)
		if cfg.Consume {
			for _, topic := range []string{events.TopicOrderCreated, events.TopicOrderStatusChanged} {
				wg.Add(1)
				go func(topic string) {
					defer wg.Done()
					broker.Consume(ctx, topic, consumerGroup, notifier.Handle)
				}(topic)
			}
		}
		return broker, closer(broker.Close, logger), nil

	default:
		logger.Warn().Msg("no events broker configured; order notifications are dropped")
		return events.NopPublisher{}, func() {}, nil
	}
}

func closer(close func() error, logger zerolog.Logger) func() {
	return func() {
		if err := close(); err != nil {
			logger.Error().Err(err).Msg("failed to close events broker")
		}
	}
}
