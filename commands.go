package main

import (
	"context"
	"fmt"
	"time"

	"catalog/internal/app"
	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/models"
	"catalog/pkg/rabbitmq"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// setup loads configuration using the --env-file flag and builds the logger.
func setup(cmd *cli.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cmd.String("env-file"))
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, config.NewLogger(cfg.Logger), nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- a.Listen()
	}()

	// Wait for interrupt signal to gracefully shut down the server
	select {
	case err := <-listenErr:
		if closeErr := a.Shutdown(context.Background()); closeErr != nil {
			logger.Error().Err(closeErr).Msg("error while releasing resources")
		}
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server gracefully stopped")
	return nil
}

func seedAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	gateway, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer gateway.Close()

	result, err := database.Seed(ctx, gateway, database.DefaultProducts(), logger)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	w := cmd.Root().Writer
	if result.Skipped {
		fmt.Fprintf(w, "catalog already holds %d products, nothing seeded\n", result.Existing)
		return nil
	}
	fmt.Fprintf(w, "seeded %d products\n", result.Inserted)
	return nil
}

func eventsAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if cfg.RabbitMQ.URL == "" {
		return &config.ConfigurationError{Key: "RABBITMQ_URL", Reason: "is required to consume events"}
	}

	client, err := rabbitmq.NewClient(rabbitmq.Config{
		URL:      cfg.RabbitMQ.URL,
		Exchange: cfg.RabbitMQ.Exchange,
	}, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	return client.ConsumeProductEvents(ctx, logEvent(logger))
}

// logEvent writes one log line per received product event.
func logEvent(logger zerolog.Logger) func(models.ProductEvent) error {
	return func(event models.ProductEvent) error {
		logger.Info().
			Str("event_id", event.EventID).
			Str("event_type", event.Type).
			Int("product_id", event.ProductID).
			Time("occurred_at", event.OccurredAt).
			Msg("product event received")
		return nil
	}
}
