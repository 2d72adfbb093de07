package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/config"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

const (
	exitFailure       = 1
	exitConfiguration = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		// The configured logger may not exist yet.
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Error().Err(err).Msg("catalog failed")
		stop()
		os.Exit(exitCode(err))
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Product catalog REST service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "environment file loaded before reading configuration",
				Value: ".env",
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server",
				Action: serveAction,
			},
			{
				Name:   "seed",
				Usage:  "Create the products table and insert the default products into an empty catalog",
				Action: seedAction,
			},
			{
				Name:   "events",
				Usage:  "Log product events published on the RabbitMQ exchange",
				Action: eventsAction,
			},
		},
	}
}

func exitCode(err error) int {
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return exitConfiguration
	}
	return exitFailure
}
