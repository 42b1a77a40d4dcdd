package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	cli "github.com/urfave/cli/v3"

	"github.com/apexcrm/flowkit/pkg/channels/gochannel"
	"github.com/apexcrm/flowkit/pkg/channels/kafka"
	"github.com/apexcrm/flowkit/pkg/eventbus"
	"github.com/apexcrm/flowkit/pkg/log"
	"github.com/apexcrm/flowkit/pkg/persistence/file"
	"github.com/apexcrm/flowkit/pkg/registry"
)

const defaultPort = 9081

func main() {
	logger := log.WithModule("api")

	cmd := &cli.Command{
		Name:                  "flowkit-api",
		Usage:                 "Create and govern CRM workflow automations",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "data-dir",
				Usage:    "Directory for the file-backed store",
				Required: true,
				Sources:  cli.EnvVars("DATA_DIR"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus channel (memory, kafka)",
				Value:   "memory",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing FlowKit API")

			persistence := file.NewPersistence(command.String("data-dir"))

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			bus, err := newEventBus(logger, command.String("event-bus"))
			if err != nil {
				return err
			}

			reg := registry.NewRegistry(logger)
			registry.RegisterBuiltins(reg)

			api := NewAPI(logger, persistence, reg, bus)

			port := command.Int("port")
			logger.InfoContext(ctx, "Starting FlowKit API", "port", port)

			return api.Start(int(port))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Error("Failed to run flowkit-api", "error", err)
		os.Exit(1)
	}
}

func newEventBus(logger *slog.Logger, channel string) (eventbus.EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if channel == "kafka" {
		publisher, subscriber, err := kafka.CreateChannel(wmLogger, "flowkit-api")
		if err != nil {
			return nil, err
		}

		return eventbus.NewWatermillEventBus(publisher, subscriber), nil
	}

	publisher, subscriber, err := gochannel.CreateChannel(wmLogger)
	if err != nil {
		return nil, err
	}

	return eventbus.NewWatermillEventBus(publisher, subscriber), nil
}
