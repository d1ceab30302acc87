package main

import (
	"context"
	"slices"

	cli "github.com/urfave/cli/v3"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/api"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/config"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/notify"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the starter workflow over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "journal",
				Usage:   "SQLite file for run history (in memory when empty)",
				Sources: cli.EnvVars("FLOWORB_JOURNAL"),
			},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, command *cli.Command) error {
	settings, err := resolveSettings(command)
	if err != nil {
		return err
	}
	if command.IsSet("port") {
		settings.Port = command.Int("port")
	}
	if command.IsSet("journal") {
		settings.JournalPath = command.String("journal")
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	logger := withModule("api")
	logger.InfoContext(ctx, "Initializing Floworb API")

	flush := setupTracing(ctx, logger, settings.Tracing)
	defer flush()

	service, err := newService(ctx, logger, settings, command.Bool("offline"))
	if err != nil {
		return err
	}

	runs, err := newJournal(ctx, logger, settings.JournalPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := runs.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close journal", "error", err)
		}
	}()

	bus := notify.NewBus(notify.BusConfig{
		NonBlocking: true,
		OnDrop: func(n notify.Notification, subscriberID string) {
			logger.Warn("Notification dropped", "subscriber", subscriberID, "node_id", n.NodeID)
		},
	})
	defer func() {
		if err := bus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close notification bus", "error", err)
		}
	}()

	recent := notify.NewRecorder(0)
	bus.Subscribe(recent.Handle)
	bus.Subscribe(func(ctx context.Context, n notify.Notification) {
		logger.WarnContext(ctx, n.Message, "node_id", n.NodeID, "run_id", n.RunID, "level", n.Level)
	}, notify.LevelWarning, notify.LevelError)

	graph := floworb.StarterGraph()
	engine := floworb.NewEngine(graph, service,
		engineOptions(withModule("engine"), settings, runs, bus)...)

	server := api.NewAPI(logger, graph, engine, runs, recent)
	if !slices.Equal(settings.CORSOrigins, config.Defaults().CORSOrigins) {
		server.CORSOrigins = settings.CORSOrigins
	}

	logger.InfoContext(ctx, "Listening", "port", settings.Port)
	return server.Serve(ctx, settings.Port)
}

// resolveSettings loads the config file and applies the global flags.
func resolveSettings(command *cli.Command) (config.Settings, error) {
	settings, err := loadSettings(command.String("config"))
	if err != nil {
		return config.Settings{}, err
	}
	if command.IsSet("log-level") {
		settings.LogLevel = command.String("log-level")
	}
	if command.IsSet("log-format") {
		settings.LogFormat = command.String("log-format")
	}
	setupLogging(settings.LogLevel, settings.LogFormat)
	return settings, nil
}
