package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/notify"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run one node of a saved workflow and write the updated workflow",
		ArgsUsage: "<node-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "graph",
				Aliases: []string{"g"},
				Usage:   "Workflow snapshot (JSON); the starter workflow when empty",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Where to write the updated snapshot (stdout when empty)",
			},
		},
		Action: runNode,
	}
}

func runNode(ctx context.Context, command *cli.Command) error {
	nodeID := command.Args().First()
	if nodeID == "" {
		return errors.New("node id is required")
	}

	settings, err := resolveSettings(command)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	logger := withModule("run")

	flush := setupTracing(ctx, logger, settings.Tracing)
	defer flush()

	graph, err := loadGraph(command.String("graph"))
	if err != nil {
		return err
	}

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

	notifier := notify.NotifierFunc(func(ctx context.Context, n notify.Notification) error {
		logger.InfoContext(ctx, n.Message, "level", n.Level, "node_id", n.NodeID)
		return nil
	})

	engine := floworb.NewEngine(graph, service,
		engineOptions(withModule("engine"), settings, runs, notifier)...)

	result, runErr := engine.Run(ctx, nodeID)
	if result == nil {
		return runErr
	}

	if err := writeSnapshot(command.String("out"), graph.Snapshot()); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("run %s: %w", result.RunID, runErr)
	}
	logger.InfoContext(ctx, "Run complete", "run_id", result.RunID, "forwarded", result.Forwarded)
	return nil
}

func loadGraph(path string) (*floworb.Graph, error) {
	if path == "" {
		return floworb.StarterGraph(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow: %w", err)
	}

	var snapshot floworb.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse workflow: %w", err)
	}
	return floworb.Restore(snapshot)
}

func writeSnapshot(path string, snapshot floworb.Snapshot) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}
