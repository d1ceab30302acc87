package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/config"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/generation"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/journal"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/notify"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/observability"
)

// mockImage is a 1x1 transparent PNG returned by the offline backend.
const mockImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func loadSettings(path string) (config.Settings, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Settings{}, err
	}
	return cfg.Settings(), nil
}

func newService(ctx context.Context, logger *slog.Logger, s config.Settings, offline bool) (generation.Service, error) {
	if offline {
		logger.WarnContext(ctx, "Using offline mock generation backend")
		return generation.NewMockService(mockImage), nil
	}

	apiKey := os.Getenv(s.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%s is not set", s.APIKeyEnv)
	}

	gemini, err := generation.NewGemini(ctx, apiKey,
		generation.WithImageModel(s.ImageModel),
		generation.WithVideoModel(s.VideoModel),
		generation.WithPollInterval(s.VideoPollInterval),
		generation.WithGeminiLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	reasoner, err := generation.NewGoogleReasoner(ctx, apiKey, s.ReasoningModel)
	if err != nil {
		return nil, err
	}

	return generation.Compose(gemini, reasoner, gemini), nil
}

func newJournal(ctx context.Context, logger *slog.Logger, path string) (journal.Store, error) {
	if path == "" {
		return journal.NewMemoryStore(), nil
	}

	logger.InfoContext(ctx, "Opening run journal", "path", path)
	return journal.NewSQLiteStore(path)
}

func setupTracing(ctx context.Context, logger *slog.Logger, enabled bool) func() {
	if !enabled {
		return func() {}
	}

	shutdown, err := observability.SetupTracing(ctx, "floworb")
	if err != nil {
		logger.ErrorContext(ctx, "Tracing disabled", "error", err)
		return func() {}
	}

	return func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to flush traces", "error", err)
		}
	}
}

func engineOptions(logger *slog.Logger, s config.Settings, runs journal.Store, notifier notify.Notifier) []floworb.EngineOption {
	return []floworb.EngineOption{
		floworb.WithLogger(logger),
		floworb.WithNotifier(notifier),
		floworb.WithJournal(runs),
		floworb.WithTimeout(s.RunTimeout),
		floworb.WithDefaultReasoningPrompt(s.ReasoningPrompt),
		floworb.WithNotificationTTL(s.NotificationTTL),
		floworb.WithMetrics(s.Metrics),
		floworb.WithTracing(s.Tracing),
	}
}
