// Package observability provides structured logging, metrics, and tracing
// for node runs.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds run context to a logger.
// Returns a new logger with run_id, node_id, and kind fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "run-123", "node-2", "ImageEditOrGenerate")
//	enriched.Info("calling backend") // includes run_id, node_id, kind
func EnrichLogger(logger *slog.Logger, runID, nodeID, kind string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.String("node_id", nodeID),
		slog.String("kind", kind),
	)
}

// LogNodeRunStart logs the start of a node run.
func LogNodeRunStart(logger *slog.Logger, images, prompts int) {
	if logger == nil {
		return
	}
	logger.Info("node run starting",
		slog.Int("images", images),
		slog.Int("prompts", prompts),
	)
}

// LogNodeRunComplete logs a successful node run.
func LogNodeRunComplete(logger *slog.Logger, durationMs float64, forwarded int) {
	if logger == nil {
		return
	}
	logger.Info("node run completed",
		slog.Float64("duration_ms", durationMs),
		slog.Int("forwarded_to", forwarded),
	)
}

// LogNodeRunError logs a failed node run.
func LogNodeRunError(logger *slog.Logger, err error, category string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("node run failed",
		slog.String("error", err.Error()),
		slog.String("category", category),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRunRejected logs a run that was refused before any state change.
func LogRunRejected(logger *slog.Logger, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("node run rejected",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogGeneration logs a call into the Generation Service.
func LogGeneration(logger *slog.Logger, op string, durationMs float64, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Warn("generation call failed",
			slog.String("operation", op),
			slog.Float64("duration_ms", durationMs),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Debug("generation call completed",
		slog.String("operation", op),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogJournalError logs a journal write failure (non-fatal).
func LogJournalError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal append failed",
		slog.String("error", err.Error()),
	)
}

// LogNotifyError logs a notification delivery failure (non-fatal).
func LogNotifyError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("notification failed",
		slog.String("error", err.Error()),
	)
}
