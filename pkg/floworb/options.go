package floworb

import (
	"log/slog"
	"time"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb/journal"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/notify"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/observability"
)

// DefaultReasoningPrompt is used when a ReasoningAnalysis node has no prompt.
const DefaultReasoningPrompt = "Analyze this image and provide a detailed prompt for image generation."

// engineConfig holds Engine settings.
type engineConfig struct {
	logger          *slog.Logger
	notifier        notify.Notifier
	journal         journal.Store
	metrics         observability.MetricsRecorder
	spans           observability.SpanManager
	timeout         time.Duration
	reasoningPrompt string
	notifyTTL       time.Duration
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		logger:          slog.New(slog.DiscardHandler),
		notifier:        notify.Discard,
		metrics:         observability.NoopMetrics{},
		spans:           observability.NoopSpanManager{},
		reasoningPrompt: DefaultReasoningPrompt,
		notifyTTL:       notify.DefaultTTL,
	}
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

// WithLogger sets the logger for run logs.
// Default: logs are discarded.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier sets where user-facing notifications go.
// Default: notifications are discarded.
func WithNotifier(n notify.Notifier) EngineOption {
	return func(c *engineConfig) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithJournal records every executed run in store.
func WithJournal(store journal.Store) EngineOption {
	return func(c *engineConfig) {
		c.journal = store
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
func WithMetrics(enabled bool) EngineOption {
	return func(c *engineConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a specific metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) EngineOption {
	return func(c *engineConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans using the global tracer provider.
func WithTracing(enabled bool) EngineOption {
	return func(c *engineConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithTimeout bounds each Generation Service call. Zero means no bound
// beyond the caller's context.
//
// A run that hits the bound ends in StatusError with a "timed out" message
// and Run returns an error matching ErrTimeout.
func WithTimeout(d time.Duration) EngineOption {
	return func(c *engineConfig) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithDefaultReasoningPrompt overrides DefaultReasoningPrompt.
func WithDefaultReasoningPrompt(prompt string) EngineOption {
	return func(c *engineConfig) {
		if prompt != "" {
			c.reasoningPrompt = prompt
		}
	}
}

// WithNotificationTTL sets how long published notifications stay visible.
func WithNotificationTTL(d time.Duration) EngineOption {
	return func(c *engineConfig) {
		if d > 0 {
			c.notifyTTL = d
		}
	}
}
