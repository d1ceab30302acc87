package floworb

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb/generation"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/journal"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/notify"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/observability"
)

// Result describes one finished run.
type Result struct {
	RunID     string          `json:"runId"`
	NodeID    string          `json:"nodeId"`
	Kind      Kind            `json:"kind"`
	Status    ExecutionStatus `json:"status"`
	Output    string          `json:"output,omitempty"`
	Error     string          `json:"error,omitempty"`
	Inputs    Inputs          `json:"inputs"`
	Forwarded []string        `json:"forwarded,omitempty"`
	StartedAt time.Time       `json:"startedAt"`
	Duration  time.Duration   `json:"duration"`
}

// Engine executes single nodes against a Store and a Generation Service.
//
// Run is synchronous. Runs on different nodes may proceed concurrently;
// a second Run on a node that is already running is rejected with
// ErrAlreadyRunning. Downstream nodes are never run automatically.
type Engine struct {
	store   Store
	service generation.Service
	cfg     engineConfig

	mu      sync.Mutex
	running map[string]string // node id -> run id
}

// NewEngine creates an Engine over store using service for generation.
func NewEngine(store Store, service generation.Service, opts ...EngineOption) *Engine {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		store:   store,
		service: service,
		cfg:     cfg,
		running: make(map[string]string),
	}
}

// Running returns the run id in flight for nodeID, if any.
func (e *Engine) Running(nodeID string) (runID string, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	runID, ok = e.running[nodeID]
	return runID, ok
}

// Run executes the node with the given id and returns once it has
// resolved to StatusSuccess or StatusError.
//
// Errors returned before any state change:
//   - ErrNodeNotFound when the id is unknown
//   - ErrNotExecutable for ImageInput, PromptTemplate and OutputSink nodes
//   - ErrAlreadyRunning when a run for the node is in flight
//
// Any other error is a *NodeError, and the same failure is recorded in
// the node's state.
func (e *Engine) Run(ctx context.Context, nodeID string) (result *Result, runErr error) {
	if ctx == nil {
		ctx = context.Background()
	}

	node, err := e.store.Node(nodeID)
	if err != nil {
		observability.LogRunRejected(e.cfg.logger, nodeID, err)
		return nil, err
	}
	if !node.Kind.Executable() {
		e.cfg.metrics.RecordRejected(ctx, "not_executable")
		return nil, &NodeError{NodeID: nodeID, Kind: node.Kind, Op: "run", Err: ErrNotExecutable}
	}

	runID := uuid.NewString()
	if !e.acquire(nodeID, runID) {
		e.cfg.metrics.RecordRejected(ctx, "already_running")
		observability.LogRunRejected(e.cfg.logger, nodeID, ErrAlreadyRunning)
		return nil, &NodeError{NodeID: nodeID, Kind: node.Kind, Op: "run", Err: ErrAlreadyRunning}
	}
	defer e.release(nodeID)

	r := &run{
		id:     runID,
		node:   node,
		logger: observability.EnrichLogger(e.cfg.logger, runID, nodeID, string(node.Kind)),
		result: &Result{
			RunID:     runID,
			NodeID:    nodeID,
			Kind:      node.Kind,
			StartedAt: time.Now(),
		},
	}

	ctx, span := e.cfg.spans.StartRunSpan(ctx, nodeID, string(node.Kind), runID)
	defer func() {
		e.cfg.spans.EndSpanWithError(span, runErr)
	}()

	switch node.Kind {
	case KindImageEditOrGenerate:
		runErr = e.runImageEdit(ctx, r)
	case KindReasoningAnalysis:
		runErr = e.runReasoning(ctx, r)
	case KindVideoGenerate:
		runErr = e.runVideo(ctx, r)
	}

	e.finish(ctx, r, runErr)
	return r.result, runErr
}

func (e *Engine) acquire(nodeID, runID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.running[nodeID]; busy {
		return false
	}
	e.running[nodeID] = runID
	return true
}

func (e *Engine) release(nodeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, nodeID)
}

// run carries per-run state through the kind handlers.
type run struct {
	id     string
	node   Node
	logger *slog.Logger
	result *Result
}

// finish records the outcome in the result, journal, metrics and logs.
func (e *Engine) finish(ctx context.Context, r *run, runErr error) {
	res := r.result
	res.Duration = time.Since(res.StartedAt)
	durationMs := float64(res.Duration.Microseconds()) / 1000

	category := ""
	if runErr != nil {
		res.Status = StatusError
		category = Categorize(runErr).String()
		if current, err := e.store.Node(r.node.ID); err == nil {
			res.Error = current.ErrorMessage()
		}
		observability.LogNodeRunError(r.logger, runErr, category, durationMs)
	} else {
		res.Status = StatusSuccess
		observability.LogNodeRunComplete(r.logger, durationMs, len(res.Forwarded))
	}
	e.cfg.metrics.RecordNodeRun(ctx, string(r.node.Kind), res.Duration, category)

	if e.cfg.journal == nil {
		return
	}
	_, err := e.cfg.journal.Append(journal.Record{
		RunID:       res.RunID,
		NodeID:      res.NodeID,
		Kind:        string(res.Kind),
		Status:      string(res.Status),
		Error:       res.Error,
		Category:    category,
		ImageCount:  len(res.Inputs.Images),
		PromptCount: len(res.Inputs.Prompts),
		Duration:    res.Duration,
		StartedAt:   res.StartedAt,
	})
	if err != nil {
		observability.LogJournalError(r.logger, err)
		return
	}
	e.cfg.spans.AddSpanEvent(ctx, "journal.appended", attribute.String("run.id", res.RunID))
}

// begin moves the node to processing and clears the previous error.
func (e *Engine) begin(r *run) error {
	return e.store.PatchNode(r.node.ID, Patch{
		Status:       Ptr(StatusProcessing),
		ErrorMessage: Ptr(""),
	})
}

// succeed moves the node to success, applying extra to the node itself.
func (e *Engine) succeed(r *run, extra Patch) {
	extra.Status = Ptr(StatusSuccess)
	extra.ErrorMessage = Ptr("")
	if err := e.store.PatchNode(r.node.ID, extra); err != nil {
		r.logger.Warn("node vanished before success could be recorded", slog.String("error", err.Error()))
	}
}

// fail moves the node to error with message, publishes a notification and
// returns a *NodeError wrapping cause.
func (e *Engine) fail(ctx context.Context, r *run, op string, cause error, message string, level notify.Level, notice string) error {
	if err := e.store.PatchNode(r.node.ID, Patch{
		Status:       Ptr(StatusError),
		ErrorMessage: Ptr(message),
	}); err != nil {
		r.logger.Warn("node vanished before failure could be recorded", slog.String("error", err.Error()))
	}
	e.notify(ctx, r, level, notice)
	return &NodeError{NodeID: r.node.ID, Kind: r.node.Kind, Op: op, Err: cause}
}

// forward patches every direct downstream node and returns their ids.
func (e *Engine) forward(r *run, p Patch) []string {
	var forwarded []string
	for _, edge := range e.store.OutgoingEdges(r.node.ID) {
		if err := e.store.PatchNode(edge.TargetID, p); err != nil {
			r.logger.Warn("forward skipped",
				slog.String("target", edge.TargetID),
				slog.String("error", err.Error()),
			)
			continue
		}
		forwarded = append(forwarded, edge.TargetID)
	}
	return forwarded
}

func (e *Engine) notify(ctx context.Context, r *run, level notify.Level, message string) {
	if message == "" {
		return
	}
	n := notify.New(level, r.node.ID, message)
	n.RunID = r.id
	n.TTL = e.cfg.notifyTTL
	if err := e.cfg.notifier.Notify(context.WithoutCancel(ctx), n); err != nil {
		observability.LogNotifyError(r.logger, err)
	}
}
