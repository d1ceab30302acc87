package floworb

import (
	"context"
	"errors"
	"fmt"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb/generation"
)

// Sentinel errors for graph mutation.
var (
	// ErrNodeNotFound indicates a node id is not in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrConnectionNotFound indicates a connection id is not in the graph.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrDuplicateNode indicates CreateNode was given an id already in use.
	ErrDuplicateNode = errors.New("node already exists")

	// ErrDuplicateConnection indicates ConnectWithID was given an id already in use.
	ErrDuplicateConnection = errors.New("connection id already exists")

	// ErrSelfLoop indicates a connection from a node to itself.
	ErrSelfLoop = errors.New("connection source and target are the same node")

	// ErrUnknownKind indicates a node kind outside the known set.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrInvalidNode indicates a NodeSpec failed validation.
	ErrInvalidNode = errors.New("invalid node")
)

// Sentinel errors for execution.
var (
	// ErrNotExecutable indicates Run was called on a data-only node.
	ErrNotExecutable = errors.New("node kind is not executable")

	// ErrAlreadyRunning indicates a run is already in flight for the node.
	ErrAlreadyRunning = errors.New("node is already running")

	// ErrUpstreamNotReady indicates an upstream reasoning node has no result yet.
	ErrUpstreamNotReady = errors.New("waiting for upstream reasoning output")

	// ErrMissingInputs indicates the node has neither an image nor a prompt to work with.
	ErrMissingInputs = errors.New("missing inputs: at least one image or one text prompt is required")

	// ErrTimeout indicates the generation call exceeded the run timeout.
	ErrTimeout = errors.New("timed out")
)

// NodeError wraps a run failure with node context.
type NodeError struct {
	// NodeID is the node that failed.
	NodeID string
	// Kind is the kind of the failed node.
	Kind Kind
	// Op is the step that failed ("gather", "validate", "generate").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s (%s): %s: %v", e.NodeID, e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic raised inside a generation backend.
type PanicError struct {
	// NodeID is the node whose run panicked.
	NodeID string
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.NodeID, e.Value)
}

// Category classifies an error for reporting.
type Category int

const (
	// CategoryUnknown is any error not covered below.
	CategoryUnknown Category = iota

	// CategoryValidation covers input problems found before any service call.
	CategoryValidation

	// CategoryService covers failures returned by the Generation Service.
	CategoryService

	// CategoryTimeout covers deadlines and cancellation.
	CategoryTimeout

	// CategoryConflict covers requests that clash with current state.
	CategoryConflict

	// CategoryNotFound covers unknown node or connection ids.
	CategoryNotFound
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryService:
		return "service"
	case CategoryTimeout:
		return "timeout"
	case CategoryConflict:
		return "conflict"
	case CategoryNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Categorize returns the category of err. A nil error is CategoryUnknown.
func Categorize(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var (
		genErr   *generation.Error
		panicErr *PanicError
	)
	switch {
	case errors.Is(err, ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return CategoryTimeout
	case errors.Is(err, ErrNodeNotFound), errors.Is(err, ErrConnectionNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrAlreadyRunning),
		errors.Is(err, ErrDuplicateNode),
		errors.Is(err, ErrDuplicateConnection):
		return CategoryConflict
	case errors.Is(err, ErrMissingInputs),
		errors.Is(err, ErrUpstreamNotReady),
		errors.Is(err, ErrInvalidNode),
		errors.Is(err, ErrUnknownKind),
		errors.Is(err, ErrSelfLoop),
		errors.Is(err, ErrNotExecutable):
		return CategoryValidation
	case errors.As(err, &genErr), errors.As(err, &panicErr):
		return CategoryService
	default:
		return CategoryUnknown
	}
}
