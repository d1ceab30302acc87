package generation

import (
	"context"
	"sync"
	"time"
)

// Call records one invocation of a MockService.
type Call struct {
	Op      string
	Prompts []string
	Images  []string
}

// MockService is a Service with canned results for tests and examples.
// It records every call and is safe for concurrent use.
type MockService struct {
	mu sync.Mutex

	image    string
	analysis string
	videoURI string
	err      error
	delay    time.Duration
	gate     <-chan struct{}

	// Calls holds every invocation in call order.
	Calls []Call
}

// NewMockService returns a mock that answers every image call with image.
func NewMockService(image string) *MockService {
	return &MockService{
		image:    image,
		analysis: "mock analysis",
		videoURI: "https://example.invalid/video.mp4",
	}
}

// WithAnalysis sets the text returned by Analyze.
func (m *MockService) WithAnalysis(text string) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analysis = text
	return m
}

// WithVideoURI sets the URI returned by GenerateVideo.
func (m *MockService) WithVideoURI(uri string) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videoURI = uri
	return m
}

// WithError makes every operation fail with err.
func (m *MockService) WithError(err error) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithDelay makes every operation wait d, or until ctx is done.
func (m *MockService) WithDelay(d time.Duration) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithGate makes every operation block until gate is closed, or ctx is done.
func (m *MockService) WithGate(gate <-chan struct{}) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = gate
	return m
}

// EditOrGenerateImage implements ImageEditor.
func (m *MockService) EditOrGenerateImage(ctx context.Context, prompts []string, images []string) (string, error) {
	if err := m.record(ctx, Call{Op: OpEditImage, Prompts: copyStrings(prompts), Images: copyStrings(images)}); err != nil {
		return "", wrap(OpEditImage, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.image, nil
}

// Analyze implements Reasoner.
func (m *MockService) Analyze(ctx context.Context, prompt, image string) (string, error) {
	if err := m.record(ctx, Call{Op: OpAnalyze, Prompts: []string{prompt}, Images: nonEmpty(image)}); err != nil {
		return "", wrap(OpAnalyze, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analysis, nil
}

// GenerateVideo implements VideoGenerator.
func (m *MockService) GenerateVideo(ctx context.Context, prompt, image string) (string, error) {
	if err := m.record(ctx, Call{Op: OpGenerateVideo, Prompts: []string{prompt}, Images: nonEmpty(image)}); err != nil {
		return "", wrap(OpGenerateVideo, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.videoURI, nil
}

// CallCount returns the number of calls. With an op it counts only that operation.
func (m *MockService) CallCount(op ...string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(op) == 0 {
		return len(m.Calls)
	}
	n := 0
	for _, c := range m.Calls {
		if c.Op == op[0] {
			n++
		}
	}
	return n
}

// LastCall returns the most recent call, or nil if none.
func (m *MockService) LastCall() *Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	c := m.Calls[len(m.Calls)-1]
	return &c
}

// Reset clears recorded calls.
func (m *MockService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

func (m *MockService) record(ctx context.Context, c Call) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, c)
	err, delay, gate := m.err, m.delay, m.gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

var _ Service = (*MockService)(nil)
