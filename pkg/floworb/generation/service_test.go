package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCombinePrompts tests joining and the empty fallbacks.
func TestCombinePrompts(t *testing.T) {
	assert.Equal(t, "a\n\nb", CombinePrompts([]string{"a", "b"}, 0))
	assert.Equal(t, "Enhance this image", CombinePrompts(nil, 2))
	assert.Equal(t, "A creative abstract image", CombinePrompts(nil, 0))
}

// TestError tests formatting and unwrapping of backend errors.
func TestError(t *testing.T) {
	cause := errors.New("quota")
	err := wrap(OpAnalyze, cause)

	var genErr *Error
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, OpAnalyze, genErr.Op)
	assert.Equal(t, "quota", genErr.Message)
	assert.ErrorIs(t, err, cause)

	assert.Same(t, genErr, wrap(OpEditImage, genErr), "already wrapped errors pass through")
	assert.NoError(t, wrap(OpAnalyze, nil))
}

// TestCompose tests delegation and missing parts.
func TestCompose(t *testing.T) {
	mock := NewMockService("img").WithAnalysis("text").WithVideoURI("uri")
	ctx := context.Background()

	svc := Compose(mock, mock, nil)

	out, err := svc.EditOrGenerateImage(ctx, []string{"p"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "img", out)

	out, err = svc.Analyze(ctx, "p", "")
	require.NoError(t, err)
	assert.Equal(t, "text", out)

	_, err = svc.GenerateVideo(ctx, "p", "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Compose(nil, nil, mock).EditOrGenerateImage(ctx, nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = Compose(nil, nil, mock).Analyze(ctx, "p", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// TestMockService_Records tests call recording and counting.
func TestMockService_Records(t *testing.T) {
	m := NewMockService("img")
	ctx := context.Background()

	_, err := m.EditOrGenerateImage(ctx, []string{"a", "b"}, []string{"i1"})
	require.NoError(t, err)
	_, err = m.Analyze(ctx, "why", "")
	require.NoError(t, err)
	out, err := m.GenerateVideo(ctx, "move", "i2")
	require.NoError(t, err)
	assert.Equal(t, "https://example.invalid/video.mp4", out)

	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, 1, m.CallCount(OpAnalyze))
	assert.Equal(t, Call{Op: OpAnalyze, Prompts: []string{"why"}}, m.Calls[1])
	assert.Equal(t, Call{Op: OpGenerateVideo, Prompts: []string{"move"}, Images: []string{"i2"}}, *m.LastCall())

	m.Reset()
	assert.Zero(t, m.CallCount())
	assert.Nil(t, m.LastCall())
}

// TestMockService_Error tests that configured errors are wrapped.
func TestMockService_Error(t *testing.T) {
	m := NewMockService("img").WithError(errors.New("down"))

	_, err := m.EditOrGenerateImage(context.Background(), nil, nil)

	var genErr *Error
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, OpEditImage, genErr.Op)
	assert.Equal(t, 1, m.CallCount(), "failed calls are still recorded")
}

// TestMockService_DelayHonoursContext tests that a delayed call stops on cancellation.
func TestMockService_DelayHonoursContext(t *testing.T) {
	m := NewMockService("img").WithDelay(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Analyze(ctx, "p", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestMockService_Gate tests that a gated call waits for release.
func TestMockService_Gate(t *testing.T) {
	gate := make(chan struct{})
	m := NewMockService("img").WithGate(gate)

	done := make(chan string, 1)
	go func() {
		out, _ := m.EditOrGenerateImage(context.Background(), nil, nil)
		done <- out
	}()

	select {
	case <-done:
		t.Fatal("call returned before the gate opened")
	case <-time.After(20 * time.Millisecond):
	}

	close(gate)
	assert.Equal(t, "img", <-done)
}
