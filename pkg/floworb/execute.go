package floworb

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb/generation"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/notify"
	"github.com/orbimatrix/Floworb-AI/pkg/floworb/observability"
)

// Fallback error messages used when a failure carries no message of its own.
const (
	fallbackImageError    = "Failed to generate image"
	fallbackAnalysisError = "Analysis failed"
	fallbackVideoError    = "Failed to generate video"
)

// User-facing notification texts.
const (
	noticeUpstreamNotReady  = "Upstream reasoning node hasn't run yet. Run it first."
	noticeImageNeedsInput   = "Image node needs at least an input image or a prompt."
	noticeVideoNeedsInput   = "Video node needs at least an input image or a prompt."
	noticeImageGenerated    = "Image generated."
	noticeAnalysisComplete  = "Analysis complete. Ready to use in downstream image nodes."
	noticeVideoGenerated    = "Video generated."
	defaultVideoImagePrompt = "Bring this image to life"
)

// runImageEdit gathers every upstream contribution, validates, calls the
// image backend and forwards the produced image downstream.
func (e *Engine) runImageEdit(ctx context.Context, r *run) error {
	in, err := Gather(e.store, r.node.ID)
	if err != nil {
		return e.fail(ctx, r, "gather", err, err.Error(), notify.LevelError, "")
	}
	r.result.Inputs = in

	if len(in.MissingUpstream) > 0 {
		return e.fail(ctx, r, "validate", ErrUpstreamNotReady, ErrUpstreamNotReady.Error(),
			notify.LevelWarning, noticeUpstreamNotReady)
	}
	if in.Empty() {
		return e.fail(ctx, r, "validate", ErrMissingInputs, ErrMissingInputs.Error(),
			notify.LevelError, noticeImageNeedsInput)
	}

	if err := e.begin(r); err != nil {
		return err
	}
	observability.LogNodeRunStart(r.logger, len(in.Images), len(in.Prompts))

	image, err := e.generate(ctx, r, generation.OpEditImage, func(ctx context.Context) (string, error) {
		return e.service.EditOrGenerateImage(ctx, in.Prompts, in.Images)
	})
	if err != nil {
		msg := failureMessage(err, e.cfg.timeout, fallbackImageError)
		return e.fail(ctx, r, "generate", err, msg, notify.LevelError, "Image generation failed: "+msg)
	}

	e.succeed(r, Patch{OutputImage: Ptr(image)})
	r.result.Output = image
	r.result.Forwarded = e.forward(r, Patch{OutputImage: Ptr(image)})
	e.notify(ctx, r, notify.LevelSuccess, noticeImageGenerated)
	return nil
}

// runReasoning picks the first upstream image and asks the reasoning backend
// about it. The answer stays on the node; nothing is forwarded.
func (e *Engine) runReasoning(ctx context.Context, r *run) error {
	in, err := Gather(e.store, r.node.ID)
	if err != nil {
		return e.fail(ctx, r, "gather", err, err.Error(), notify.LevelError, "")
	}
	r.result.Inputs = in

	if err := e.begin(r); err != nil {
		return err
	}

	prompt := r.node.Prompt()
	if prompt == "" {
		prompt = e.cfg.reasoningPrompt
	}
	images := 0
	if in.FirstImage != "" {
		images = 1
	}
	observability.LogNodeRunStart(r.logger, images, 1)

	text, err := e.generate(ctx, r, generation.OpAnalyze, func(ctx context.Context) (string, error) {
		return e.service.Analyze(ctx, prompt, in.FirstImage)
	})
	if err != nil {
		msg := failureMessage(err, e.cfg.timeout, fallbackAnalysisError)
		return e.fail(ctx, r, "generate", err, msg, notify.LevelError, "Analysis failed: "+msg)
	}

	e.succeed(r, Patch{AnalysisResult: Ptr(text)})
	r.result.Output = text
	e.notify(ctx, r, notify.LevelSuccess, noticeAnalysisComplete)
	return nil
}

// runVideo combines the gathered prompts with the first upstream image and
// forwards the resulting video URI downstream.
func (e *Engine) runVideo(ctx context.Context, r *run) error {
	in, err := Gather(e.store, r.node.ID)
	if err != nil {
		return e.fail(ctx, r, "gather", err, err.Error(), notify.LevelError, "")
	}
	r.result.Inputs = in

	if len(in.MissingUpstream) > 0 {
		return e.fail(ctx, r, "validate", ErrUpstreamNotReady, ErrUpstreamNotReady.Error(),
			notify.LevelWarning, noticeUpstreamNotReady)
	}
	if len(in.Prompts) == 0 && in.FirstImage == "" {
		return e.fail(ctx, r, "validate", ErrMissingInputs, ErrMissingInputs.Error(),
			notify.LevelError, noticeVideoNeedsInput)
	}

	if err := e.begin(r); err != nil {
		return err
	}

	prompt := strings.Join(in.Prompts, "\n\n")
	if prompt == "" {
		prompt = defaultVideoImagePrompt
	}
	images := 0
	if in.FirstImage != "" {
		images = 1
	}
	observability.LogNodeRunStart(r.logger, images, len(in.Prompts))

	uri, err := e.generate(ctx, r, generation.OpGenerateVideo, func(ctx context.Context) (string, error) {
		return e.service.GenerateVideo(ctx, prompt, in.FirstImage)
	})
	if err != nil {
		msg := failureMessage(err, e.cfg.timeout, fallbackVideoError)
		return e.fail(ctx, r, "generate", err, msg, notify.LevelError, "Video generation failed: "+msg)
	}

	e.succeed(r, Patch{VideoURI: Ptr(uri)})
	r.result.Output = uri
	r.result.Forwarded = e.forward(r, Patch{VideoURI: Ptr(uri)})
	e.notify(ctx, r, notify.LevelSuccess, noticeVideoGenerated)
	return nil
}

// generate calls fn under the run timeout with tracing, metrics and panic
// recovery. A deadline is reported as ErrTimeout.
func (e *Engine) generate(ctx context.Context, r *run, op string, fn func(context.Context) (string, error)) (out string, err error) {
	callCtx := ctx
	if e.cfg.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.cfg.timeout)
		defer cancel()
	}

	callCtx, span := e.cfg.spans.StartGenerationSpan(callCtx, op)
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{NodeID: r.node.ID, Value: p, Stack: string(debug.Stack())}
		}
		if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		}

		duration := time.Since(start)
		e.cfg.spans.EndSpanWithError(span, err)
		e.cfg.metrics.RecordGeneration(ctx, op, duration, err)
		observability.LogGeneration(r.logger, op, float64(duration.Microseconds())/1000, err)
	}()

	if e.service == nil {
		return "", &generation.Error{Op: op, Message: "generation service not configured", Err: generation.ErrNotConfigured}
	}
	return fn(callCtx)
}

// failureMessage turns a generation failure into the text stored on the node.
func failureMessage(err error, timeout time.Duration, fallback string) string {
	var (
		genErr   *generation.Error
		panicErr *PanicError
	)
	switch {
	case errors.Is(err, ErrTimeout):
		if timeout > 0 {
			return fmt.Sprintf("timed out after %s", timeout)
		}
		return "timed out"
	case errors.Is(err, context.Canceled):
		return "execution cancelled"
	case errors.As(err, &genErr):
		if genErr.Message != "" {
			return genErr.Message
		}
		return fallback
	case errors.As(err, &panicErr):
		return fallback
	case err != nil && err.Error() != "":
		return err.Error()
	default:
		return fallback
	}
}
