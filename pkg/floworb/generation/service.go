// Package generation defines the Generation Service contract used by the
// execution engine, plus concrete backends.
//
// Three operations exist:
//   - EditOrGenerateImage: image edit or text-to-image (Gemini image model via genai)
//   - Analyze: multimodal reasoning returning text (langchaingo llms.Model)
//   - GenerateVideo: text or image to video (Veo via genai)
//
// Images cross the contract as data URIs ("data:image/png;base64,...") or as
// bare base64. Backends always return data URIs for images.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Operation names used in errors, logs and spans.
const (
	OpEditImage     = "edit_image"
	OpAnalyze       = "analyze"
	OpGenerateVideo = "generate_video"
)

// ImageEditor edits the given images, or generates one when none are given.
// It returns exactly one image or fails.
type ImageEditor interface {
	EditOrGenerateImage(ctx context.Context, prompts []string, images []string) (string, error)
}

// Reasoner answers a prompt about an optional image. An empty image means no image.
type Reasoner interface {
	Analyze(ctx context.Context, prompt, image string) (string, error)
}

// VideoGenerator produces a video from a prompt and optional image and returns its URI.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, prompt, image string) (string, error)
}

// Service is the full Generation Service.
type Service interface {
	ImageEditor
	Reasoner
	VideoGenerator
}

// Error is a failed generation call.
type Error struct {
	// Op is the operation that failed.
	Op string
	// Message is a human-readable reason suitable for display.
	Message string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("generation %s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Sentinel errors for backends.
var (
	// ErrNoImage indicates the model response carried no image part.
	ErrNoImage = errors.New("model did not return image data")

	// ErrNoVideo indicates the video operation finished without a video URI.
	ErrNoVideo = errors.New("video generation returned no URI")

	// ErrEmptyResponse indicates the model returned no candidates.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrNotConfigured indicates a composed service is missing a backend.
	ErrNotConfigured = errors.New("backend not configured")
)

// wrap builds an *Error for op from err. Existing *Error values pass through.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var genErr *Error
	if errors.As(err, &genErr) {
		return err
	}
	return &Error{Op: op, Message: err.Error(), Err: err}
}

// CombinePrompts joins prompts with a blank line. An empty result falls back to
// an enhancement instruction when images are present, else to a free-form one.
func CombinePrompts(prompts []string, imageCount int) string {
	combined := strings.Join(prompts, "\n\n")
	if combined != "" {
		return combined
	}
	if imageCount > 0 {
		return "Enhance this image"
	}
	return "A creative abstract image"
}

type composite struct {
	editor   ImageEditor
	reasoner Reasoner
	video    VideoGenerator
}

// Compose assembles a Service from separate backends. Any part may be nil,
// in which case that operation fails with ErrNotConfigured.
func Compose(editor ImageEditor, reasoner Reasoner, video VideoGenerator) Service {
	return &composite{editor: editor, reasoner: reasoner, video: video}
}

func (c *composite) EditOrGenerateImage(ctx context.Context, prompts []string, images []string) (string, error) {
	if c.editor == nil {
		return "", &Error{Op: OpEditImage, Message: "image backend not configured", Err: ErrNotConfigured}
	}
	return c.editor.EditOrGenerateImage(ctx, prompts, images)
}

func (c *composite) Analyze(ctx context.Context, prompt, image string) (string, error) {
	if c.reasoner == nil {
		return "", &Error{Op: OpAnalyze, Message: "reasoning backend not configured", Err: ErrNotConfigured}
	}
	return c.reasoner.Analyze(ctx, prompt, image)
}

func (c *composite) GenerateVideo(ctx context.Context, prompt, image string) (string, error) {
	if c.video == nil {
		return "", &Error{Op: OpGenerateVideo, Message: "video backend not configured", Err: ErrNotConfigured}
	}
	return c.video.GenerateVideo(ctx, prompt, image)
}
