package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// Default model names for the Gemini backend.
const (
	DefaultImageModel = "gemini-2.5-flash-image"
	DefaultVideoModel = "veo-3.1-fast-generate-preview"
)

// DefaultPollInterval is how often a pending video operation is polled.
const DefaultPollInterval = 5 * time.Second

// genaiModels is the subset of *genai.Models the backend uses.
type genaiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateVideos(ctx context.Context, model string, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
}

// genaiOperations is the subset of *genai.Operations the backend uses.
type genaiOperations interface {
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation, config *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error)
}

// Gemini implements ImageEditor and VideoGenerator on the Gemini API.
type Gemini struct {
	models       genaiModels
	operations   genaiOperations
	imageModel   string
	videoModel   string
	aspectRatio  string
	pollInterval time.Duration
	logger       *slog.Logger
}

// GeminiOption configures a Gemini backend.
type GeminiOption func(*Gemini)

// WithImageModel sets the model used for image edit and generation.
func WithImageModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.imageModel = model
		}
	}
}

// WithVideoModel sets the model used for video generation.
func WithVideoModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.videoModel = model
		}
	}
}

// WithPollInterval sets how often pending video operations are polled.
func WithPollInterval(d time.Duration) GeminiOption {
	return func(g *Gemini) {
		if d > 0 {
			g.pollInterval = d
		}
	}
}

// WithAspectRatio sets the video aspect ratio. Default: "16:9".
func WithAspectRatio(ratio string) GeminiOption {
	return func(g *Gemini) {
		if ratio != "" {
			g.aspectRatio = ratio
		}
	}
}

// WithGeminiLogger sets the logger for backend diagnostics.
func WithGeminiLogger(logger *slog.Logger) GeminiOption {
	return func(g *Gemini) {
		g.logger = logger
	}
}

// NewGemini creates a Gemini backend authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGemini(client.Models, client.Operations, opts...), nil
}

func newGemini(models genaiModels, operations genaiOperations, opts ...GeminiOption) *Gemini {
	g := &Gemini{
		models:       models,
		operations:   operations,
		imageModel:   DefaultImageModel,
		videoModel:   DefaultVideoModel,
		aspectRatio:  "16:9",
		pollInterval: DefaultPollInterval,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EditOrGenerateImage implements ImageEditor.
// Images are sent first, then the combined prompt as the final part.
func (g *Gemini) EditOrGenerateImage(ctx context.Context, prompts []string, images []string) (string, error) {
	parts := make([]*genai.Part, 0, len(images)+1)
	for i, img := range images {
		mimeType, data, err := DecodeImage(img)
		if err != nil {
			return "", &Error{Op: OpEditImage, Message: fmt.Sprintf("image %d is not valid base64", i), Err: err}
		}
		parts = append(parts, genai.NewPartFromBytes(data, mimeType))
	}
	parts = append(parts, genai.NewPartFromText(CombinePrompts(prompts, len(images))))

	resp, err := g.models.GenerateContent(ctx, g.imageModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseModalities: []string{"IMAGE"}},
	)
	if err != nil {
		return "", wrap(OpEditImage, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &Error{Op: OpEditImage, Message: "No image generated.", Err: ErrEmptyResponse}
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return EncodeImage(part.InlineData.MIMEType, part.InlineData.Data), nil
		}
	}
	return "", &Error{Op: OpEditImage, Message: "Model did not return valid inline image data.", Err: ErrNoImage}
}

// GenerateVideo implements VideoGenerator. It starts a long-running
// operation and polls it until done or ctx ends.
func (g *Gemini) GenerateVideo(ctx context.Context, prompt, image string) (string, error) {
	var source *genai.Image
	if image != "" {
		mimeType, data, err := DecodeImage(image)
		if err != nil {
			return "", &Error{Op: OpGenerateVideo, Message: "input image is not valid base64", Err: err}
		}
		source = &genai.Image{ImageBytes: data, MIMEType: mimeType}
	}

	op, err := g.models.GenerateVideos(ctx, g.videoModel, prompt, source, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    g.aspectRatio,
	})
	if err != nil {
		return "", wrap(OpGenerateVideo, err)
	}

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for op != nil && !op.Done {
		g.logger.Debug("video operation pending", slog.String("operation", op.Name))
		select {
		case <-ctx.Done():
			return "", wrap(OpGenerateVideo, ctx.Err())
		case <-ticker.C:
		}
		op, err = g.operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return "", wrap(OpGenerateVideo, err)
		}
	}

	if op == nil || op.Response == nil || len(op.Response.GeneratedVideos) == 0 ||
		op.Response.GeneratedVideos[0].Video == nil || op.Response.GeneratedVideos[0].Video.URI == "" {
		return "", &Error{Op: OpGenerateVideo, Message: "Video generation failed or no URI returned.", Err: ErrNoVideo}
	}
	return op.Response.GeneratedVideos[0].Video.URI, nil
}

var (
	_ ImageEditor    = (*Gemini)(nil)
	_ VideoGenerator = (*Gemini)(nil)
)
