package generation

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// DefaultReasoningModel is the model used for reasoning when none is configured.
const DefaultReasoningModel = "gemini-3-pro-preview"

// NoResponseText is returned when the model answers without any text.
const NoResponseText = "No response text generated."

// LLMReasoner implements Reasoner on any langchaingo llms.Model.
type LLMReasoner struct {
	model     llms.Model
	modelName string
}

// NewLLMReasoner wraps model. modelName may be empty to use the model's default.
func NewLLMReasoner(model llms.Model, modelName string) *LLMReasoner {
	return &LLMReasoner{model: model, modelName: modelName}
}

// NewGoogleReasoner creates a Reasoner backed by the Google AI provider.
func NewGoogleReasoner(ctx context.Context, apiKey, modelName string) (*LLMReasoner, error) {
	if modelName == "" {
		modelName = DefaultReasoningModel
	}
	model, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("create googleai model: %w", err)
	}
	return NewLLMReasoner(model, modelName), nil
}

// Analyze implements Reasoner. The image, when present, precedes the prompt.
func (r *LLMReasoner) Analyze(ctx context.Context, prompt, image string) (string, error) {
	parts := make([]llms.ContentPart, 0, 2)
	if image != "" {
		mimeType, data, err := DecodeImage(image)
		if err != nil {
			return "", &Error{Op: OpAnalyze, Message: "input image is not valid base64", Err: err}
		}
		parts = append(parts, llms.BinaryPart(mimeType, data))
	}
	parts = append(parts, llms.TextPart(prompt))

	var opts []llms.CallOption
	if r.modelName != "" {
		opts = append(opts, llms.WithModel(r.modelName))
	}

	resp, err := r.model.GenerateContent(ctx, []llms.MessageContent{
		{Role: llms.ChatMessageTypeHuman, Parts: parts},
	}, opts...)
	if err != nil {
		return "", wrap(OpAnalyze, err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", &Error{Op: OpAnalyze, Message: "model returned no choices", Err: ErrEmptyResponse}
	}
	if resp.Choices[0].Content == "" {
		return NoResponseText, nil
	}
	return resp.Choices[0].Content, nil
}

var _ Reasoner = (*LLMReasoner)(nil)
