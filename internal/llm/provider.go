package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// GenerationParams tunes a single completion call.
type GenerationParams struct {
	Temperature     float64
	MaxOutputTokens int
}

// DefaultGenerationParams matches the production reply settings.
var DefaultGenerationParams = GenerationParams{
	Temperature:     0.7,
	MaxOutputTokens: 1000,
}

// Provider is the black-box completion capability. The system instruction
// travels separately from the ordered content segments.
type Provider interface {
	Complete(ctx context.Context, systemInstruction string, contents []string, params GenerationParams) (string, error)
}

// Client talks to an OpenAI-compatible completion endpoint through
// langchaingo. Gemini's compatibility endpoint is the default host.
type Client struct {
	model llms.Model
}

// NewClient builds the provider client. An empty token is rejected here so
// a misconfigured deployment fails at wiring time, not on the first chat.
func NewClient(baseURL, token, model string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("provider API key is not set")
	}
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider client: %w", err)
	}
	return &Client{model: llm}, nil
}

func (c *Client) Complete(ctx context.Context, systemInstruction string, contents []string, params GenerationParams) (string, error) {
	messages := make([]llms.MessageContent, 0, len(contents)+1)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemInstruction))
	for _, segment := range contents {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, segment))
	}

	resp, err := c.model.GenerateContent(ctx, messages,
		llms.WithTemperature(params.Temperature),
		llms.WithMaxTokens(params.MaxOutputTokens),
	)
	if err != nil {
		return "", ClassifyProviderError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Content, nil
}
