package classify

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Completer is the narrow LLM surface the engine needs: one prompt in, one
// raw completion out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GeminiClient completes prompts against the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient builds a Gemini-backed completer.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Complete sends one prompt and returns the raw text response. Temperature
// stays low so labels are reproducible.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.1),
	})
	if err != nil {
		return "", fmt.Errorf("generating completion: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty completion")
	}
	return text, nil
}
