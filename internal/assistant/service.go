// Package assistant relays single prompts to the hosted Gemini endpoint. No
// conversation history is sent: each request is independent even though the UI
// renders a running transcript.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const (
	model           = "gemini-2.0-flash"
	temperature     = 0.7
	maxOutputTokens = 2048
)

// ErrNotConfigured distinguishes a missing upstream credential from upstream
// failures; the handler maps it to a server configuration error.
var ErrNotConfigured = errors.New("gemini api key not configured")

// Generator produces a model response for a single free-text prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiGenerator{client: client}, nil
}

// Generate sends the prompt with the fixed sampling configuration and returns
// the first candidate's text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	temp := float32(temperature)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errors.New("no candidates returned")
	}
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text, nil
		}
	}
	return "", errors.New("candidate contained no text")
}
