package anthropic

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// Generator is the prompt-to-text capability consumed by the workflow and
// the email resolver. Implementations may fail; callers are expected to fall
// back rather than propagate.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TextGenerator implements Generator on top of a Client with fixed model
// parameters.
type TextGenerator struct {
	client      Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewTextGenerator creates a TextGenerator.
func NewTextGenerator(client Client, model string, maxTokens int64, temperature float64) *TextGenerator {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &TextGenerator{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Generate sends a single user prompt and returns the trimmed text reply.
func (g *TextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	temp := g.temperature
	resp, err := g.client.CreateMessage(ctx, MessageRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.New("anthropic: empty completion")
	}
	return text, nil
}
