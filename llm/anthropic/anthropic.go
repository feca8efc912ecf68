// Package anthropic implements llm.Generator on the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Config configures the Claude-backed generator.
type Config struct {
	// APIKey is the Anthropic API key.
	APIKey string

	// Model is the Claude model to use. Defaults to claude-sonnet-4-20250514.
	Model string

	// MaxTokens is the maximum response tokens. Defaults to 1024.
	MaxTokens int64
}

// Generator calls the Anthropic Messages API with a single user message and
// returns the concatenated text blocks of the response.
type Generator struct {
	client    *sdk.Client
	model     string
	maxTokens int64
}

// New creates a Generator from config.
func New(cfg Config) *Generator {
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	client := sdk.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Generator{
		client:    &client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Generate sends prompt as a user message and returns the response text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}
