package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/yucabot/yucabot/internal/log"
)

// ClaudeConfig configures the Claude generation candidate.
type ClaudeConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Claude generates answers through the Anthropic Messages API.
type Claude struct {
	cfg    ClaudeConfig
	client anthropic.Client
	logger log.Logger
}

// NewClaude creates the candidate. Fails when no API key is present so
// wiring can skip it.
func NewClaude(cfg ClaudeConfig, logger log.Logger) (*Claude, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic generation credential not configured")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if logger == nil {
		logger = log.NewNop()
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Claude{cfg: cfg, client: client, logger: logger}, nil
}

// Name implements Provider.
func (c *Claude) Name() string { return "claude/" + c.cfg.Model }

// Generate implements Provider.
func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.cfg.Temperature))
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude generation failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("no text generated by %s", c.cfg.Model)
	}
	return out.String(), nil
}
