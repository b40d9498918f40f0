package answer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yucabot/yucabot/internal/log"
)

// GeminiConfig configures the Gemini generation candidate.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int32
}

// Gemini generates answers through the Google GenAI SDK.
type Gemini struct {
	cfg    GeminiConfig
	client *genai.Client
	logger log.Logger
}

// NewGemini creates the candidate. Fails when no API key is present so
// wiring can skip it.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger log.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini generation credential not configured")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if logger == nil {
		logger = log.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Gemini{cfg: cfg, client: client, logger: logger}, nil
}

// Name implements Provider.
func (g *Gemini) Name() string { return "gemini/" + g.cfg.Model }

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.cfg.Temperature),
	}
	if g.cfg.MaxTokens > 0 {
		config.MaxOutputTokens = g.cfg.MaxTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	// Iterate candidates until one yields non-empty text.
	var out strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					out.WriteString(part.Text)
				}
			}
			if out.Len() > 0 {
				break
			}
		}
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("no text generated by %s", g.cfg.Model)
	}
	return out.String(), nil
}
