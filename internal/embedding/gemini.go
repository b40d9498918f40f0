package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/yucabot/yucabot/internal/log"
	"github.com/yucabot/yucabot/internal/text"
)

// GeminiConfig configures the Gemini embedding provider.
type GeminiConfig struct {
	APIKey        string
	Model         string // e.g. gemini-embedding-001
	Dimension     int
	MaxInputChars int // 0 = defaultMaxInputChars
}

// Gemini generates embeddings through the Google GenAI SDK. It serves as
// the fallback when the HuggingFace provider is unconfigured or exhausted.
type Gemini struct {
	cfg    GeminiConfig
	client *genai.Client
	logger log.Logger
}

// NewGemini creates the provider. Returns ErrNotConfigured when no API key
// is present.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger log.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrNotConfigured)
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("target dimension must be positive, got %d", cfg.Dimension)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-embedding-001"
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = defaultMaxInputChars
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
func (g *Gemini) Name() string { return "gemini" }

// Embed implements Provider. The SDK is asked for the target
// dimensionality directly; the result is reconciled anyway so the
// invariant holds even if the model ignores the hint.
func (g *Gemini) Embed(ctx context.Context, input string) ([]float32, error) {
	cleaned := text.Normalize(input)
	if cleaned == "" {
		return nil, ErrEmptyInput
	}
	truncated := text.Truncate(cleaned, g.cfg.MaxInputChars)

	outputDim := int32(g.cfg.Dimension)
	result, err := g.client.Models.EmbedContent(ctx, g.cfg.Model,
		[]*genai.Content{genai.NewContentFromText(truncated, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &outputDim},
	)
	if err != nil {
		return nil, &ProviderError{Provider: g.Name(), Message: err.Error()}
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, &ProviderError{Provider: g.Name(), Message: "no embedding returned"}
	}

	return ReconcileDimension(result.Embeddings[0].Values, g.cfg.Dimension), nil
}
