package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/yucabot/yucabot/internal/log"
)

// Fallback tries providers in order until one returns a vector. Provider
// selection happens once at startup; callers see a single Provider.
type Fallback struct {
	providers []Provider
	logger    log.Logger
}

// NewFallback builds the ordered chain. At least one provider is required.
func NewFallback(logger log.Logger, providers ...Provider) (*Fallback, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: no embedding providers available", ErrNotConfigured)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Fallback{providers: providers, logger: logger}, nil
}

// Name implements Provider.
func (f *Fallback) Name() string { return "fallback" }

// Embed implements Provider. Empty input fails immediately; it would fail
// identically on every candidate.
func (f *Fallback) Embed(ctx context.Context, input string) ([]float32, error) {
	var lastErr error
	for _, p := range f.providers {
		vector, err := p.Embed(ctx, input)
		if err == nil {
			return vector, nil
		}
		if errors.Is(err, ErrEmptyInput) {
			return nil, err
		}
		f.logger.Warn("embedding provider failed, trying next",
			"provider", p.Name(), "error", err)
		lastErr = err
	}
	return nil, fmt.Errorf("all embedding providers failed: %w", lastErr)
}
