// Package embedding generates fixed-dimension vector embeddings for text.
//
// Providers are a small closed set behind one interface, selected by
// configuration at startup. The HuggingFace provider is the primary; the
// Gemini provider serves as fallback when the primary is unconfigured or
// exhausted. Every provider returns vectors reconciled to the target
// dimension, so callers never see a mismatched length.
package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for the embedding boundary.
var (
	// ErrNotConfigured indicates no provider credential is available.
	ErrNotConfigured = errors.New("embedding provider not configured")

	// ErrEmptyInput indicates the input normalizes to nothing.
	ErrEmptyInput = errors.New("cannot generate embedding for empty text")
)

// ProviderError reports a failed provider call after all retries.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

// Provider generates embeddings for text.
//
// Implementations are safe for concurrent use and hold no per-request
// state. Embed returns a vector of exactly the provider's configured
// target dimension.
type Provider interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ReconcileDimension forces v to exactly dim elements: longer vectors are
// truncated, shorter ones right-padded with zeros. Non-finite values are
// replaced with zero. This is an intentional lossy normalization — the
// stored dimension is fixed regardless of upstream model drift.
func ReconcileDimension(v []float32, dim int) []float32 {
	result := make([]float32, dim)
	limit := min(len(v), dim)
	for i := 0; i < limit; i++ {
		f := float64(v[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		result[i] = v[i]
	}
	return result
}

// meanPool averages per-token row vectors into one vector. Row length is
// taken from the first row; shorter rows contribute zeros for the missing
// tail.
func meanPool(rows [][]float32) []float32 {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	width := len(rows[0])
	acc := make([]float64, width)
	for _, row := range rows {
		for i := 0; i < width && i < len(row); i++ {
			acc[i] += float64(row[i])
		}
	}
	pooled := make([]float32, width)
	for i, sum := range acc {
		pooled[i] = float32(sum / float64(len(rows)))
	}
	return pooled
}

// wrappedEmbedding matches object-shaped provider responses that expose
// the vector under a well-known field.
type wrappedEmbedding struct {
	Embedding  json.RawMessage `json:"embedding"`
	Data       json.RawMessage `json:"data"`
	Embeddings json.RawMessage `json:"embeddings"`
}

// decodeVector normalizes the three response shapes providers are known to
// return — flat vector, per-token matrix, wrapped object — into one flat
// vector. Shapes are tried in a fixed order; anything else fails loudly.
func decodeVector(data []byte) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(data, &flat); err == nil {
		if len(flat) == 0 {
			return nil, errors.New("empty embedding vector in response")
		}
		return flat, nil
	}

	var matrix [][]float32
	if err := json.Unmarshal(data, &matrix); err == nil {
		pooled := meanPool(matrix)
		if len(pooled) == 0 {
			return nil, errors.New("empty embedding matrix in response")
		}
		return pooled, nil
	}

	var wrapped wrappedEmbedding
	if err := json.Unmarshal(data, &wrapped); err == nil {
		for _, raw := range []json.RawMessage{wrapped.Embedding, wrapped.Data, wrapped.Embeddings} {
			if len(raw) > 0 && string(raw) != "null" {
				return decodeVector(raw)
			}
		}
	}

	return nil, errors.New("unrecognized embedding response shape")
}
