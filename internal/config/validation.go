package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates that no embedding credential is configured.
	// The embedding client cannot start without one; this is the fatal
	// configuration error surfaced to callers, never retried.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidDimension indicates the target embedding dimension is out of range.
	ErrInvalidDimension = errors.New("invalid embedding dimension")

	// ErrInvalidThreshold indicates the similarity threshold is out of range.
	ErrInvalidThreshold = errors.New("invalid match threshold")

	// ErrInvalidMatchCount indicates the search result limit is out of range.
	ErrInvalidMatchCount = errors.New("invalid match count")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates an unsupported sslmode value.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

const (
	// MaxEmbeddingDimension bounds the vector(D) column; pgvector supports
	// up to 16000 dimensions but anything beyond 4096 is a misconfiguration
	// for the models in use.
	MaxEmbeddingDimension = 4096

	// MaxMatchCount bounds how many rows a single search may request.
	MaxMatchCount = 50
)

var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Validate checks the configuration for values that would fail at first
// use. It reports the first problem found as a wrapped sentinel error.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// At least one embedding credential must exist: HuggingFace primary or
	// Gemini fallback. Generation credentials are optional; the synthesis
	// chain degrades to its extractive fallback without them.
	if c.HuggingFaceAPIKey == "" && c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: set HUGGINGFACE_API_KEY (or GEMINI_API_KEY for the fallback embedder)", ErrMissingAPIKey)
	}

	if c.EmbeddingDim < 1 || c.EmbeddingDim > MaxEmbeddingDimension {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidDimension, c.EmbeddingDim, MaxEmbeddingDimension)
	}

	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("%w: %g (must be within [0, 1])", ErrInvalidThreshold, c.MatchThreshold)
	}

	if c.MatchCount < 1 || c.MatchCount > MaxMatchCount {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidMatchCount, c.MatchCount, MaxMatchCount)
	}

	if c.PostgresHost == "" {
		return ErrInvalidPostgresHost
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}

	if c.PostgresDBName == "" {
		return ErrInvalidPostgresDBName
	}

	if !validSSLModes[c.PostgresSSLMode] {
		return fmt.Errorf("%w: %q", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}

	return nil
}
