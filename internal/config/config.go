// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (./yucabot.yaml or ~/.yucabot/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Embedding: provider credential, model, target dimension, retry policy
//   - Generation: candidate models for answer synthesis (HuggingFace, Gemini, Claude)
//   - Search: similarity threshold, match count, context assembly caps
//   - Storage: PostgreSQL connection (see storage.go)
//
// Security: credentials are never logged. Validation lives in validation.go
// with sentinel errors for Go-idiomatic errors.Is() checks.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultEmbeddingModel is the HuggingFace embedding model. It outputs
	// 1024-dimensional vectors, matching the knowledge_base schema.
	DefaultEmbeddingModel = "mixedbread-ai/mxbai-embed-large-v1"

	// DefaultEmbeddingDimension is the fixed target vector dimension.
	// Every stored and queried vector is reconciled to this length.
	DefaultEmbeddingDimension = 1024

	// DefaultGenerationModel is the primary answer-synthesis model.
	DefaultGenerationModel = "mistralai/Mistral-7B-Instruct-v0.2"

	// DefaultGeminiModel is the first fallback generation model.
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultClaudeModel is the second fallback generation model.
	DefaultClaudeModel = "claude-sonnet-4-20250514"
)

// Config stores application configuration.
type Config struct {
	// Embedding provider
	HuggingFaceAPIKey string        `mapstructure:"huggingface_api_key"`
	EmbeddingBaseURL  string        `mapstructure:"embedding_base_url"`
	EmbeddingModel    string        `mapstructure:"embedding_model"`
	EmbeddingDim      int           `mapstructure:"embedding_dimension"`
	EmbeddingMaxChars int           `mapstructure:"embedding_max_chars"`
	EmbeddingTimeout  time.Duration `mapstructure:"embedding_timeout"`
	EmbeddingRetries  int           `mapstructure:"embedding_retries"`

	// Generation providers, tried in order by the synthesis chain
	GenerationModel string  `mapstructure:"generation_model"`
	GeminiAPIKey    string  `mapstructure:"gemini_api_key"`
	GeminiModel     string  `mapstructure:"gemini_model"`
	AnthropicAPIKey string  `mapstructure:"anthropic_api_key"`
	ClaudeModel     string  `mapstructure:"claude_model"`
	MaxNewTokens    int     `mapstructure:"max_new_tokens"`
	Temperature     float32 `mapstructure:"temperature"`

	// Search and context assembly
	MatchThreshold   float64 `mapstructure:"match_threshold"`
	MatchCount       int     `mapstructure:"match_count"`
	ContextDocuments int     `mapstructure:"context_documents"`
	MaxContextChars  int     `mapstructure:"max_context_chars"`
	MaxContentChars  int     `mapstructure:"max_content_chars"`

	// PostgreSQL connection
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDBName   string `mapstructure:"postgres_dbname"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`

	// HTTP server
	ServerAddr     string `mapstructure:"server_addr"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// Load reads configuration from file and environment, applies defaults,
// and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("yucabot")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".yucabot"))
	}

	// A missing config file is fine; defaults plus env cover everything.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("YUCABOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials keep their conventional unprefixed names.
	bindCredentialEnv(v, "huggingface_api_key", "HUGGINGFACE_API_KEY", "HF_API_KEY")
	bindCredentialEnv(v, "gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	bindCredentialEnv(v, "anthropic_api_key", "ANTHROPIC_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("embedding_base_url", "https://api-inference.huggingface.co")
	v.SetDefault("embedding_model", DefaultEmbeddingModel)
	v.SetDefault("embedding_dimension", DefaultEmbeddingDimension)
	v.SetDefault("embedding_max_chars", 8000)
	v.SetDefault("embedding_timeout", 20*time.Second)
	v.SetDefault("embedding_retries", 2)

	v.SetDefault("generation_model", DefaultGenerationModel)
	v.SetDefault("gemini_model", DefaultGeminiModel)
	v.SetDefault("claude_model", DefaultClaudeModel)
	v.SetDefault("max_new_tokens", 200)
	v.SetDefault("temperature", 0.2)

	v.SetDefault("match_threshold", 0.75)
	v.SetDefault("match_count", 5)
	v.SetDefault("context_documents", 3)
	v.SetDefault("max_context_chars", 4500)
	v.SetDefault("max_content_chars", 5000)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "yucabot")
	v.SetDefault("postgres_dbname", "yucabot")
	v.SetDefault("postgres_sslmode", "disable")

	v.SetDefault("server_addr", "127.0.0.1:8080")
	v.SetDefault("max_upload_bytes", int64(16<<20))
}

// bindCredentialEnv binds the first set environment variable to key.
func bindCredentialEnv(v *viper.Viper, key string, names ...string) {
	for _, name := range names {
		if os.Getenv(name) != "" {
			v.Set(key, os.Getenv(name))
			return
		}
	}
}
