// Package app wires configuration into the running application: database
// pool, migrations, embedding chain, answer chain and the pipeline.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yucabot/yucabot/db"
	"github.com/yucabot/yucabot/internal/answer"
	"github.com/yucabot/yucabot/internal/config"
	"github.com/yucabot/yucabot/internal/embedding"
	"github.com/yucabot/yucabot/internal/extract"
	"github.com/yucabot/yucabot/internal/knowledge"
	"github.com/yucabot/yucabot/internal/log"
	"github.com/yucabot/yucabot/internal/pipeline"
)

// App holds the wired application components.
type App struct {
	Config   *config.Config
	Logger   log.Logger
	Pool     *pgxpool.Pool
	Pipeline *pipeline.Pipeline
	Registry *extract.Registry
}

// Setup builds the application from configuration. It connects to
// PostgreSQL, runs pending migrations, and assembles the embedding and
// generation chains from whichever providers have credentials.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	embedder, err := buildEmbedder(ctx, cfg, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	store := knowledge.New(knowledge.NewQueries(pool), cfg.EmbeddingDim, logger)
	chain := buildAnswerChain(ctx, cfg, logger)

	p := pipeline.New(embedder, store, chain, pipeline.Config{
		MaxContentChars:  cfg.MaxContentChars,
		ContextDocuments: cfg.ContextDocuments,
		MaxContextChars:  cfg.MaxContextChars,
		MatchThreshold:   cfg.MatchThreshold,
		MatchCount:       cfg.MatchCount,
	}, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Pool:     pool,
		Pipeline: p,
		Registry: extract.NewRegistry(),
	}, nil
}

// Close releases the application's resources.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// buildEmbedder assembles the embedding fallback chain from configured
// providers, HuggingFace first.
func buildEmbedder(ctx context.Context, cfg *config.Config, logger log.Logger) (embedding.Provider, error) {
	var providers []embedding.Provider

	if cfg.HuggingFaceAPIKey != "" {
		hf, err := embedding.NewHuggingFace(embedding.HuggingFaceConfig{
			APIKey:        cfg.HuggingFaceAPIKey,
			BaseURL:       cfg.EmbeddingBaseURL,
			Model:         cfg.EmbeddingModel,
			Dimension:     cfg.EmbeddingDim,
			MaxInputChars: cfg.EmbeddingMaxChars,
			Timeout:       cfg.EmbeddingTimeout,
			MaxRetries:    cfg.EmbeddingRetries,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("creating huggingface embedder: %w", err)
		}
		providers = append(providers, hf)
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := embedding.NewGemini(ctx, embedding.GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			Dimension: cfg.EmbeddingDim,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("creating gemini embedder: %w", err)
		}
		providers = append(providers, gemini)
	}

	return embedding.NewFallback(logger, providers...)
}

// buildAnswerChain assembles generation candidates in fallback order.
// Candidates whose credentials are missing are skipped; an empty chain is
// valid and degrades to the extractive fallback.
func buildAnswerChain(ctx context.Context, cfg *config.Config, logger log.Logger) *answer.Chain {
	var candidates []answer.Provider

	if cfg.HuggingFaceAPIKey != "" {
		candidates = append(candidates, answer.NewHuggingFace(answer.HuggingFaceConfig{
			APIKey:       cfg.HuggingFaceAPIKey,
			BaseURL:      cfg.EmbeddingBaseURL,
			Model:        cfg.GenerationModel,
			MaxNewTokens: cfg.MaxNewTokens,
			Temperature:  cfg.Temperature,
		}, logger))
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := answer.NewGemini(ctx, answer.GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
		}, logger)
		if err != nil {
			logger.Warn("skipping gemini generation candidate", "error", err)
		} else {
			candidates = append(candidates, gemini)
		}
	}

	if cfg.AnthropicAPIKey != "" {
		claude, err := answer.NewClaude(answer.ClaudeConfig{
			APIKey:      cfg.AnthropicAPIKey,
			Model:       cfg.ClaudeModel,
			Temperature: cfg.Temperature,
		}, logger)
		if err != nil {
			logger.Warn("skipping claude generation candidate", "error", err)
		} else {
			candidates = append(candidates, claude)
		}
	}

	return answer.NewChain(logger, candidates...)
}
