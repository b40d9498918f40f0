// Package pipeline wires normalization, embedding, storage and answer
// synthesis into the two end-to-end operations: Ingest and Query.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/yucabot/yucabot/internal/embedding"
	"github.com/yucabot/yucabot/internal/knowledge"
	"github.com/yucabot/yucabot/internal/log"
	"github.com/yucabot/yucabot/internal/text"
)

const (
	// defaultMaxContentChars caps the content persisted per document.
	defaultMaxContentChars = 5000

	// defaultContextDocuments is how many top matches feed the prompt.
	defaultContextDocuments = 3

	// defaultMaxContextChars caps the joined context handed to synthesis.
	defaultMaxContextChars = 4500

	// defaultMatchThreshold is the minimum cosine similarity for a match.
	defaultMatchThreshold = 0.75

	// defaultMatchCount is how many matches the search returns at most.
	defaultMatchCount = 5
)

// Searcher is the subset of the knowledge store Query needs.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, threshold float64, limit int) ([]knowledge.Match, error)
}

// Inserter is the subset of the knowledge store Ingest needs.
type Inserter interface {
	Insert(ctx context.Context, content string, embedding []float32) (string, error)
}

// Synthesizer produces an answer from retrieved context.
type Synthesizer interface {
	Synthesize(ctx context.Context, contextText, question string) string
}

// Config tunes the orchestrators. Zero values fall back to defaults.
type Config struct {
	MaxContentChars  int
	ContextDocuments int
	MaxContextChars  int
	MatchThreshold   float64
	MatchCount       int
}

func (c *Config) applyDefaults() {
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = defaultMaxContentChars
	}
	if c.ContextDocuments <= 0 {
		c.ContextDocuments = defaultContextDocuments
	}
	if c.MaxContextChars <= 0 {
		c.MaxContextChars = defaultMaxContextChars
	}
	if c.MatchThreshold <= 0 {
		c.MatchThreshold = defaultMatchThreshold
	}
	if c.MatchCount <= 0 {
		c.MatchCount = defaultMatchCount
	}
}

// IngestResult reports what was stored.
type IngestResult struct {
	ID           string
	StoredLength int
	Dimensions   int
}

// Source identifies one retrieved document backing an answer.
type Source struct {
	ID         string  `json:"id"`
	Similarity float64 `json:"similarity"`
}

// QueryResult carries the synthesized answer and its sources.
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Store combines the two store roles so callers can pass one value.
type Store interface {
	Inserter
	Searcher
}

// Pipeline holds the wired stages.
type Pipeline struct {
	embedder embedding.Provider
	store    Store
	synth    Synthesizer
	cfg      Config
	logger   log.Logger
}

// New builds a Pipeline from its stages.
func New(embedder embedding.Provider, store Store, synth Synthesizer, cfg Config, logger log.Logger) *Pipeline {
	cfg.applyDefaults()
	if logger == nil {
		logger = log.NewNop()
	}
	return &Pipeline{
		embedder: embedder,
		store:    store,
		synth:    synth,
		cfg:      cfg,
		logger:   logger,
	}
}

// Ingest normalizes, embeds and persists one document. Empty input after
// normalization fails with embedding.ErrEmptyInput before any provider
// call. Stored content is capped independently of the (longer) text the
// embedder saw.
func (p *Pipeline) Ingest(ctx context.Context, rawText string) (IngestResult, error) {
	normalized := text.Normalize(rawText)
	if normalized == "" {
		return IngestResult{}, fmt.Errorf("ingest: %w", embedding.ErrEmptyInput)
	}

	vector, err := p.embedder.Embed(ctx, normalized)
	if err != nil {
		return IngestResult{}, fmt.Errorf("embedding document: %w", err)
	}

	content := text.Truncate(normalized, p.cfg.MaxContentChars)
	id, err := p.store.Insert(ctx, content, vector)
	if err != nil {
		return IngestResult{}, fmt.Errorf("storing document: %w", err)
	}

	p.logger.Info("document ingested",
		"id", id, "stored_length", len(content), "dimensions", len(vector))

	return IngestResult{ID: id, StoredLength: len(content), Dimensions: len(vector)}, nil
}

// Query answers a natural-language question from stored documents. Search
// failures surface as errors; zero matches is not a failure — synthesis
// receives empty context and returns the fixed no-answer message.
func (p *Pipeline) Query(ctx context.Context, question string) (QueryResult, error) {
	normalized := text.Normalize(question)
	if normalized == "" {
		return QueryResult{}, fmt.Errorf("query: %w", embedding.ErrEmptyInput)
	}

	vector, err := p.embedder.Embed(ctx, normalized)
	if err != nil {
		return QueryResult{}, fmt.Errorf("embedding question: %w", err)
	}

	matches, err := p.store.Search(ctx, vector, p.cfg.MatchThreshold, p.cfg.MatchCount)
	if err != nil {
		return QueryResult{}, fmt.Errorf("searching documents: %w", err)
	}

	contextText := p.buildContext(matches)
	answer := p.synth.Synthesize(ctx, contextText, normalized)

	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, Source{ID: m.ID, Similarity: m.Similarity})
	}

	p.logger.Info("query answered",
		"matches", len(matches), "answer_length", len(answer))

	return QueryResult{Answer: answer, Sources: sources}, nil
}

// buildContext joins the top matches into one capped prompt context.
func (p *Pipeline) buildContext(matches []knowledge.Match) string {
	top := matches
	if len(top) > p.cfg.ContextDocuments {
		top = top[:p.cfg.ContextDocuments]
	}

	parts := make([]string, 0, len(top))
	for _, m := range top {
		parts = append(parts, m.Content)
	}
	return text.Truncate(strings.Join(parts, "\n\n"), p.cfg.MaxContextChars)
}
