// Package knowledge persists (content, vector) pairs in PostgreSQL +
// pgvector and performs similarity search against them.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"

	"github.com/yucabot/yucabot/internal/log"
)

var (
	// ErrDimensionMismatch indicates an embedding whose length differs from
	// the store's target dimension. The writer reconciles dimensions before
	// calling Insert, so hitting this is a programming defect, not a data
	// condition; malformed vectors are never sent to the database.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrSearchNotConfigured indicates the match_knowledge_base function is
	// missing from the backing database.
	ErrSearchNotConfigured = errors.New("similarity search is not provisioned: run the database migrations to create the match_knowledge_base function")
)

const (
	// insertMaxRetries is how many times a transient insert failure is
	// retried after the first attempt.
	insertMaxRetries = 2

	// insertBackoffBase is the initial retry delay for inserts.
	insertBackoffBase = 250 * time.Millisecond
)

// Querier defines the database operations Store needs. Interfaces are
// defined by the consumer, so tests can substitute a mock for the
// pgx-backed Queries.
type Querier interface {
	InsertDocument(ctx context.Context, arg InsertDocumentParams) error
	MatchDocuments(ctx context.Context, arg MatchDocumentsParams) ([]MatchRow, error)
}

// Store writes and searches knowledge documents.
//
// Store is safe for concurrent use by multiple goroutines; it holds no
// per-request state beyond the injected querier.
type Store struct {
	queries   Querier
	dim       int
	logger    log.Logger
	retryBase time.Duration // insert retry base delay; tests shrink it
}

// New creates a Store with the given querier and target vector dimension.
func New(querier Querier, dim int, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{queries: querier, dim: dim, logger: logger, retryBase: insertBackoffBase}
}

// Insert stores one (content, embedding) pair and returns the generated
// document ID. The embedding length is validated before any network call.
//
// Transient failures (connection loss, query cancellation, the
// permission-timing race that shows up as insufficient_privilege right
// after provisioning) are retried up to insertMaxRetries times; permanent
// errors surface immediately with the store's message attached. A failed
// insert leaves no record — each insert is independent and at-most-once
// from the caller's perspective.
func (s *Store) Insert(ctx context.Context, content string, embedding []float32) (string, error) {
	if len(embedding) != s.dim {
		return "", fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(embedding), s.dim)
	}

	vector := pgvector.NewVector(embedding)
	arg := InsertDocumentParams{
		ID:        uuid.NewString(),
		Content:   content,
		Embedding: &vector,
		CreatedAt: pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	}

	attempt := 0
	op := func() error {
		attempt++
		err := s.queries.InsertDocument(ctx, arg)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return backoff.Permanent(fmt.Errorf("insert failed: %w", err))
		}
		s.logger.Warn("transient insert failure, retrying", "attempt", attempt, "error", err)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryBase
	bo.RandomizationFactor = 0

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, insertMaxRetries), ctx)); err != nil {
		return "", err
	}

	s.logger.Debug("stored document", "id", arg.ID, "content_length", len(content))
	return arg.ID, nil
}

// Search returns documents most similar to the query embedding, highest
// similarity first, as ordered by match_knowledge_base. No rows clearing
// the threshold yields an empty slice, not an error.
func (s *Store) Search(ctx context.Context, embedding []float32, threshold float64, limit int) ([]Match, error) {
	if len(embedding) != s.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(embedding), s.dim)
	}
	if limit < 1 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	vector := pgvector.NewVector(embedding)
	rows, err := s.queries.MatchDocuments(ctx, MatchDocumentsParams{
		QueryEmbedding: &vector,
		MatchThreshold: threshold,
		MatchCount:     int32(limit), // #nosec G115 -- bounded by config.MaxMatchCount
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedFunction {
			return nil, fmt.Errorf("%w: %s", ErrSearchNotConfigured, pgErr.Message)
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, Match{
			ID:         row.ID,
			Content:    row.Content,
			Similarity: row.Similarity,
		})
	}
	return matches, nil
}

// Dimension returns the store's target vector dimension.
func (s *Store) Dimension() int { return s.dim }

// isTransient reports whether a database error is worth retrying.
// PostgreSQL errors retry only on a curated set of codes; anything that is
// not a PgError is a network-level failure (reset, refused, timeout) and
// is treated as transient.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return true
	}

	switch pgErr.Code {
	case pgerrcode.QueryCanceled,
		pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown,
		pgerrcode.CannotConnectNow,
		pgerrcode.InsufficientPrivilege:
		return true
	}
	return pgerrcode.IsConnectionException(pgErr.Code)
}
