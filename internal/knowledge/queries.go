package knowledge

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// InsertDocumentParams are the column values for one knowledge_base row.
type InsertDocumentParams struct {
	ID        string
	Content   string
	Embedding *pgvector.Vector
	CreatedAt pgtype.Timestamptz
}

// MatchDocumentsParams drive one call of the match_knowledge_base function.
type MatchDocumentsParams struct {
	QueryEmbedding *pgvector.Vector
	MatchThreshold float64
	MatchCount     int32
}

// MatchRow is one row returned by match_knowledge_base.
type MatchRow struct {
	ID         string
	Content    string
	Similarity float64
}

const insertDocument = `
INSERT INTO knowledge_base (id, content, embedding, created_at)
VALUES ($1, $2, $3, $4)
`

// match_knowledge_base is the similarity-search function provisioned by
// the migrations; it orders by cosine similarity and filters below the
// threshold server-side.
const matchDocuments = `
SELECT id, content, similarity
FROM match_knowledge_base($1, $2, $3)
`

// Queries is the pgx-backed implementation of the Querier interface.
// The pool is created once at process start and shared by all requests;
// pgx pools are safe for concurrent use.
type Queries struct {
	pool *pgxpool.Pool
}

// NewQueries wraps a connection pool.
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

// InsertDocument inserts one document row.
func (q *Queries) InsertDocument(ctx context.Context, arg InsertDocumentParams) error {
	_, err := q.pool.Exec(ctx, insertDocument, arg.ID, arg.Content, arg.Embedding, arg.CreatedAt)
	return err
}

// MatchDocuments runs the similarity-search function.
func (q *Queries) MatchDocuments(ctx context.Context, arg MatchDocumentsParams) ([]MatchRow, error) {
	rows, err := q.pool.Query(ctx, matchDocuments, arg.QueryEmbedding, arg.MatchThreshold, arg.MatchCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MatchRow
	for rows.Next() {
		var row MatchRow
		if err := rows.Scan(&row.ID, &row.Content, &row.Similarity); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
