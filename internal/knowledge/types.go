package knowledge

import "time"

// Document is one stored knowledge record: normalized, length-capped text
// plus its embedding. Records are immutable once written — there is no
// update or delete path.
type Document struct {
	ID        string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// Match is a single similarity-search result. Ephemeral — produced per
// query, never persisted.
type Match struct {
	ID         string
	Content    string
	Similarity float64
}
