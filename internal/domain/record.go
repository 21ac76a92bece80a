package domain

// Record is one persisted entry of a vector collection: a chunk's text plus
// its embedding, keyed by an identifier generated at write time. IDs are
// never reused; Text is never empty.
type Record struct {
	ID        string
	Text      string
	Metadata  Metadata
	Embedding []float32
}

// QueryMatch is one nearest-neighbor result returned by a collection query.
// Distance follows the store's metric convention; for cosine distance a
// smaller value means a closer match.
type QueryMatch struct {
	Text     string
	Metadata Metadata
	Distance float32
}
