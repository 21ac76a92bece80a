// Package retriever turns a question into a joined context string by
// querying a vector collection with threshold-based filtering.
package retriever

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/platwave/unogpt/internal/domain"
	"github.com/platwave/unogpt/internal/vectorstore"
)

// Separator joins surviving document texts in the returned context.
const Separator = "\n\n---\n\n"

// DefaultTopK is the number of nearest neighbors fetched per question.
const DefaultTopK = 8

// DefaultThreshold is the distance cutoff applied to retrieved neighbors.
const DefaultThreshold float32 = 1.0

// Embedder generates the query embedding.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Config controls retrieval.
type Config struct {
	Collection string
	TopK       int
	Threshold  float32

	// KeepBeyond keeps neighbors with distance >= Threshold, the policy
	// of the legacy deployment. The default keeps distance <= Threshold,
	// which is the correct direction for cosine distance where smaller
	// means more similar. Verify against the store's metric before
	// flipping this.
	KeepBeyond bool
}

// Retriever retrieves relevant context for a question.
type Retriever struct {
	store    vectorstore.Store
	embedder Embedder
	cfg      Config
}

func New(store vectorstore.Store, embedder Embedder, cfg Config) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Retriever{store: store, embedder: embedder, cfg: cfg}
}

// Retrieve embeds the question, queries the collection and returns the
// surviving neighbor texts joined with Separator. Embedding and query
// failures are logged and yield an empty context; callers must treat an
// empty context as "no relevant information". A missing collection is a
// configuration error and is returned as domain.ErrCollectionNotFound,
// distinct from "no relevant documents".
func (r *Retriever) Retrieve(ctx context.Context, question string) (string, error) {
	col, err := r.store.GetCollection(ctx, r.cfg.Collection)
	if err != nil {
		if errors.Is(err, domain.ErrCollectionNotFound) {
			return "", err
		}
		log.Printf("retriever: failed to resolve collection %s: %v", r.cfg.Collection, err)
		return "", nil
	}

	embedding, err := r.embedder.EmbedOne(ctx, question)
	if err != nil {
		log.Printf("retriever: failed to embed question: %v", err)
		return "", nil
	}

	matches, err := col.Query(ctx, embedding, r.cfg.TopK)
	if err != nil {
		log.Printf("retriever: query failed: %v", err)
		return "", nil
	}
	if len(matches) == 0 {
		return "", nil
	}

	kept := make([]string, 0, len(matches))
	for _, m := range matches {
		if r.keep(m.Distance) {
			kept = append(kept, m.Text)
		}
	}

	// Never return zero context when any neighbor exists.
	if len(kept) == 0 {
		for _, m := range matches {
			kept = append(kept, m.Text)
		}
	}

	return strings.Join(kept, Separator), nil
}

func (r *Retriever) keep(distance float32) bool {
	if r.cfg.KeepBeyond {
		return distance >= r.cfg.Threshold
	}
	return distance <= r.cfg.Threshold
}
