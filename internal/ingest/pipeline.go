package ingest

import (
	"context"
	"log"

	"github.com/platwave/unogpt/internal/chunker"
	"github.com/platwave/unogpt/internal/domain"
)

// DocumentSource produces normalized documents from the configured source.
type DocumentSource interface {
	Load() ([]domain.Document, error)
}

// Chunker splits documents into retrieval-sized chunks.
type Chunker interface {
	Chunk(docs []domain.Document) []domain.Chunk
}

// Pipeline runs one full ingestion: load, chunk, embed and persist. It is
// synchronous and sequential; serializing Rebuild runs is the caller's
// responsibility (the jobs worker runs one pipeline at a time).
type Pipeline struct {
	source  DocumentSource
	chunker Chunker
	writer  *Writer
	policy  Policy
}

func NewPipeline(source DocumentSource, chunker Chunker, writer *Writer, policy Policy) *Pipeline {
	return &Pipeline{
		source:  source,
		chunker: chunker,
		writer:  writer,
		policy:  policy,
	}
}

// Run executes the pipeline and returns the number of records written.
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	docs, err := p.source.Load()
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, domain.ErrNoDocuments
	}

	// Group by source category so documents are chunked in a deterministic
	// order regardless of how the loader walked the source directory.
	docs = chunker.FlattenTree(chunker.OrganizeTree(docs))

	chunks := p.chunker.Chunk(docs)
	log.Printf("ingest: split %d documents into %d chunks", len(docs), len(chunks))

	return p.writer.Write(ctx, chunks, p.policy)
}
