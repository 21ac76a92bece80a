// Package service composes the ingestion pipeline from its collaborators.
package service

import (
	"context"
	"fmt"
	"log"

	"github.com/platwave/unogpt/internal/chunker"
	"github.com/platwave/unogpt/internal/config"
	"github.com/platwave/unogpt/internal/ingest"
	"github.com/platwave/unogpt/internal/loader"
	"github.com/platwave/unogpt/internal/telemetry"
	"github.com/platwave/unogpt/internal/vectorstore"
)

// SourceSyncer mirrors remote source documents into a local directory before
// a run. Optional; nil means the data directory is used as-is.
type SourceSyncer interface {
	SyncToDir(ctx context.Context, dir string) (int, error)
}

// IngestService builds and runs ingestion pipelines. It implements the job
// worker's PipelineRunner, so queued jobs and direct CLI runs share one path.
type IngestService struct {
	store    vectorstore.Store
	embedder ingest.Embedder
	syncer   SourceSyncer
	cfg      *config.Config
}

func NewIngestService(store vectorstore.Store, embedder ingest.Embedder, syncer SourceSyncer, cfg *config.Config) *IngestService {
	return &IngestService{
		store:    store,
		embedder: embedder,
		syncer:   syncer,
		cfg:      cfg,
	}
}

// Run executes one full ingestion under the given collection policy and
// returns the number of records written.
func (s *IngestService) Run(ctx context.Context, policy string) (int, error) {
	parsed, err := ingest.ParsePolicy(policy)
	if err != nil {
		return 0, err
	}

	ctx, span := telemetry.StartSpan(ctx, "ingest.run", telemetry.SpanAttributes{
		Collection: s.cfg.Collection,
		Policy:     string(parsed),
		Operation:  "ingest",
	})
	defer span.End()

	if s.syncer != nil {
		synced, err := s.syncer.SyncToDir(ctx, s.cfg.DataPath)
		if err != nil {
			span.SetError(err)
			return 0, fmt.Errorf("failed to sync source documents: %w", err)
		}
		log.Printf("ingest: synced %d source documents to %s", synced, s.cfg.DataPath)
	}

	pipeline := ingest.NewPipeline(
		s.newLoader(),
		s.newChunker(),
		ingest.NewWriter(s.store, s.embedder, s.cfg.Collection, ingest.WithBatchSize(s.cfg.UpsertBatch)),
		parsed,
	)

	written, err := pipeline.Run(ctx)
	if err != nil {
		span.SetError(err)
		return written, err
	}
	return written, nil
}

func (s *IngestService) newLoader() *loader.Loader {
	var opts []loader.Option
	if s.cfg.ExtractEntities {
		opts = append(opts, loader.WithEntityExtraction())
	}
	return loader.New(s.cfg.DataPath, opts...)
}

func (s *IngestService) newChunker() ingest.Chunker {
	switch s.cfg.ChunkStrategy {
	case "recursive":
		return chunker.NewRecursiveChunker(chunker.RecursiveConfig{
			MaxChars: s.cfg.ChunkMaxChars,
			MinChars: s.cfg.ChunkMaxChars / 5,
			Overlap:  s.cfg.ChunkOverlap,
		})
	default:
		return chunker.NewSentenceChunker(s.cfg.ChunkMaxChars, chunker.NewRegexSegmenter())
	}
}
