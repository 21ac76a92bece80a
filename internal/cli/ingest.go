package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/platwave/unogpt/internal/config"
	"github.com/platwave/unogpt/internal/database"
	"github.com/platwave/unogpt/internal/llm"
	"github.com/platwave/unogpt/internal/service"
	"github.com/platwave/unogpt/internal/storage"
	"github.com/platwave/unogpt/internal/vectorstore"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion pass",
		Long:  "Load source documents, chunk them and write embeddings into the vector collection",
		RunE:  runIngest,
	}

	cmd.Flags().String("policy", "reuse", "Collection policy: reuse or rebuild")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("UNOGPT_OPENAI_API_KEY is required")
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	llmClient := llm.NewClientWithConfig(llm.Config{
		APIKey:          cfg.OpenAIAPIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		EmbeddingModel:  cfg.EmbeddingModel,
		CompletionModel: cfg.CompletionModel,
		Temperature:     float32(cfg.Temperature),
		MaxTokens:       cfg.MaxTokens,
	})

	var syncer service.SourceSyncer
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		syncer = s3Client
	}

	policy, _ := cmd.Flags().GetString("policy")

	svc := service.NewIngestService(vectorstore.NewPgStore(pool), llmClient, syncer, cfg)
	written, err := svc.Run(ctx, policy)
	if err != nil {
		return err
	}

	log.Printf("ingestion complete: %d records written to collection %s", written, cfg.Collection)
	return nil
}
