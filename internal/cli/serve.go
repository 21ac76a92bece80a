package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/platwave/unogpt/internal/api/handlers"
	"github.com/platwave/unogpt/internal/bot"
	"github.com/platwave/unogpt/internal/config"
	"github.com/platwave/unogpt/internal/database"
	"github.com/platwave/unogpt/internal/ingest"
	"github.com/platwave/unogpt/internal/jobs"
	"github.com/platwave/unogpt/internal/llm"
	"github.com/platwave/unogpt/internal/repository"
	"github.com/platwave/unogpt/internal/retriever"
	"github.com/platwave/unogpt/internal/server"
	"github.com/platwave/unogpt/internal/service"
	"github.com/platwave/unogpt/internal/storage"
	"github.com/platwave/unogpt/internal/telemetry"
	"github.com/platwave/unogpt/internal/vectorstore"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the unogpt API server and the background ingestion worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("UNOGPT_OPENAI_API_KEY is required")
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	store := vectorstore.NewPgStore(pool)
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
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		syncer = s3Client
	}

	historyRepo := repository.NewChatHistoryRepository(pool)
	jobRepo := repository.NewIngestJobRepository(pool)

	ingestSvc := service.NewIngestService(store, llmClient, syncer, cfg)
	worker := jobs.NewWorker(jobs.NewIngestWorker(jobRepo, ingestSvc), 10*time.Second)
	go worker.Start(ctx)
	log.Println("ingest worker started")

	if cfg.RebuildOnRun {
		if err := enqueueStartupRebuild(ctx, jobRepo); err != nil {
			return fmt.Errorf("failed to enqueue startup rebuild: %w", err)
		}
	}

	engine := bot.NewEngine(
		retriever.New(store, llmClient, retriever.Config{
			Collection: cfg.Collection,
			TopK:       cfg.RetrievalTopK,
			Threshold:  float32(cfg.RetrievalThreshold),
			KeepBeyond: cfg.RetrievalKeepBeyond,
		}),
		llmClient,
	)
	defaultEngine := bot.NewDefaultEngine(llmClient)

	router := server.NewRouter(server.RouterConfig{
		AnswerHandler:  handlers.NewAnswerHandler(engine, defaultEngine, historyRepo),
		IngestHandler:  handlers.NewIngestHandler(jobRepo),
		HistoryHandler: handlers.NewHistoryHandler(historyRepo),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	worker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func enqueueStartupRebuild(ctx context.Context, jobRepo *repository.IngestJobRepository) error {
	active, err := jobRepo.HasActive(ctx)
	if err != nil {
		return err
	}
	if active {
		log.Println("startup rebuild skipped: an ingestion run is already queued")
		return nil
	}

	job, err := jobRepo.Enqueue(ctx, string(ingest.PolicyRebuild))
	if err != nil {
		return err
	}
	log.Printf("startup rebuild enqueued (job %s)", job.ID)
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else {
		log.Printf("migrations: database is at version %d", version)
	}

	return nil
}
