package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Ingestion source: local directory of *.pdf / *.json files, or an
	// S3-compatible bucket when the S3_* settings are present.
	DataPath    string `envconfig:"DATA_PATH" default:"data"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"unogpt-sources"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Vector collection settings.
	Collection    string `envconfig:"COLLECTION" default:"unogpt"`
	RebuildOnRun  bool   `envconfig:"REBUILD_ON_RUN" default:"false"`
	UpsertBatch   int    `envconfig:"UPSERT_BATCH" default:"200"`
	ChunkMaxChars int    `envconfig:"CHUNK_MAX_CHARS" default:"1000"`
	ChunkOverlap  int    `envconfig:"CHUNK_OVERLAP" default:"100"`
	ChunkStrategy string `envconfig:"CHUNK_STRATEGY" default:"sentence"`

	// Retrieval settings. KeepBeyond selects the legacy comparison that
	// keeps neighbors with distance >= threshold; the default keeps
	// distance <= threshold, which matches cosine-distance semantics.
	RetrievalTopK       int     `envconfig:"RETRIEVAL_TOP_K" default:"8"`
	RetrievalThreshold  float64 `envconfig:"RETRIEVAL_THRESHOLD" default:"1.0"`
	RetrievalKeepBeyond bool    `envconfig:"RETRIEVAL_KEEP_BEYOND" default:"false"`

	// Model provider. BaseURL allows any OpenAI-compatible endpoint
	// (e.g. Fireworks).
	OpenAIAPIKey    string  `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL   string  `envconfig:"OPENAI_BASE_URL"`
	EmbeddingModel  string  `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	CompletionModel string  `envconfig:"COMPLETION_MODEL" default:"gpt-4o-mini"`
	Temperature     float64 `envconfig:"TEMPERATURE" default:"0.2"`
	MaxTokens       int     `envconfig:"MAX_TOKENS" default:"400"`

	ExtractEntities bool `envconfig:"EXTRACT_ENTITIES" default:"false"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("UNOGPT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
