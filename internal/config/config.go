package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Docstore connection
	DocstoreURL    string
	DocstoreAPIKey string

	// Auth
	DocnormAPIKey string

	// Normalization rule version stamped on migrated documents.
	NormVersion int

	// Migration worker pool
	WorkerCount       int
	MaxQueueSize      int
	MaxConcurrentDocs int
	MigrateBatchLimit int

	// Request limits
	MaxBodyBytes int64

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		DocstoreURL:    envOr("DOCSTORE_URL", "http://localhost:8080"),
		DocstoreAPIKey: os.Getenv("DOCSTORE_API_KEY"),

		DocnormAPIKey: os.Getenv("DOCNORM_API_KEY"),

		NormVersion: envInt("NORM_VERSION", 1),

		WorkerCount:       envInt("WORKER_COUNT", 2),
		MaxQueueSize:      envInt("MAX_QUEUE_SIZE", 50),
		MaxConcurrentDocs: envInt("MAX_CONCURRENT_DOCS", 8),
		MigrateBatchLimit: envInt("MIGRATE_BATCH_LIMIT", 500),

		MaxBodyBytes: envInt64("MAX_BODY_BYTES", 4194304), // 4MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.NormVersion <= 0 {
		cfg.NormVersion = 1
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxConcurrentDocs <= 0 {
		cfg.MaxConcurrentDocs = 8
	}
	if cfg.MigrateBatchLimit <= 0 {
		cfg.MigrateBatchLimit = 500
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 4194304
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DocstoreAPIKey == "" {
		return fmt.Errorf("DOCSTORE_API_KEY is required")
	}
	if c.DocnormAPIKey == "" {
		return fmt.Errorf("DOCNORM_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
