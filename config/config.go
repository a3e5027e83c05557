package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL           string
	Port            string
	ImportMaxBytes  int64
	ImportBatchSize int
	ImportTimeout   time.Duration
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	maxBytes, err := envInt64("IMPORT_MAX_BYTES", 20<<20)
	if err != nil {
		return nil, err
	}

	batchSize, err := envInt("IMPORT_BATCH_SIZE", 100)
	if err != nil {
		return nil, err
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("IMPORT_BATCH_SIZE must be positive, got %d", batchSize)
	}

	timeout, err := envDuration("IMPORT_TIMEOUT", 90*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		PGURL:           pgURL,
		Port:            port,
		ImportMaxBytes:  maxBytes,
		ImportBatchSize: batchSize,
		ImportTimeout:   timeout,
	}, nil
}

func envInt(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return v, nil
}

func envInt64(name string, def int64) (int64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return v, nil
}

func envDuration(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 90s): %w", name, err)
	}
	return v, nil
}
