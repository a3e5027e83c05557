package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PG_URL", "postgres://localhost:5432/refdata")
	t.Setenv("PORT", "")
	t.Setenv("IMPORT_MAX_BYTES", "")
	t.Setenv("IMPORT_BATCH_SIZE", "")
	t.Setenv("IMPORT_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.ImportMaxBytes != 20<<20 {
		t.Errorf("ImportMaxBytes = %d, want %d", cfg.ImportMaxBytes, 20<<20)
	}
	if cfg.ImportBatchSize != 100 {
		t.Errorf("ImportBatchSize = %d, want 100", cfg.ImportBatchSize)
	}
	if cfg.ImportTimeout != 90*time.Second {
		t.Errorf("ImportTimeout = %v, want 90s", cfg.ImportTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PG_URL", "postgres://localhost:5432/refdata")
	t.Setenv("PORT", "9000")
	t.Setenv("IMPORT_MAX_BYTES", "1048576")
	t.Setenv("IMPORT_BATCH_SIZE", "250")
	t.Setenv("IMPORT_TIMEOUT", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" || cfg.ImportMaxBytes != 1048576 || cfg.ImportBatchSize != 250 || cfg.ImportTimeout != 2*time.Minute {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_MissingPGURL(t *testing.T) {
	t.Setenv("PG_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error without PG_URL")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("PG_URL", "postgres://localhost:5432/refdata")

	t.Setenv("IMPORT_BATCH_SIZE", "zero")
	if _, err := Load(); err == nil {
		t.Error("expected an error for non-numeric batch size")
	}

	t.Setenv("IMPORT_BATCH_SIZE", "0")
	if _, err := Load(); err == nil {
		t.Error("expected an error for zero batch size")
	}

	t.Setenv("IMPORT_BATCH_SIZE", "")
	t.Setenv("IMPORT_TIMEOUT", "ninety")
	if _, err := Load(); err == nil {
		t.Error("expected an error for unparseable timeout")
	}
}
