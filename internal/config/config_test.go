package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"CONFIG_FILE", "MAX_FILES", "MAX_FILE_MB", "MAX_TEXT_CHARS", "EXTRACT_CONCURRENCY", "CLASSIFY_TIMEOUT_SECONDS", "LLM_PROVIDER", "STAGING_MODE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxFiles != 100 {
		t.Fatalf("expected default max files 100, got %d", cfg.MaxFiles)
	}
	if cfg.MaxFileBytes() != 5*1024*1024 {
		t.Fatalf("expected 5MB file limit, got %d", cfg.MaxFileBytes())
	}
	if cfg.MaxTextChars != 30000 {
		t.Fatalf("expected default text budget 30000, got %d", cfg.MaxTextChars)
	}
	if cfg.ExtractConcurrency != 4 {
		t.Fatalf("expected default concurrency 4, got %d", cfg.ExtractConcurrency)
	}
	if cfg.ClassifyTimeout() != 45*time.Second {
		t.Fatalf("expected 45s classify timeout, got %s", cfg.ClassifyTimeout())
	}
	if cfg.LLMProvider != ProviderOpenAI || cfg.StagingMode != StagingMemory {
		t.Fatalf("unexpected provider/staging defaults %q/%q", cfg.LLMProvider, cfg.StagingMode)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MAX_FILES", "20")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("BREAKER_ENABLED", "false")
	t.Setenv("LLM_PROVIDER", "Ollama")
	t.Setenv("MAX_TEXT_CHARS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxFiles != 20 {
		t.Fatalf("expected max files override, got %d", cfg.MaxFiles)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
	if cfg.LLMProvider != ProviderOllama {
		t.Fatalf("expected provider to be lowercased, got %q", cfg.LLMProvider)
	}
	if cfg.MaxTextChars != 30000 {
		t.Fatalf("invalid numbers must fall back to default, got %d", cfg.MaxTextChars)
	}
}

func TestLoadAppliesYAMLOverlayBelowEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "MAX_FILES: 50\nSTAGING_MODE: disk\nOCR_RATE_LIMIT_RPS: 1.5\napi_port: \"9000\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_FILES", "")
	t.Setenv("STAGING_MODE", "")
	t.Setenv("OCR_RATE_LIMIT_RPS", "")
	t.Setenv("API_PORT", "7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxFiles != 50 || cfg.StagingMode != StagingDisk || cfg.OCRRateLimitRPS != 1.5 {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.APIPort != "7000" {
		t.Fatalf("environment must win over the file, got %q", cfg.APIPort)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LLM_PROVIDER", "bedrock")
	t.Setenv("STAGING_MODE", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
