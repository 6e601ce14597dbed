package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	StagingMemory = "memory"
	StagingDisk   = "disk"
)

type Config struct {
	APIPort   string
	LogLevel  string
	LogFormat string

	LLMProvider       string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIOCRModel    string
	OpenAIPlanModel   string
	OllamaURL         string
	OllamaPlanModel   string
	OllamaVisionModel string

	MaxFiles               int
	MaxFileMB              int
	MaxTextChars           int
	ExtractConcurrency     int
	ClassifyTimeoutSeconds int

	OCRRateLimitRPS   float64
	OCRRateLimitBurst int

	StagingMode string
	StagingDir  string
	DataDir     string

	PostgresDSN string

	NATSURL           string
	NATSSubjectPrefix string

	APIRateLimitRPS       float64
	APIRateLimitBurst     int
	APIMaxInFlight        int
	APIBackpressureWaitMS int

	BreakerEnabled bool
}

// Load reads configuration from the environment. When CONFIG_FILE names a
// YAML file of KEY: value pairs, its values fill in keys the environment
// leaves unset.
func Load() (Config, error) {
	l := loader{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		overlay, err := readOverlay(path)
		if err != nil {
			return Config{}, err
		}
		l.overlay = overlay
	}

	cfg := Config{
		APIPort:   l.mustEnv("API_PORT", "8080"),
		LogLevel:  l.mustEnv("LOG_LEVEL", "info"),
		LogFormat: l.mustEnv("LOG_FORMAT", "json"),

		LLMProvider:       strings.ToLower(l.mustEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:      l.mustEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     l.mustEnv("OPENAI_BASE_URL", ""),
		OpenAIOCRModel:    l.mustEnv("OPENAI_OCR_MODEL", "gpt-4.1-mini"),
		OpenAIPlanModel:   l.mustEnv("OPENAI_PLAN_MODEL", "gpt-4.1-mini"),
		OllamaURL:         l.mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaPlanModel:   l.mustEnv("OLLAMA_PLAN_MODEL", "llama3.1:8b"),
		OllamaVisionModel: l.mustEnv("OLLAMA_VISION_MODEL", "llama3.2-vision"),

		MaxFiles:               l.mustEnvInt("MAX_FILES", 100),
		MaxFileMB:              l.mustEnvInt("MAX_FILE_MB", 5),
		MaxTextChars:           l.mustEnvInt("MAX_TEXT_CHARS", 30000),
		ExtractConcurrency:     l.mustEnvInt("EXTRACT_CONCURRENCY", 4),
		ClassifyTimeoutSeconds: l.mustEnvInt("CLASSIFY_TIMEOUT_SECONDS", 45),

		OCRRateLimitRPS:   l.mustEnvFloat("OCR_RATE_LIMIT_RPS", 0),
		OCRRateLimitBurst: l.mustEnvInt("OCR_RATE_LIMIT_BURST", 4),

		StagingMode: strings.ToLower(l.mustEnv("STAGING_MODE", StagingMemory)),
		StagingDir:  l.mustEnv("STAGING_DIR", ""),
		DataDir:     l.mustEnv("DATA_DIR", "./data"),

		PostgresDSN: l.mustEnv("POSTGRES_DSN", ""),

		NATSURL:           l.mustEnv("NATS_URL", ""),
		NATSSubjectPrefix: l.mustEnv("NATS_SUBJECT_PREFIX", "readytosend"),

		APIRateLimitRPS:       l.mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:     l.mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxInFlight:        l.mustEnvInt("API_MAX_INFLIGHT", 0),
		APIBackpressureWaitMS: l.mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),

		BreakerEnabled: l.mustEnvBool("BREAKER_ENABLED", true),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("config: unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	switch c.StagingMode {
	case StagingMemory, StagingDisk:
	default:
		return fmt.Errorf("config: unsupported STAGING_MODE %q", c.StagingMode)
	}
	return nil
}

func (c Config) MaxFileBytes() int64 {
	return int64(c.MaxFileMB) * 1024 * 1024
}

func (c Config) ClassifyTimeout() time.Duration {
	return time.Duration(c.ClassifyTimeoutSeconds) * time.Second
}

func (c Config) BackpressureWait() time.Duration {
	return time.Duration(c.APIBackpressureWaitMS) * time.Millisecond
}

func readOverlay(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		if value == nil {
			continue
		}
		out[strings.ToUpper(strings.TrimSpace(key))] = fmt.Sprint(value)
	}
	return out, nil
}

type loader struct {
	overlay map[string]string
}

func (l loader) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return l.overlay[key]
}

func (l loader) mustEnv(key, fallback string) string {
	v := l.lookup(key)
	if v == "" {
		return fallback
	}
	return v
}

func (l loader) mustEnvInt(key string, fallback int) int {
	v := l.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (l loader) mustEnvFloat(key string, fallback float64) float64 {
	v := l.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

func (l loader) mustEnvBool(key string, fallback bool) bool {
	v := l.lookup(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
