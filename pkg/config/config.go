// Package config binds the engine's infrastructure knobs from the process
// environment. Only infrastructure is configurable here — the numeric
// constants fixed by the classification and similarity algorithms (the
// 0.31 unclassified threshold, the 0.80 similarity threshold, the 50-file
// commit batch size, and so on) are not, and live next to the code that
// uses them instead.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
)

// Config is the process-wide configuration, parsed once at startup and
// threaded into every component's constructor.
type Config struct {
	DataDir string `env:"CLASP_DATA_DIR"`

	EmbeddingBaseURL       string `env:"CLASP_EMBEDDING_BASE_URL" envDefault:"http://localhost:11434/v1"`
	EmbeddingModel         string `env:"CLASP_EMBEDDING_MODEL" envDefault:"bge-m3"`
	EmbeddingAPIKey        string `env:"CLASP_EMBEDDING_API_KEY"`
	EmbeddingTimeoutSecond int    `env:"CLASP_EMBEDDING_TIMEOUT_SECONDS" envDefault:"20"`

	OpenAIAPIKey    string `env:"CLASP_OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"CLASP_ANTHROPIC_API_KEY"`
	LLMTimeoutSecs  int    `env:"CLASP_LLM_TIMEOUT_SECONDS" envDefault:"20"`

	ScanConcurrency int `env:"CLASP_SCAN_CONCURRENCY" envDefault:"4"`
	// ScanBatchSize is parsed and defaulted here, but the scan
	// orchestrator does not read it: it commits in fixed batches of 50.
	ScanBatchSize int `env:"CLASP_SCAN_BATCH_SIZE" envDefault:"50"`
}

// Load parses the environment into a Config, applying defaults for any
// field env couldn't resolve and that still needs a computed fallback
// (the OS-specific data directory per §6).
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("CLASP_OPENAI_KEY")
	}
	if cfg.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return Config{}, err
		}
		cfg.DataDir = dir
	}
	if cfg.ScanConcurrency <= 0 {
		cfg.ScanConcurrency = 4
	}
	if cfg.ScanBatchSize <= 0 {
		cfg.ScanBatchSize = 50
	}
	return cfg, nil
}

// defaultDataDir reproduces the OS-specific app-data root from §6:
// darwin → ~/Library/Application Support/Clasp
// windows → %APPDATA%/Clasp
// other   → ${XDG_DATA_HOME:-~/.local/share}/Clasp
func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Clasp"), nil
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			base = home
		}
		return filepath.Join(base, "Clasp"), nil
	default:
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			base = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(base, "Clasp"), nil
	}
}

// DBPath is the sqlite file path under DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "clasp.db")
}

// FeedbackPath is the category-prototype override file path under DataDir.
func (c Config) FeedbackPath() string {
	return filepath.Join(c.DataDir, "feedback_embeddings.json")
}
