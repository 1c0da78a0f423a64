package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWhenEnvUnset(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingBaseURL)
	assert.Equal(t, "bge-m3", cfg.EmbeddingModel)
	assert.Equal(t, 20, cfg.EmbeddingTimeoutSecond)
	assert.Equal(t, 20, cfg.LLMTimeoutSecs)
	assert.Equal(t, 4, cfg.ScanConcurrency)
	assert.Equal(t, 50, cfg.ScanBatchSize)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoadReadsOpenAIKeyFromEitherEnvVar(t *testing.T) {
	t.Setenv("CLASP_OPENAI_KEY", "sk-legacy")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-legacy", cfg.OpenAIAPIKey)
}

func TestLoadPrimaryOpenAIEnvVarTakesPrecedence(t *testing.T) {
	t.Setenv("CLASP_OPENAI_API_KEY", "sk-primary")
	t.Setenv("CLASP_OPENAI_KEY", "sk-legacy")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-primary", cfg.OpenAIAPIKey)
}

func TestLoadRespectsExplicitDataDir(t *testing.T) {
	t.Setenv("CLASP_DATA_DIR", "/tmp/clasp-custom")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/clasp-custom", cfg.DataDir)
}

func TestDBPathAndFeedbackPathAreUnderDataDir(t *testing.T) {
	cfg := Config{DataDir: "/data/clasp"}
	assert.Equal(t, filepath.Join("/data/clasp", "clasp.db"), cfg.DBPath())
	assert.Equal(t, filepath.Join("/data/clasp", "feedback_embeddings.json"), cfg.FeedbackPath())
}
