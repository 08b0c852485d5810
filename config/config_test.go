package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ProviderHostedAPI, cfg.Provider.Variant)
	assert.Equal(t, 1200, cfg.Chunking.MaxChars)
	assert.Equal(t, 100, cfg.Chunking.OverlapChars)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, 1536, cfg.Provider.OpenAI.EmbeddingDimension)
}

func TestValidateHostedAPIRequiresKey(t *testing.T) {
	cfg := Default()
	cfg.Provider.Variant = ProviderHostedAPI
	cfg.Provider.OpenAI.APIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestValidateAlternateVendorRequiresKey(t *testing.T) {
	cfg := Default()
	cfg.Provider.Variant = ProviderAlternateVendor
	cfg.Provider.Gemini.APIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestValidateLocalModelRequiresBaseURL(t *testing.T) {
	cfg := Default()
	cfg.Provider.Variant = ProviderLocalModel
	cfg.Provider.Ollama.BaseURL = ""

	assert.Error(t, cfg.Validate())

	cfg.Provider.Ollama.BaseURL = "http://localhost:11434"
	assert.NoError(t, cfg.Validate())
}

func TestValidateUnknownVariant(t *testing.T) {
	cfg := Default()
	cfg.Provider.Variant = "mystery"

	assert.Error(t, cfg.Validate())
}

func TestValidateUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Provider.Variant = ProviderLocalModel
	cfg.Store.Backend = "redis"

	assert.Error(t, cfg.Validate())
}

func TestValidateChunkingBounds(t *testing.T) {
	cfg := Default()
	cfg.Provider.Variant = ProviderLocalModel

	cfg.Chunking.MaxChars = 0
	assert.Error(t, cfg.Validate())

	cfg.Chunking.MaxChars = 100
	cfg.Chunking.OverlapChars = 100
	assert.Error(t, cfg.Validate())

	cfg.Chunking.OverlapChars = 20
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://override/db")
	t.Setenv("TUTOR_PROVIDER", ProviderLocalModel)
	t.Setenv("TUTOR_STORE", "memory")

	cfg := Default()
	cfg.applyEnv()

	assert.Equal(t, "postgres://override/db", cfg.Database.DSN)
	assert.Equal(t, ProviderLocalModel, cfg.Provider.Variant)
	assert.Equal(t, "memory", cfg.Store.Backend)
}
