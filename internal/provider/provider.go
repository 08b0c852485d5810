package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/learnsphere/tutor/config"
)

var (
	// ErrEmbeddingFailed marks embedding-provider failures. Retryable: the
	// caller (task queue or API layer) decides whether to retry.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrGenerationFailed marks generation-provider failures. Retryable; the
	// chat path surfaces it instead of fabricating an answer.
	ErrGenerationFailed = errors.New("generation failed")
)

// Embedder maps a text segment to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
	Dimension() int
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New builds the embedding and generation providers for the configured
// variant. Credentials are validated by config.Validate before this runs.
func New(cfg *config.Config) (Embedder, Generator, error) {
	timeout := time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	switch cfg.Provider.Variant {
	case config.ProviderHostedAPI:
		p := NewOpenAI(
			cfg.Provider.OpenAI.APIKey,
			cfg.Provider.OpenAI.EmbeddingModel,
			cfg.Provider.OpenAI.EmbeddingDimension,
			cfg.Provider.OpenAI.ChatModel,
			timeout,
		)
		return p, p, nil
	case config.ProviderLocalModel:
		p := NewOllama(
			cfg.Provider.Ollama.BaseURL,
			cfg.Provider.Ollama.EmbeddingModel,
			cfg.Provider.Ollama.EmbeddingDimension,
			cfg.Provider.Ollama.ChatModel,
			timeout,
		)
		return p, p, nil
	case config.ProviderAlternateVendor:
		p := NewGemini(
			cfg.Provider.Gemini.APIKey,
			cfg.Provider.Gemini.EmbeddingModel,
			cfg.Provider.Gemini.EmbeddingDimension,
			cfg.Provider.Gemini.ChatModel,
			timeout,
		)
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider variant: %q", cfg.Provider.Variant)
	}
}
