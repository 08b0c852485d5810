package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/pgvector/pgvector-go"
)

const (
	// openaiMaxRetries bounds retries on rate-limit responses.
	openaiMaxRetries  = 3
	openaiBaseBackoff = 2 * time.Second
)

// OpenAI is the hosted-api provider variant.
type OpenAI struct {
	client         openai.Client
	embeddingModel string
	dimension      int
	chatModel      string
	timeout        time.Duration
}

// NewOpenAI creates the hosted-api provider.
func NewOpenAI(apiKey, embeddingModel string, dimension int, chatModel string, timeout time.Duration) *OpenAI {
	return &OpenAI{
		client:         openai.NewClient(option.WithAPIKey(apiKey)),
		embeddingModel: embeddingModel,
		dimension:      dimension,
		chatModel:      chatModel,
		timeout:        timeout,
	}
}

// Embed generates an embedding for the given text
func (p *OpenAI) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.embeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	}
	if p.dimension > 0 {
		params.Dimensions = openai.Int(int64(p.dimension))
	}

	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if len(resp.Data) == 0 {
		return pgvector.Vector{}, fmt.Errorf("%w: empty embedding response", ErrEmbeddingFailed)
	}

	raw := resp.Data[0].Embedding
	vector := make([]float32, len(raw))
	for i, v := range raw {
		vector[i] = float32(v)
	}
	return pgvector.NewVector(vector), nil
}

// Dimension returns the fixed embedding dimension
func (p *OpenAI) Dimension() int {
	return p.dimension
}

// Generate produces a completion, retrying rate-limited calls with backoff.
func (p *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= openaiMaxRetries; attempt++ {
		if attempt > 0 {
			backoff := openaiBaseBackoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %w", ErrGenerationFailed, ctx.Err())
			case <-time.After(backoff):
			}
		}

		completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: shared.ChatModel(p.chatModel),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(0.3),
		})
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				continue
			}
			return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}
		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("%w: no completion choices returned", ErrGenerationFailed)
		}
		return completion.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w: max retries exceeded: %w", ErrGenerationFailed, lastErr)
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

var (
	_ Embedder  = (*OpenAI)(nil)
	_ Generator = (*OpenAI)(nil)
)
