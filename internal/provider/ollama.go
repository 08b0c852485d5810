package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Ollama is the local-model provider variant, talking to an Ollama server.
type Ollama struct {
	baseURL        string
	embeddingModel string
	dimension      int
	chatModel      string
	httpClient     *http.Client
}

// NewOllama creates the local-model provider.
func NewOllama(baseURL, embeddingModel string, dimension int, chatModel string, timeout time.Duration) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Ollama{
		baseURL:        baseURL,
		embeddingModel: embeddingModel,
		dimension:      dimension,
		chatModel:      chatModel,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

// Embed generates an embedding for the given text
func (p *Ollama) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return pgvector.Vector{}, fmt.Errorf("%w: text cannot be empty", ErrEmbeddingFailed)
	}

	payload := map[string]any{
		"model":  p.embeddingModel,
		"prompt": text,
	}
	body, err := p.post(ctx, "/api/embeddings", payload)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	defer body.Close()

	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return pgvector.Vector{}, fmt.Errorf("%w: failed to decode response: %w", ErrEmbeddingFailed, err)
	}
	if len(result.Embedding) == 0 {
		return pgvector.Vector{}, fmt.Errorf("%w: empty embedding returned", ErrEmbeddingFailed)
	}

	return pgvector.NewVector(result.Embedding), nil
}

// Dimension returns the fixed embedding dimension
func (p *Ollama) Dimension() int {
	return p.dimension
}

// Generate produces a completion by concatenating the streamed response.
func (p *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  p.chatModel,
		"prompt": prompt,
		"stream": true,
	}
	body, err := p.post(ctx, "/api/generate", payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	defer body.Close()

	var result strings.Builder
	decoder := json.NewDecoder(body)
	for {
		var chunk struct {
			Response string `json:"response"`
			Done     bool   `json:"done"`
		}
		if err := decoder.Decode(&chunk); err != nil {
			if err == io.EOF {
				break
			}
			return "", fmt.Errorf("%w: failed to decode response: %w", ErrGenerationFailed, err)
		}
		result.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}

	return result.String(), nil
}

func (p *Ollama) post(ctx context.Context, path string, payload any) (io.ReadCloser, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama API error: %d - %s", resp.StatusCode, string(body))
	}
	return resp.Body, nil
}

var (
	_ Embedder  = (*Ollama)(nil)
	_ Generator = (*Ollama)(nil)
)
