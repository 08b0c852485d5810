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

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini is the alternate-vendor provider variant, talking to the Google
// Generative Language REST API.
type Gemini struct {
	apiKey         string
	baseURL        string
	embeddingModel string
	dimension      int
	chatModel      string
	httpClient     *http.Client
}

// NewGemini creates the alternate-vendor provider.
func NewGemini(apiKey, embeddingModel string, dimension int, chatModel string, timeout time.Duration) *Gemini {
	return &Gemini{
		apiKey:         apiKey,
		baseURL:        geminiBaseURL,
		embeddingModel: embeddingModel,
		dimension:      dimension,
		chatModel:      chatModel,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// Embed generates an embedding for the given text
func (p *Gemini) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	payload := map[string]any{
		"content": geminiContent{Parts: []geminiPart{{Text: text}}},
	}
	var result struct {
		Embedding struct {
			Values []float32 `json:"values"`
		} `json:"embedding"`
	}
	if err := p.post(ctx, fmt.Sprintf("/models/%s:embedContent", p.embeddingModel), payload, &result); err != nil {
		return pgvector.Vector{}, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if len(result.Embedding.Values) == 0 {
		return pgvector.Vector{}, fmt.Errorf("%w: empty embedding returned", ErrEmbeddingFailed)
	}
	return pgvector.NewVector(result.Embedding.Values), nil
}

// Dimension returns the fixed embedding dimension
func (p *Gemini) Dimension() int {
	return p.dimension
}

// Generate produces a completion from the chat model.
func (p *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"contents": []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	var result struct {
		Candidates []struct {
			Content geminiContent `json:"content"`
		} `json:"candidates"`
	}
	if err := p.post(ctx, fmt.Sprintf("/models/%s:generateContent", p.chatModel), payload, &result); err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", ErrGenerationFailed)
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

func (p *Gemini) post(ctx context.Context, path string, payload, result any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := p.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gemini API error: %d - %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

var (
	_ Embedder  = (*Gemini)(nil)
	_ Generator = (*Gemini)(nil)
)
