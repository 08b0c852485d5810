package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/learnsphere/tutor/internal/provider"
	"github.com/learnsphere/tutor/internal/store"
)

// DefaultTopK is the number of chunks pulled into the answer context.
const DefaultTopK = 10

// Retriever embeds a question and finds the closest chunks within a course.
type Retriever struct {
	chunks   store.ChunkStore
	embedder provider.Embedder
	topK     int
}

// NewRetriever creates a retriever over the given chunk store.
func NewRetriever(chunks store.ChunkStore, embedder provider.Embedder, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		chunks:   chunks,
		embedder: embedder,
		topK:     topK,
	}
}

// Retrieve returns the chunks most similar to the question, ascending by
// cosine distance, scoped to a single course.
func (r *Retriever) Retrieve(ctx context.Context, courseID uuid.UUID, question string) ([]store.ScoredChunk, error) {
	embedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	results, err := r.chunks.Search(ctx, courseID, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	return results, nil
}
