package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ErrDimensionMismatch is returned when a vector does not match the store's
// embedding dimension. Chunks from different embedding-model generations must
// never be mixed in one similarity query.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Document represents a course-owned content item. Exactly one of FileName
// (object storage reference) or URL is the authoritative content source; if
// both are empty the document has no retrievable content.
type Document struct {
	ID         uuid.UUID
	CourseID   uuid.UUID
	Title      string
	FileName   string
	URL        string
	UploadedBy uuid.UUID
	CreatedAt  time.Time
}

// Metadata carries per-chunk attribution data.
type Metadata struct {
	Source string `json:"source"`
}

// Chunk is a bounded-length segment of a document's extracted text, stored
// with its embedding vector for retrieval. CourseID is denormalized from the
// owning document so scoped queries never join.
type Chunk struct {
	ID         uuid.UUID
	CourseID   uuid.UUID
	DocumentID uuid.UUID
	Content    string
	Embedding  pgvector.Vector
	Metadata   Metadata
	CreatedAt  time.Time
}

// ScoredChunk pairs a retrieved chunk with its cosine distance to the query
// vector (smaller = more similar).
type ScoredChunk struct {
	Chunk    *Chunk
	Distance float64
}

// ChunkStore is the durable mapping from (course, document, chunk) to
// text + vector + metadata, with nearest-neighbor query by cosine distance.
type ChunkStore interface {
	// Insert persists the given chunks.
	Insert(ctx context.Context, chunks []*Chunk) error

	// DeleteByDocument removes every chunk owned by the document.
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error

	// Replace atomically swaps the document's chunk set: a concurrent reader
	// sees either the old set or the new one, never a partial state.
	Replace(ctx context.Context, documentID uuid.UUID, chunks []*Chunk) error

	// Search returns up to k chunks scoped to the course, ordered by ascending
	// cosine distance with ties broken by insertion order. k <= 0 returns an
	// empty result.
	Search(ctx context.Context, courseID uuid.UUID, embedding pgvector.Vector, k int) ([]ScoredChunk, error)
}
