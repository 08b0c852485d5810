package store

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Memory is a brute-force cosine chunk store used in dev mode and tests.
// It holds the same contract as the Postgres store: course-scoped queries,
// ascending cosine distance, ties broken by insertion order.
type Memory struct {
	mu        sync.RWMutex
	dimension int
	seq       int
	rows      []memoryRow
}

type memoryRow struct {
	seq   int
	chunk *Chunk
}

// NewMemory creates an empty in-memory store. dimension <= 0 disables the
// dimension check (the first insert still fixes it).
func NewMemory(dimension int) *Memory {
	return &Memory{dimension: dimension}
}

func (m *Memory) Insert(_ context.Context, chunks []*Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(chunks)
}

func (m *Memory) insertLocked(chunks []*Chunk) error {
	for _, chunk := range chunks {
		dim := len(chunk.Embedding.Slice())
		if m.dimension <= 0 {
			m.dimension = dim
		}
		if dim != m.dimension {
			return ErrDimensionMismatch
		}
	}
	for _, chunk := range chunks {
		m.seq++
		m.rows = append(m.rows, memoryRow{seq: m.seq, chunk: chunk})
	}
	return nil
}

func (m *Memory) DeleteByDocument(_ context.Context, documentID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(documentID)
	return nil
}

func (m *Memory) deleteLocked(documentID uuid.UUID) {
	kept := m.rows[:0]
	for _, row := range m.rows {
		if row.chunk.DocumentID != documentID {
			kept = append(kept, row)
		}
	}
	m.rows = kept
}

// Replace swaps a document's chunk set under one lock acquisition, so readers
// never observe a half-deleted state.
func (m *Memory) Replace(_ context.Context, documentID uuid.UUID, chunks []*Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(documentID)
	return m.insertLocked(chunks)
}

func (m *Memory) Search(_ context.Context, courseID uuid.UUID, embedding pgvector.Vector, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	query := embedding.Slice()
	if m.dimension > 0 && len(query) != m.dimension {
		return nil, ErrDimensionMismatch
	}

	type scored struct {
		seq      int
		chunk    *Chunk
		distance float64
	}
	var candidates []scored
	for _, row := range m.rows {
		if row.chunk.CourseID != courseID {
			continue
		}
		candidates = append(candidates, scored{
			seq:      row.seq,
			chunk:    row.chunk,
			distance: cosineDistance(query, row.chunk.Embedding.Slice()),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].seq < candidates[j].seq
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	results := make([]ScoredChunk, 0, k)
	for i := 0; i < k; i++ {
		results = append(results, ScoredChunk{Chunk: candidates[i].chunk, Distance: candidates[i].distance})
	}
	return results, nil
}

// cosineDistance is 1 - cosine similarity. Zero vectors compare as maximally
// distant rather than dividing by zero.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

var _ ChunkStore = (*Memory)(nil)
