package ingest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnsphere/tutor/internal/provider"
	"github.com/learnsphere/tutor/internal/store"
)

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(_ context.Context, _ *store.Document) (string, error) {
	return s.text, s.err
}

// stubEmbedder returns a fixed-dimension vector whose first component encodes
// the text length, keeping distinct inputs distinguishable.
type stubEmbedder struct {
	dimension int
	fail      bool
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (pgvector.Vector, error) {
	if s.fail {
		return pgvector.Vector{}, provider.ErrEmbeddingFailed
	}
	vec := make([]float32, s.dimension)
	vec[0] = float32(len(text))
	return pgvector.NewVector(vec), nil
}

func (s *stubEmbedder) Dimension() int { return s.dimension }

func testDocument(title string) *store.Document {
	return &store.Document{
		ID:       uuid.New(),
		CourseID: uuid.New(),
		Title:    title,
		FileName: "intro.pdf",
	}
}

func TestIngestSingleSentenceProducesOneChunk(t *testing.T) {
	ctx := context.Background()
	chunks := store.NewMemory(3)
	svc := NewService(chunks, &stubExtractor{text: "Python is a programming language."}, &stubEmbedder{dimension: 3}, 50, 10, nil)

	doc := testDocument("Intro")
	require.NoError(t, svc.Ingest(ctx, doc))

	results, err := chunks.Search(ctx, doc.CourseID, pgvector.NewVector([]float32{33, 0, 0}), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Python is a programming language.", results[0].Chunk.Content)
	assert.Equal(t, store.Metadata{Source: "Intro"}, results[0].Chunk.Metadata)
	assert.Equal(t, doc.ID, results[0].Chunk.DocumentID)
	assert.Equal(t, doc.CourseID, results[0].Chunk.CourseID)
}

func TestIngestBlankTextIsNotAnError(t *testing.T) {
	ctx := context.Background()
	chunks := store.NewMemory(3)
	svc := NewService(chunks, &stubExtractor{text: "  \n\t "}, &stubEmbedder{dimension: 3}, 50, 10, nil)

	doc := testDocument("Empty")
	require.NoError(t, svc.Ingest(ctx, doc))

	results, err := chunks.Search(ctx, doc.CourseID, pgvector.NewVector([]float32{1, 0, 0}), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIngestBlankTextClearsPreviousChunks(t *testing.T) {
	ctx := context.Background()
	chunks := store.NewMemory(3)
	doc := testDocument("Shrinking")

	svc := NewService(chunks, &stubExtractor{text: "Some real content here."}, &stubEmbedder{dimension: 3}, 50, 10, nil)
	require.NoError(t, svc.Ingest(ctx, doc))

	svc = NewService(chunks, &stubExtractor{text: ""}, &stubEmbedder{dimension: 3}, 50, 10, nil)
	require.NoError(t, svc.Ingest(ctx, doc))

	results, err := chunks.Search(ctx, doc.CourseID, pgvector.NewVector([]float32{1, 0, 0}), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIngestEmbeddingFailureAborts(t *testing.T) {
	ctx := context.Background()
	chunks := store.NewMemory(3)
	svc := NewService(chunks, &stubExtractor{text: "Some content worth embedding."}, &stubEmbedder{dimension: 3, fail: true}, 50, 10, nil)

	doc := testDocument("Broken")
	err := svc.Ingest(ctx, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrEmbeddingFailed)

	results, serr := chunks.Search(ctx, doc.CourseID, pgvector.NewVector([]float32{1, 0, 0}), 10)
	require.NoError(t, serr)
	assert.Empty(t, results, "a failed ingestion must not leave partial chunks behind")
}

func TestIngestTwiceYieldsSameChunkSet(t *testing.T) {
	ctx := context.Background()
	chunks := store.NewMemory(3)
	text := "First sentence of the lecture. Second sentence of the lecture. Third sentence wraps it up."
	svc := NewService(chunks, &stubExtractor{text: text}, &stubEmbedder{dimension: 3}, 60, 10, nil)

	doc := testDocument("Lecture")
	require.NoError(t, svc.Ingest(ctx, doc))

	first, err := chunks.Search(ctx, doc.CourseID, pgvector.NewVector([]float32{1, 0, 0}), 100)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	require.NoError(t, svc.Ingest(ctx, doc))
	second, err := chunks.Search(ctx, doc.CourseID, pgvector.NewVector([]float32{1, 0, 0}), 100)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Chunk.Content, second[i].Chunk.Content)
	}
}
