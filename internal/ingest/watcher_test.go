package ingest

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnsphere/tutor/internal/store"
)

func TestWatcherIngestsCreatedDocument(t *testing.T) {
	ctx := context.Background()
	chunks := store.NewMemory(3)
	svc := NewService(chunks, &stubExtractor{text: "Watched content arrives here."}, &stubEmbedder{dimension: 3}, 50, 10, nil)
	w := NewWatcher(svc, chunks, 2, 8, nil)
	w.Start(ctx)

	doc := testDocument("Watched")
	w.OnDocumentCreated(doc)
	w.Close()

	results, err := chunks.Search(ctx, doc.CourseID, pgvector.NewVector([]float32{1, 0, 0}), 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestWatcherDeleteRemovesChunks(t *testing.T) {
	ctx := context.Background()
	chunks := store.NewMemory(3)
	svc := NewService(chunks, &stubExtractor{text: "Content to be deleted."}, &stubEmbedder{dimension: 3}, 50, 10, nil)
	doc := testDocument("Doomed")
	require.NoError(t, svc.Ingest(ctx, doc))

	w := NewWatcher(svc, chunks, 1, 4, nil)
	w.Start(ctx)
	w.OnDocumentDeleted(doc)
	w.Close()

	results, err := chunks.Search(ctx, doc.CourseID, pgvector.NewVector([]float32{1, 0, 0}), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestWatcherDropsEventsAfterClose(t *testing.T) {
	ctx := context.Background()
	chunks := store.NewMemory(3)
	svc := NewService(chunks, &stubExtractor{text: "Late arrival."}, &stubEmbedder{dimension: 3}, 50, 10, nil)
	w := NewWatcher(svc, chunks, 1, 4, nil)
	w.Start(ctx)
	w.Close()

	doc := testDocument("Late")
	assert.NotPanics(t, func() {
		w.OnDocumentCreated(doc)
		w.OnDocumentContentChanged(doc, doc)
	})
	assert.NotPanics(t, w.Close, "closing twice must be safe")

	results, err := chunks.Search(ctx, doc.CourseID, pgvector.NewVector([]float32{1, 0, 0}), 10)
	require.NoError(t, err)
	assert.Empty(t, results, "events after shutdown are dropped")
}

func TestWatcherContentChangeReingests(t *testing.T) {
	ctx := context.Background()
	chunks := store.NewMemory(3)

	oldSvc := NewService(chunks, &stubExtractor{text: "Old version of the material."}, &stubEmbedder{dimension: 3}, 50, 10, nil)
	doc := testDocument("Evolving")
	require.NoError(t, oldSvc.Ingest(ctx, doc))

	newSvc := NewService(chunks, &stubExtractor{text: "New version replaces it."}, &stubEmbedder{dimension: 3}, 50, 10, nil)
	w := NewWatcher(newSvc, chunks, 1, 4, nil)
	w.Start(ctx)

	updated := *doc
	updated.FileName = "evolving-v2.pdf"
	w.OnDocumentContentChanged(doc, &updated)
	w.Close()

	results, err := chunks.Search(ctx, doc.CourseID, pgvector.NewVector([]float32{1, 0, 0}), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "New version replaces it.", results[0].Chunk.Content)
}
