package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnsphere/tutor/internal/chunker"
	"github.com/learnsphere/tutor/internal/provider"
	"github.com/learnsphere/tutor/internal/store"
)

// TextExtractor converts a document's content source into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, doc *store.Document) (string, error)
}

// Service drives extract → chunk → embed → store for one document.
type Service struct {
	chunks       store.ChunkStore
	extractor    TextExtractor
	embedder     provider.Embedder
	maxChars     int
	overlapChars int
	logger       *zap.Logger
}

// NewService creates a new ingestion service.
func NewService(chunks store.ChunkStore, extractor TextExtractor, embedder provider.Embedder, maxChars, overlapChars int, logger *zap.Logger) *Service {
	if maxChars <= 0 {
		maxChars = chunker.DefaultMaxChars
	}
	if overlapChars < 0 {
		overlapChars = chunker.DefaultOverlapChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chunks:       chunks,
		extractor:    extractor,
		embedder:     embedder,
		maxChars:     maxChars,
		overlapChars: overlapChars,
		logger:       logger,
	}
}

// Ingest rebuilds the document's chunk set from its current content. The old
// chunks are swapped for the new ones atomically, so ingesting the same
// content twice yields the same chunk set, never a duplicated one. Blank
// extracted text is terminal but not an error: the document simply ends up
// with no chunks. An embedding failure aborts the run with a retryable error.
func (s *Service) Ingest(ctx context.Context, doc *store.Document) error {
	log := s.logger.With(
		zap.String("documentID", doc.ID.String()),
		zap.String("title", doc.Title),
	)
	log.Info("starting ingestion")

	text, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		log.Info("no text extracted")
		return s.chunks.DeleteByDocument(ctx, doc.ID)
	}

	pieces := chunker.Split(text, s.maxChars, s.overlapChars)
	log.Info("text chunked", zap.Int("chunks", len(pieces)))

	rows := make([]*store.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		embedding, err := s.embedder.Embed(ctx, piece)
		if err != nil {
			log.Error("embedding failed", zap.Int("chunk", i), zap.Error(err))
			return fmt.Errorf("ingesting document %s: %w", doc.ID, err)
		}
		rows = append(rows, &store.Chunk{
			ID:         uuid.New(),
			CourseID:   doc.CourseID,
			DocumentID: doc.ID,
			Content:    piece,
			Embedding:  embedding,
			Metadata:   store.Metadata{Source: doc.Title},
		})
	}

	if err := s.chunks.Replace(ctx, doc.ID, rows); err != nil {
		return fmt.Errorf("ingesting document %s: %w", doc.ID, err)
	}

	log.Info("ingestion complete", zap.Int("chunks", len(rows)))
	return nil
}
