package ingest

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/learnsphere/tutor/internal/store"
)

// Watcher reacts to document lifecycle events from the surrounding API
// layer. Ingestion runs off the request path: events enqueue jobs onto a
// bounded channel drained by worker goroutines, so a document create or
// update returns immediately. Jobs for different documents are independent;
// one failure never blocks the rest.
type Watcher struct {
	service   *Service
	chunks    store.ChunkStore
	jobs      chan store.Document
	workers   int
	logger    *zap.Logger
	startOnce sync.Once
	wg        sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewWatcher creates a watcher with the given worker count and queue size.
func NewWatcher(service *Service, chunks store.ChunkStore, workers, queueSize int, logger *zap.Logger) *Watcher {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		service: service,
		chunks:  chunks,
		jobs:    make(chan store.Document, queueSize),
		workers: workers,
		logger:  logger,
	}
}

// Start launches the worker pool. Safe to call once; workers exit when the
// context is canceled and the queue has drained.
func (w *Watcher) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		for i := 0; i < w.workers; i++ {
			w.wg.Add(1)
			go w.run(ctx)
		}
	})
}

// Close stops accepting jobs and waits for in-flight ingestions to finish.
// Events arriving after Close are dropped, not a panic.
func (w *Watcher) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	for doc := range w.jobs {
		if ctx.Err() != nil {
			return
		}
		if err := w.service.Ingest(ctx, &doc); err != nil {
			w.logger.Error("ingestion job failed",
				zap.String("documentID", doc.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// OnDocumentCreated enqueues ingestion for a new document.
func (w *Watcher) OnDocumentCreated(doc *store.Document) {
	w.enqueue(*doc)
}

// OnDocumentContentChanged invalidates the old chunk set and enqueues
// re-ingestion of the new content.
func (w *Watcher) OnDocumentContentChanged(oldDoc, newDoc *store.Document) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := w.chunks.DeleteByDocument(ctx, oldDoc.ID); err != nil {
		w.logger.Error("failed to invalidate chunks",
			zap.String("documentID", oldDoc.ID.String()),
			zap.Error(err),
		)
	}
	w.enqueue(*newDoc)
}

// OnDocumentDeleted removes the document's chunks.
func (w *Watcher) OnDocumentDeleted(doc *store.Document) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := w.chunks.DeleteByDocument(ctx, doc.ID); err != nil {
		w.logger.Error("failed to delete chunks",
			zap.String("documentID", doc.ID.String()),
			zap.Error(err),
		)
	}
}

func (w *Watcher) enqueue(doc store.Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.logger.Warn("ingestion event dropped after shutdown",
			zap.String("documentID", doc.ID.String()),
		)
		return
	}
	w.jobs <- doc
}
