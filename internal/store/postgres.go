package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// DB wraps the database connection pool
type DB struct {
	pool *pgxpool.Pool
}

// NewDB creates a new database connection
func NewDB(connString string) (*DB, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Pool returns the underlying connection pool
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.pool.Close()
}

// Migrate applies the schema. The embedding dimension is fixed per deployment;
// changing it requires a full re-index, not a migration.
func (db *DB) Migrate(ctx context.Context, embeddingDimension int) error {
	if embeddingDimension <= 0 {
		return fmt.Errorf("invalid embedding dimension: %d", embeddingDimension)
	}

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			course_id UUID NOT NULL,
			title TEXT NOT NULL,
			file_name TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			uploaded_by UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id UUID PRIMARY KEY,
			seq BIGSERIAL,
			course_id UUID NOT NULL,
			document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, embeddingDimension),
		`CREATE INDEX IF NOT EXISTS idx_chunks_course ON chunks (course_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks (document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks
			USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// CreateDocument creates a new document record
func (db *DB) CreateDocument(ctx context.Context, doc *Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO documents (id, course_id, title, file_name, url, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		doc.ID, doc.CourseID, doc.Title, doc.FileName, doc.URL, doc.UploadedBy,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by id, or nil when it does not exist
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	doc, err := scanDocument(db.pool.QueryRow(ctx,
		`SELECT id, course_id, title, file_name, url, uploaded_by, created_at
		 FROM documents WHERE id = $1`,
		id,
	))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// scanDocument reads one documents row. uploaded_by is nullable; a NULL maps
// to the zero UUID.
func scanDocument(row pgx.Row) (*Document, error) {
	var doc Document
	var uploadedBy *uuid.UUID
	if err := row.Scan(
		&doc.ID, &doc.CourseID, &doc.Title, &doc.FileName, &doc.URL,
		&uploadedBy, &doc.CreatedAt,
	); err != nil {
		return nil, err
	}
	if uploadedBy != nil {
		doc.UploadedBy = *uploadedBy
	}
	return &doc, nil
}

// ListDocuments returns every document, oldest first.
func (db *DB) ListDocuments(ctx context.Context) ([]*Document, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, course_id, title, file_name, url, uploaded_by, created_at
		 FROM documents ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdateDocumentContent changes the document's content locator. The caller is
// responsible for re-ingesting afterwards.
func (db *DB) UpdateDocumentContent(ctx context.Context, id uuid.UUID, fileName, url string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE documents SET file_name = $2, url = $3 WHERE id = $1`,
		id, fileName, url,
	)
	if err != nil {
		return fmt.Errorf("failed to update document content: %w", err)
	}
	return nil
}

// DeleteDocument deletes a document; its chunks cascade
func (db *DB) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}

// Insert persists chunks in one batch
func (db *DB) Insert(ctx context.Context, chunks []*Chunk) error {
	return db.insert(ctx, db.pool, chunks)
}

type execer interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func (db *DB) insert(ctx context.Context, tx execer, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		meta, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal chunk metadata: %w", err)
		}
		batch.Queue(
			`INSERT INTO chunks (id, course_id, document_id, content, embedding, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			chunk.ID, chunk.CourseID, chunk.DocumentID, chunk.Content, chunk.Embedding, meta,
		)
	}
	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < len(chunks); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}
	return nil
}

// DeleteByDocument removes every chunk owned by the document
func (db *DB) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// Replace swaps the document's chunk set inside one transaction, so a
// concurrent retrieval sees either the old set or the new one.
func (db *DB) Replace(ctx context.Context, documentID uuid.UUID, chunks []*Chunk) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if err := db.insert(ctx, tx, chunks); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chunk replacement: %w", err)
	}
	return nil
}

// Search finds the k nearest chunks within a course using cosine distance.
// Ties break on seq, which reflects insertion order.
func (db *DB) Search(ctx context.Context, courseID uuid.UUID, embedding pgvector.Vector, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, course_id, document_id, content, embedding, metadata, created_at,
		        embedding <=> $2 AS distance
		 FROM chunks
		 WHERE course_id = $1
		 ORDER BY distance, seq
		 LIMIT $3`,
		courseID, embedding, k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var results []ScoredChunk
	for rows.Next() {
		var chunk Chunk
		var meta []byte
		var distance float64
		if err := rows.Scan(
			&chunk.ID, &chunk.CourseID, &chunk.DocumentID, &chunk.Content,
			&chunk.Embedding, &meta, &chunk.CreatedAt, &distance,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if err := json.Unmarshal(meta, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chunk metadata: %w", err)
		}
		results = append(results, ScoredChunk{Chunk: &chunk, Distance: distance})
	}
	return results, rows.Err()
}

var _ ChunkStore = (*DB)(nil)
