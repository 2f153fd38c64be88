package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"hermes/internal/domain/record"
	"hermes/pkg/errors"
)

// Compile-time check
var _ record.Repository = (*RecordRepository)(nil)

// RecordRepository implements record.Repository using sqlx and pgvector
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// StoreBatch inserts a batch of records in one transaction
func (r *RecordRepository) StoreBatch(ctx context.Context, records []*record.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO records (
			id, namespace, content, embedding, embedding_model, metadata, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	for _, rec := range records {
		createdAt := rec.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		if _, err := tx.ExecContext(ctx, query,
			rec.ID, rec.Namespace, rec.Content, rec.Embedding,
			rec.EmbeddingModel, rec.Metadata, createdAt,
		); err != nil {
			return errors.Wrapf(err, "insert record %s", rec.ID)
		}
	}

	return tx.Commit()
}

// SearchSimilar performs semantic search using pgvector cosine similarity
func (r *RecordRepository) SearchSimilar(ctx context.Context, ns record.Namespace, embedding pgvector.Vector, limit int) ([]*record.SearchResult, error) {
	var results []*record.SearchResult

	query := `
		SELECT *, 1 - (embedding <=> $2) AS similarity
		FROM records
		WHERE namespace = $1
		ORDER BY embedding <=> $2
		LIMIT $3`

	err := r.db.SelectContext(ctx, &results, query, ns, embedding, limit)
	if err != nil {
		return nil, err
	}

	return results, nil
}

// Count returns the number of records in a namespace
func (r *RecordRepository) Count(ctx context.Context, ns record.Namespace) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM records WHERE namespace = $1`, ns)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// EnsureSchema creates the pgvector extension, the records table and its
// index. Called by the ingest command; dimensions must match the embedding
// provider.
func (r *RecordRepository) EnsureSchema(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		dimensions = 768
	}
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS records (
			id UUID PRIMARY KEY,
			namespace TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(` + strconv.Itoa(dimensions) + `) NOT NULL,
			embedding_model TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS records_namespace_idx ON records (namespace)`,
		`CREATE INDEX IF NOT EXISTS records_embedding_idx
			ON records USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "ensure records schema")
		}
	}
	return nil
}
