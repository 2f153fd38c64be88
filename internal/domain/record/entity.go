package record

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Namespace is a logical partition of the vector store holding one dataset
type Namespace string

const (
	NamespaceSentiment Namespace = "sentiment"
	NamespacePurchase  Namespace = "purchase"
	NamespaceCampaign  Namespace = "campaign"
)

// Valid checks if the namespace is one of the known datasets
func (n Namespace) Valid() bool {
	switch n {
	case NamespaceSentiment, NamespacePurchase, NamespaceCampaign:
		return true
	}
	return false
}

// String returns string representation
func (n Namespace) String() string {
	return string(n)
}

// Record is one embedded row from a source dataset.
// Immutable once ingested; the vector store owns it.
type Record struct {
	ID        uuid.UUID `db:"id"`
	Namespace Namespace `db:"namespace"`

	// Content is the human-readable document built from the CSV row
	Content string `db:"content"`

	Embedding      pgvector.Vector `db:"embedding"`
	EmbeddingModel string          `db:"embedding_model"`

	// Metadata keeps the original column values as JSON
	Metadata Metadata `db:"metadata"`

	CreatedAt time.Time `db:"created_at"`
}

// SearchResult is a record returned by a similarity query, with its score
type SearchResult struct {
	Record
	Similarity float64 `db:"similarity"`
}

// Repository provides namespace-scoped storage and similarity search
type Repository interface {
	// StoreBatch inserts a batch of records
	StoreBatch(ctx context.Context, records []*Record) error

	// SearchSimilar returns the top-k most similar records in a namespace,
	// ordered by descending similarity
	SearchSimilar(ctx context.Context, ns Namespace, embedding pgvector.Vector, limit int) ([]*SearchResult, error)

	// Count returns the number of records in a namespace
	Count(ctx context.Context, ns Namespace) (int64, error)
}
