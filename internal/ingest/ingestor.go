package ingest

import (
	"context"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"hermes/internal/adapters/embeddings"
	"hermes/internal/domain/record"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

const embedAttempts = 3

// retryBaseWait is a var so tests can shrink the backoff
var retryBaseWait = 2 * time.Second

// Ingestor embeds documents and stores them in the vector store
type Ingestor struct {
	repo     record.Repository
	embedder embeddings.Provider
	log      *logger.Logger

	// BatchSize controls how many documents go into one embedding call
	BatchSize int
}

// New creates an ingestor
func New(repo record.Repository, embedder embeddings.Provider, batchSize int) *Ingestor {
	if batchSize <= 0 {
		batchSize = 128
	}
	return &Ingestor{
		repo:      repo,
		embedder:  embedder,
		log:       logger.Get().With("component", "ingest"),
		BatchSize: batchSize,
	}
}

// IngestDataset embeds rows with the namespace's builder and stores them.
// Long documents are chunked into overlapping pieces, each stored as its own
// record carrying the source row's metadata.
func (ing *Ingestor) IngestDataset(ctx context.Context, ns record.Namespace, rows []Row) (int, error) {
	if len(rows) == 0 {
		ing.log.Infow("no rows, skipping", "namespace", ns)
		return 0, nil
	}

	builder, ok := BuilderFor(ns)
	if !ok {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "no builder for namespace %q", ns)
	}

	docs, metas := ing.buildDocuments(rows, builder)
	ing.log.Infow("prepared documents",
		"namespace", ns,
		"rows", humanize.Comma(int64(len(rows))),
		"documents", humanize.Comma(int64(len(docs))))

	stored := 0
	for start := 0; start < len(docs); start += ing.BatchSize {
		end := start + ing.BatchSize
		if end > len(docs) {
			end = len(docs)
		}

		batch := docs[start:end]
		vectors, err := ing.embedWithRetry(ctx, batch)
		if err != nil {
			return stored, errors.Wrapf(err, "embed batch for %s", ns)
		}

		records := make([]*record.Record, len(batch))
		for i, doc := range batch {
			records[i] = &record.Record{
				ID:             uuid.New(),
				Namespace:      ns,
				Content:        doc,
				Embedding:      pgvector.NewVector(vectors[i]),
				EmbeddingModel: ing.embedder.Name(),
				Metadata:       metas[start+i],
			}
		}

		if err := ing.repo.StoreBatch(ctx, records); err != nil {
			return stored, errors.Wrapf(err, "store batch for %s", ns)
		}
		stored += len(records)

		ing.log.Infow("stored batch",
			"namespace", ns,
			"batch", len(records),
			"total", humanize.Comma(int64(stored)))
	}

	return stored, nil
}

func (ing *Ingestor) buildDocuments(rows []Row, builder Builder) ([]string, []record.Metadata) {
	docs := make([]string, 0, len(rows))
	metas := make([]record.Metadata, 0, len(rows))

	for _, row := range rows {
		doc, meta := builder(row)
		if len(doc) <= chunkThreshold {
			docs = append(docs, doc)
			metas = append(metas, meta)
			continue
		}

		for i, piece := range chunkText(doc, chunkMaxLen, chunkOverlap) {
			chunkMeta := make(record.Metadata, len(meta)+1)
			for k, v := range meta {
				chunkMeta[k] = v
			}
			chunkMeta["chunk_index"] = strconv.Itoa(i)
			docs = append(docs, piece)
			metas = append(metas, chunkMeta)
		}
	}

	return docs, metas
}

// embedWithRetry retries transient embedding failures with linear backoff
func (ing *Ingestor) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= embedAttempts; attempt++ {
		vectors, err := ing.embedder.GenerateBatchEmbeddings(ctx, texts)
		if err == nil {
			if len(vectors) != len(texts) {
				return nil, errors.Newf("embedding count mismatch: got %d, want %d", len(vectors), len(texts))
			}
			return vectors, nil
		}
		lastErr = err
		ing.log.Warnw("embedding batch failed", "attempt", attempt, "error", err)

		if attempt < embedAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBaseWait * time.Duration(attempt)):
			}
		}
	}
	return nil, lastErr
}
