// Package vectorstore provides the embedded chromem-go index backend.
package vectorstore

import (
	"context"
	"fmt"
	"runtime"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
)

// DefaultCollectionName is the chromem collection holding catalog chunks
const DefaultCollectionName = "partselect_parts"

// ChromemIndex stores catalog chunks in a chromem-go collection. Similarity
// is cosine; distance is reported as 1 - similarity.
type ChromemIndex struct {
	db          *chromem.DB
	collection  *chromem.Collection
	concurrency int
}

// NewChromemIndex opens the collection in a persistent database at path, or
// in memory when path is empty.
func NewChromemIndex(path, collectionName string) (*ChromemIndex, error) {
	var (
		db  *chromem.DB
		err error
	)
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem database: %w", err)
		}
	}

	if collectionName == "" {
		collectionName = DefaultCollectionName
	}
	// Embeddings are always supplied by the caller, so no embedding func is set.
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	log.Debug().
		Str("path", path).
		Str("collection", collectionName).
		Int("documents", collection.Count()).
		Msg("chromem index opened")

	return &ChromemIndex{
		db:          db,
		collection:  collection,
		concurrency: runtime.NumCPU(),
	}, nil
}

// Search returns up to limit nearest chunks, optionally restricted to one
// metadata value. An empty collection or an unmatched filter yields an empty result.
func (i *ChromemIndex) Search(ctx context.Context, embedding []float32, limit int, filter *domain.Filter) (*domain.RetrievalResult, error) {
	var where map[string]string
	if filter != nil {
		if !domain.IsFilterableField(filter.Field) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFilter, filter.Field)
		}
		where = map[string]string{filter.Field: filter.Value}
	}

	// chromem rejects nResults above the collection size
	n := min(limit, i.collection.Count())
	if n <= 0 {
		return &domain.RetrievalResult{}, nil
	}

	results, err := i.collection.QueryEmbedding(ctx, embedding, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	hits := make([]domain.Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, domain.Hit{
			ID:       r.ID,
			Document: r.Content,
			Metadata: domain.MetadataFromMap(r.Metadata),
			Distance: 1 - r.Similarity,
		})
	}
	return &domain.RetrievalResult{Hits: hits}, nil
}

// Upsert adds chunks with their embeddings, replacing chunks with the same ID
func (i *ChromemIndex) Upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for idx, c := range chunks {
		if err := domain.ValidateChunk(&c); err != nil {
			return err
		}
		docs = append(docs, chromem.Document{
			ID:        c.ID,
			Content:   c.Document,
			Metadata:  c.Metadata.ToMap(),
			Embedding: embeddings[idx],
		})
	}

	if err := i.collection.AddDocuments(ctx, docs, i.concurrency); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks
func (i *ChromemIndex) Count(_ context.Context) (int, error) {
	return i.collection.Count(), nil
}
