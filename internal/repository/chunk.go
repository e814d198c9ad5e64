package repository

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// filterColumns maps filterable metadata fields to their columns
var filterColumns = map[string]string{
	domain.MetaPartNumber:    "part_number",
	domain.MetaChunkCategory: "chunk_category",
	domain.MetaApplianceType: "appliance_type",
}

// ChunkRepository stores catalog chunks in Postgres with pgvector embeddings
type ChunkRepository struct {
	db dbtx
	// tx is nil when db is already a transaction
	tx *TxRunner
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool, tx: NewTxRunner(pool)}
}

func NewChunkRepositoryWithTx(tx dbtx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// Search returns up to limit chunks ordered by cosine distance
func (r *ChunkRepository) Search(ctx context.Context, embedding []float32, limit int, filter *domain.Filter) (*domain.RetrievalResult, error) {
	if limit <= 0 {
		return &domain.RetrievalResult{}, nil
	}

	query := `
		SELECT id, document, part_number, name, appliance_type, oem_part_number,
		       price, image_url, source_url, in_stock, chunk_category,
		       embedding <=> $1 AS distance
		FROM catalog_chunks`
	args := []any{pgvector.NewVector(embedding), limit}

	if filter != nil {
		column, ok := filterColumns[filter.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFilter, filter.Field)
		}
		query += fmt.Sprintf(" WHERE %s = $3", column)
		args = append(args, filter.Value)
	}
	query += " ORDER BY embedding <=> $1 LIMIT $2"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.RetrievalResult{Hits: make([]domain.Hit, 0, limit)}
	for rows.Next() {
		var (
			h        domain.Hit
			category string
			distance float64
		)
		if err := rows.Scan(
			&h.ID, &h.Document,
			&h.Metadata.PartNumber, &h.Metadata.Name, &h.Metadata.ApplianceType, &h.Metadata.OEMPartNumber,
			&h.Metadata.Price, &h.Metadata.ImageURL, &h.Metadata.SourceURL, &h.Metadata.InStock, &category,
			&distance,
		); err != nil {
			return nil, err
		}
		h.Metadata.Category = domain.ChunkCategory(category)
		h.Distance = float32(distance)
		result.Hits = append(result.Hits, h)
	}

	return result, rows.Err()
}

// Upsert writes chunks in one batch, replacing rows with the same id. A
// failed batch leaves none of its rows behind.
func (r *ChunkRepository) Upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error {
	if r.tx == nil {
		return r.upsert(ctx, chunks, embeddings)
	}
	return r.tx.WithTx(ctx, func(repo *ChunkRepository) error {
		return repo.upsert(ctx, chunks, embeddings)
	})
}

func (r *ChunkRepository) upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, c := range chunks {
		if err := domain.ValidateChunk(&c); err != nil {
			return err
		}
		m := c.Metadata
		batch.Queue(
			`INSERT INTO catalog_chunks
				(id, document, part_number, name, appliance_type, oem_part_number,
				 price, image_url, source_url, in_stock, chunk_category, embedding, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
			 ON CONFLICT (id) DO UPDATE SET
				document = EXCLUDED.document,
				part_number = EXCLUDED.part_number,
				name = EXCLUDED.name,
				appliance_type = EXCLUDED.appliance_type,
				oem_part_number = EXCLUDED.oem_part_number,
				price = EXCLUDED.price,
				image_url = EXCLUDED.image_url,
				source_url = EXCLUDED.source_url,
				in_stock = EXCLUDED.in_stock,
				chunk_category = EXCLUDED.chunk_category,
				embedding = EXCLUDED.embedding,
				updated_at = now()`,
			c.ID, c.Document, m.PartNumber, m.Name, m.ApplianceType, m.OEMPartNumber,
			m.Price, m.ImageURL, m.SourceURL, m.InStock, string(m.Category),
			pgvector.NewVector(embeddings[i]),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert chunk: %w", err)
		}
	}
	return nil
}

// Count returns the number of stored chunks
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM catalog_chunks`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
