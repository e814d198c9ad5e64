package service

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/cloo-solutions/partsdesk/internal/telemetry"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultIndexBatchSize is the number of chunks embedded per provider call
	DefaultIndexBatchSize = 50
	// MaxCompatibleModels caps the model list written into a compatibility chunk
	MaxCompatibleModels = 50

	maxCatalogLineBytes = 4 << 20
)

// BatchEmbeddingClient embeds several texts in one provider call
type BatchEmbeddingClient interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkWriter stores embedded chunks, replacing any chunk with the same ID
type ChunkWriter interface {
	Upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error
}

// IndexStats summarises one indexing run
type IndexStats struct {
	Parts   int
	Chunks  int
	Batches int
	Skipped int
}

// CatalogIndexer turns catalog records into embedded chunks
type CatalogIndexer struct {
	embedder  BatchEmbeddingClient
	writer    ChunkWriter
	batchSize int
}

// NewCatalogIndexer creates a CatalogIndexer embedding batchSize chunks per call
func NewCatalogIndexer(embedder BatchEmbeddingClient, writer ChunkWriter, batchSize int) *CatalogIndexer {
	if batchSize <= 0 {
		batchSize = DefaultIndexBatchSize
	}
	return &CatalogIndexer{embedder: embedder, writer: writer, batchSize: batchSize}
}

// ReadCatalog decodes one part per non-blank line
func ReadCatalog(r io.Reader) ([]domain.CatalogPart, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxCatalogLineBytes)

	var parts []domain.CatalogPart
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var part domain.CatalogPart
		if err := json.Unmarshal([]byte(text), &part); err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", line, err)
		}
		parts = append(parts, part)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return parts, nil
}

// BuildChunks splits a part into an overview chunk plus compatibility and
// installation chunks when the record has that data.
func BuildChunks(part domain.CatalogPart) []domain.Chunk {
	ps := part.PartNumber
	name := part.Name
	if name == "" {
		name = "Unknown Part"
	}

	base := domain.ChunkMetadata{
		PartNumber:    ps,
		Name:          name,
		ApplianceType: part.ApplianceType,
		OEMPartNumber: part.OEMPartNumber,
		Price:         part.Price,
		ImageURL:      part.ImageURL,
		SourceURL:     part.SourceURL,
		InStock:       part.InStock,
	}
	chunk := func(category domain.ChunkCategory, document string) domain.Chunk {
		meta := base
		meta.Category = category
		return domain.Chunk{ID: domain.ChunkID(ps, category), Document: document, Metadata: meta}
	}

	overview := []string{"Part: " + name, "PartSelect Number: " + ps}
	if part.OEMPartNumber != "" {
		overview = append(overview, "OEM Part Number: "+part.OEMPartNumber)
	}
	if part.Price != "" {
		overview = append(overview, "Price: "+part.Price)
	}
	if part.InStock != nil {
		availability := "Out of Stock"
		if *part.InStock {
			availability = "In Stock"
		}
		overview = append(overview, "Availability: "+availability)
	}
	if part.Description != "" {
		overview = append(overview, "Description: "+part.Description)
	}
	if part.SymptomsFixed != "" {
		overview = append(overview, "Fixes: "+part.SymptomsFixed)
	}

	chunks := []domain.Chunk{chunk(domain.ChunkCategoryOverview, strings.Join(overview, "\n"))}

	if len(part.CompatibleModels) > 0 {
		models := part.CompatibleModels
		if len(models) > MaxCompatibleModels {
			models = models[:MaxCompatibleModels]
		}
		chunks = append(chunks, chunk(domain.ChunkCategoryCompatibility, fmt.Sprintf(
			"Part %s (%s) is compatible with the following models: %s",
			ps, name, strings.Join(models, ", "))))
	}

	if strings.TrimSpace(part.InstallationInstructions) != "" {
		chunks = append(chunks, chunk(domain.ChunkCategoryInstallation, fmt.Sprintf(
			"Installation instructions for %s (%s):\n%s",
			ps, name, part.InstallationInstructions)))
	}

	return chunks
}

// IndexCatalog reads a JSONL catalog and indexes every part in it
func (ix *CatalogIndexer) IndexCatalog(ctx context.Context, r io.Reader) (IndexStats, error) {
	parts, err := ReadCatalog(r)
	if err != nil {
		return IndexStats{}, err
	}
	return ix.IndexParts(ctx, parts)
}

// IndexParts chunks, embeds and stores parts. Records without a part
// number are skipped.
func (ix *CatalogIndexer) IndexParts(ctx context.Context, parts []domain.CatalogPart) (IndexStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogIndexer.IndexParts", telemetry.SpanAttributes{
		Operation: "index",
	})
	defer span.End()

	logger := log.Ctx(ctx)
	stats := IndexStats{}

	var chunks []domain.Chunk
	for _, part := range parts {
		part.PartNumber = strings.ToUpper(strings.TrimSpace(part.PartNumber))
		if part.PartNumber == "" {
			stats.Skipped++
			continue
		}
		stats.Parts++
		chunks = append(chunks, BuildChunks(part)...)
	}
	stats.Chunks = len(chunks)

	total := (len(chunks) + ix.batchSize - 1) / ix.batchSize
	for start := 0; start < len(chunks); start += ix.batchSize {
		end := min(start+ix.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Document
		}

		logger.Info().Int("batch", stats.Batches+1).Int("of", total).Msg("embedding batch")
		embeddings, err := ix.embedder.GenerateEmbeddings(ctx, texts)
		if err != nil {
			span.SetStatus(sentry.SpanStatusInternalError)
			return stats, fmt.Errorf("%w: batch %d: %w", domain.ErrEmbeddingFailed, stats.Batches+1, err)
		}
		if err := ix.writer.Upsert(ctx, batch, embeddings); err != nil {
			span.SetStatus(sentry.SpanStatusInternalError)
			return stats, fmt.Errorf("failed to store batch %d: %w", stats.Batches+1, err)
		}
		stats.Batches++
	}

	logger.Info().
		Int("parts", stats.Parts).
		Int("chunks", stats.Chunks).
		Int("skipped", stats.Skipped).
		Msg("catalog indexed")
	return stats, nil
}
