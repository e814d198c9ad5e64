//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/cloo-solutions/partsdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitVector(hot int) []float32 {
	v := make([]float32, 1536)
	v[hot] = 1
	return v
}

func testChunk(part string, category domain.ChunkCategory) domain.Chunk {
	inStock := true
	return domain.Chunk{
		ID:       domain.ChunkID(part, category),
		Document: string(category) + " of " + part,
		Metadata: domain.ChunkMetadata{
			PartNumber: part,
			Name:       "Part " + part,
			Price:      "$10.00",
			SourceURL:  "https://www.partselect.com/" + part + ".htm",
			InStock:    &inStock,
			Category:   category,
		},
	}
}

func TestChunkRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.StartCatalogDB(ctx, t)

	repo := NewChunkRepository(db.Pool)

	chunks := []domain.Chunk{
		testChunk("PS1", domain.ChunkCategoryOverview),
		testChunk("PS1", domain.ChunkCategoryCompatibility),
		testChunk("PS2", domain.ChunkCategoryOverview),
	}
	embeddings := [][]float32{unitVector(0), unitVector(1), unitVector(2)}
	require.NoError(t, repo.Upsert(ctx, chunks, embeddings))

	t.Run("count", func(t *testing.T) {
		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("unfiltered search orders by distance", func(t *testing.T) {
		result, err := repo.Search(ctx, unitVector(2), 5, nil)
		require.NoError(t, err)
		require.Len(t, result.Hits, 3)
		assert.Equal(t, "PS2_overview", result.Hits[0].ID)
		assert.InDelta(t, 0, result.Hits[0].Distance, 1e-5)
		require.NotNil(t, result.Hits[0].Metadata.InStock)
		assert.True(t, *result.Hits[0].Metadata.InStock)
	})

	t.Run("part filter", func(t *testing.T) {
		result, err := repo.Search(ctx, unitVector(2), 5, domain.NewFilter(domain.MetaPartNumber, "PS1"))
		require.NoError(t, err)
		assert.Len(t, result.Hits, 2)
	})

	t.Run("unmatched filter is empty", func(t *testing.T) {
		result, err := repo.Search(ctx, unitVector(0), 5, domain.NewFilter(domain.MetaChunkCategory, "troubleshooting"))
		require.NoError(t, err)
		assert.True(t, result.Empty())
	})

	t.Run("unsupported filter", func(t *testing.T) {
		_, err := repo.Search(ctx, unitVector(0), 5, domain.NewFilter("price; DROP TABLE catalog_chunks", "x"))
		assert.ErrorIs(t, err, domain.ErrUnsupportedFilter)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		updated := testChunk("PS2", domain.ChunkCategoryOverview)
		updated.Document = "replaced"
		require.NoError(t, repo.Upsert(ctx, []domain.Chunk{updated}, [][]float32{unitVector(2)}))

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		result, err := repo.Search(ctx, unitVector(2), 1, domain.NewFilter(domain.MetaPartNumber, "PS2"))
		require.NoError(t, err)
		require.Len(t, result.Hits, 1)
		assert.Equal(t, "replaced", result.Hits[0].Document)
	})
	t.Run("failed batch rolls back", func(t *testing.T) {
		good := testChunk("PS3", domain.ChunkCategoryOverview)
		bad := testChunk("PS3", domain.ChunkCategoryInstallation)
		err := repo.Upsert(ctx, []domain.Chunk{good, bad}, [][]float32{unitVector(3), {1, 2, 3}})
		require.Error(t, err)

		result, err := repo.Search(ctx, unitVector(3), 5, domain.NewFilter(domain.MetaPartNumber, "PS3"))
		require.NoError(t, err)
		assert.True(t, result.Empty())
	})
}
