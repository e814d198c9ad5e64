package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkID(t *testing.T) {
	assert.Equal(t, "PS11752778_overview", ChunkID("PS11752778", ChunkCategoryOverview))
	assert.Equal(t, "PS11752778_installation", ChunkID("PS11752778", ChunkCategoryInstallation))
}

func TestChunkCategory_IsValid(t *testing.T) {
	tests := []struct {
		category ChunkCategory
		valid    bool
	}{
		{ChunkCategoryOverview, true},
		{ChunkCategoryCompatibility, true},
		{ChunkCategoryInstallation, true},
		{ChunkCategoryTroubleshooting, true},
		{ChunkCategory("general"), false},
		{ChunkCategory(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.category.IsValid())
		})
	}
}

func TestChunkMetadata_MapRoundTrip(t *testing.T) {
	inStock := true
	meta := ChunkMetadata{
		PartNumber:    "PS11752778",
		Name:          "Refrigerator Door Shelf Bin",
		ApplianceType: "Refrigerator",
		OEMPartNumber: "WPW10321304",
		Price:         "$44.95",
		ImageURL:      "https://example.com/bin.jpg",
		SourceURL:     "https://www.partselect.com/PS11752778.htm",
		InStock:       &inStock,
		Category:      ChunkCategoryCompatibility,
	}

	values := meta.ToMap()
	assert.Equal(t, "true", values[MetaInStock])
	assert.Equal(t, "compatibility", values[MetaChunkCategory])

	back := MetadataFromMap(values)
	require.NotNil(t, back.InStock)
	assert.Equal(t, meta, back)
}

func TestChunkMetadata_ToMapOmitsUnknownStock(t *testing.T) {
	values := ChunkMetadata{PartNumber: "PS1", Category: ChunkCategoryOverview}.ToMap()

	_, ok := values[MetaInStock]
	assert.False(t, ok)
	assert.Nil(t, MetadataFromMap(values).InStock)
}

func TestMetadataFromMap_IgnoresMalformedStock(t *testing.T) {
	meta := MetadataFromMap(map[string]string{MetaPartNumber: "PS1", MetaInStock: "maybe"})
	assert.Nil(t, meta.InStock)
	assert.Equal(t, "PS1", meta.PartNumber)
}

func TestValidateChunk(t *testing.T) {
	valid := &Chunk{
		ID:       "PS1_overview",
		Document: "Part: Door Bin",
		Metadata: ChunkMetadata{PartNumber: "PS1", Category: ChunkCategoryOverview},
	}

	t.Run("valid chunk", func(t *testing.T) {
		assert.NoError(t, ValidateChunk(valid))
	})

	t.Run("nil chunk", func(t *testing.T) {
		assert.Error(t, ValidateChunk(nil))
	})

	t.Run("missing part number", func(t *testing.T) {
		c := *valid
		c.Metadata.PartNumber = ""
		err := ValidateChunk(&c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "part_number")
	})

	t.Run("blank document", func(t *testing.T) {
		c := *valid
		c.Document = "   "
		assert.Error(t, ValidateChunk(&c))
	})

	t.Run("unknown category", func(t *testing.T) {
		c := *valid
		c.Metadata.Category = "general"
		assert.Error(t, ValidateChunk(&c))
	})
}
