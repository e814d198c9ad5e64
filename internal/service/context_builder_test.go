package service

import (
	"testing"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildContext_EmptyResult(t *testing.T) {
	assert.Equal(t, "No relevant information found in the database.", BuildContext(emptyResult()))
	assert.Equal(t, NoContextSentinel, BuildContext(nil))
}

func TestBuildContext_RendersBlocksInOrder(t *testing.T) {
	result := resultOf(
		domain.Hit{
			Document: "Part: Door Shelf Bin",
			Metadata: domain.ChunkMetadata{
				PartNumber: "PS11752778",
				Category:   domain.ChunkCategoryOverview,
				SourceURL:  "https://www.partselect.com/PS11752778.htm",
			},
		},
		domain.Hit{
			Document: "Installation instructions for PS2",
			Metadata: domain.ChunkMetadata{PartNumber: "PS2", Category: domain.ChunkCategoryInstallation},
		},
		domain.Hit{
			Document: "legacy row",
			Metadata: domain.ChunkMetadata{PartNumber: "PS3"},
		},
	)

	expected := "[Source 1 - overview] (https://www.partselect.com/PS11752778.htm)\nPart: Door Shelf Bin" +
		"\n\n---\n\n" +
		"[Source 2 - installation]\nInstallation instructions for PS2" +
		"\n\n---\n\n" +
		"[Source 3 - general]\nlegacy row"

	assert.Equal(t, expected, BuildContext(result))
}
