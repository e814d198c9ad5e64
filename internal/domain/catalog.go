package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ChunkCategory identifies which facet of a part a chunk describes
type ChunkCategory string

const (
	ChunkCategoryOverview      ChunkCategory = "overview"
	ChunkCategoryCompatibility ChunkCategory = "compatibility"
	ChunkCategoryInstallation  ChunkCategory = "installation"
	// ChunkCategoryTroubleshooting is queried for troubleshooting intents but the
	// catalog indexer does not emit it, so those queries fall through to the next tier.
	ChunkCategoryTroubleshooting ChunkCategory = "troubleshooting"
)

// Metadata field names shared by every index backend.
const (
	MetaPartNumber    = "part_number"
	MetaName          = "name"
	MetaApplianceType = "appliance_type"
	MetaOEMPartNumber = "oem_part_number"
	MetaPrice         = "price"
	MetaImageURL      = "image_url"
	MetaSourceURL     = "source_url"
	MetaInStock       = "in_stock"
	MetaChunkCategory = "chunk_category"
)

// ChunkMetadata is the typed form of the metadata stored alongside each chunk
type ChunkMetadata struct {
	PartNumber    string
	Name          string
	ApplianceType string
	OEMPartNumber string
	Price         string
	ImageURL      string
	SourceURL     string
	InStock       *bool
	Category      ChunkCategory
}

// Chunk is one retrievable unit of catalog text tied to one part
type Chunk struct {
	ID       string
	Document string
	Metadata ChunkMetadata
}

// CatalogPart is one record of the line-oriented catalog stream
type CatalogPart struct {
	PartNumber               string   `json:"ps_number"`
	Name                     string   `json:"name"`
	ApplianceType            string   `json:"appliance_type"`
	OEMPartNumber            string   `json:"oem_part_number"`
	Price                    string   `json:"price"`
	InStock                  *bool    `json:"in_stock"`
	Description              string   `json:"description"`
	SymptomsFixed            string   `json:"symptoms_fixed"`
	CompatibleModels         []string `json:"compatible_models"`
	InstallationInstructions string   `json:"installation_instructions"`
	ImageURL                 string   `json:"image_url"`
	SourceURL                string   `json:"source_url"`
}

// ChunkID derives the stable chunk identifier from part number and category
func ChunkID(partNumber string, category ChunkCategory) string {
	return fmt.Sprintf("%s_%s", partNumber, category)
}

// IsValid reports whether the category is one of the known values
func (c ChunkCategory) IsValid() bool {
	switch c {
	case ChunkCategoryOverview, ChunkCategoryCompatibility,
		ChunkCategoryInstallation, ChunkCategoryTroubleshooting:
		return true
	}
	return false
}

// ToMap flattens the metadata into the string map used by the index backends.
// Empty optional fields are still written so every chunk carries the same keys.
func (m ChunkMetadata) ToMap() map[string]string {
	out := map[string]string{
		MetaPartNumber:    m.PartNumber,
		MetaName:          m.Name,
		MetaApplianceType: m.ApplianceType,
		MetaOEMPartNumber: m.OEMPartNumber,
		MetaPrice:         m.Price,
		MetaImageURL:      m.ImageURL,
		MetaSourceURL:     m.SourceURL,
		MetaChunkCategory: string(m.Category),
	}
	if m.InStock != nil {
		out[MetaInStock] = strconv.FormatBool(*m.InStock)
	}
	return out
}

// MetadataFromMap rebuilds typed metadata from an index row
func MetadataFromMap(values map[string]string) ChunkMetadata {
	meta := ChunkMetadata{
		PartNumber:    values[MetaPartNumber],
		Name:          values[MetaName],
		ApplianceType: values[MetaApplianceType],
		OEMPartNumber: values[MetaOEMPartNumber],
		Price:         values[MetaPrice],
		ImageURL:      values[MetaImageURL],
		SourceURL:     values[MetaSourceURL],
		Category:      ChunkCategory(values[MetaChunkCategory]),
	}
	if raw, ok := values[MetaInStock]; ok {
		if v, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			meta.InStock = &v
		}
	}
	return meta
}

// ValidateChunk validates a Chunk before it is written to an index
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("chunk ID is required")
	}

	if strings.TrimSpace(c.Document) == "" {
		return fmt.Errorf("chunk Document is required")
	}

	if c.Metadata.PartNumber == "" {
		return fmt.Errorf("chunk part_number is required")
	}

	if !c.Metadata.Category.IsValid() {
		return fmt.Errorf("chunk category is invalid: %s", c.Metadata.Category)
	}

	return nil
}
