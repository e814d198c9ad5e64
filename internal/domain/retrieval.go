package domain

// RetrievalTier names the fallback step that produced a retrieval result
type RetrievalTier string

const (
	RetrievalTierNone       RetrievalTier = "none"
	RetrievalTierEntity     RetrievalTier = "entity"
	RetrievalTierIntent     RetrievalTier = "intent"
	RetrievalTierUnfiltered RetrievalTier = "unfiltered"
)

// Filter is an equality filter on one metadata field
type Filter struct {
	Field string
	Value string
}

// NewFilter returns an equality filter on the given metadata field
func NewFilter(field, value string) *Filter {
	return &Filter{Field: field, Value: value}
}

// Hit is one retrieved chunk with its cosine distance (lower is closer)
type Hit struct {
	ID       string
	Document string
	Metadata ChunkMetadata
	Distance float32
}

// RetrievalResult is the ordered output of a nearest-neighbor query.
// An empty result is a successful query that matched nothing.
type RetrievalResult struct {
	Hits []Hit
	Tier RetrievalTier
}

// Empty reports whether the result carries no documents
func (r *RetrievalResult) Empty() bool {
	return r == nil || len(r.Hits) == 0
}

// IsFilterableField reports whether index backends accept an equality filter on field
func IsFilterableField(field string) bool {
	switch field {
	case MetaPartNumber, MetaChunkCategory, MetaApplianceType:
		return true
	}
	return false
}
