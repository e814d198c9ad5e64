package service

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/cloo-solutions/partsdesk/internal/telemetry"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
)

// DefaultMaxContextChunks is the number of neighbours requested per tier
const DefaultMaxContextChunks = 5

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex answers nearest-neighbour queries with an optional equality filter.
// A query that matches nothing returns an empty result, not an error.
type VectorIndex interface {
	Search(ctx context.Context, embedding []float32, limit int, filter *domain.Filter) (*domain.RetrievalResult, error)
}

// Retriever runs the entity, intent and unfiltered search tiers in order
// until one of them returns documents.
type Retriever struct {
	embedder EmbeddingClient
	index    VectorIndex
	limit    int
}

// NewRetriever creates a Retriever requesting up to limit neighbours per tier
func NewRetriever(embedder EmbeddingClient, index VectorIndex, limit int) *Retriever {
	if limit <= 0 {
		limit = DefaultMaxContextChunks
	}
	return &Retriever{embedder: embedder, index: index, limit: limit}
}

type retrievalTier struct {
	tier   domain.RetrievalTier
	filter *domain.Filter
}

// Retrieve embeds the message once and reuses the vector across every tier.
// When all tiers come back empty the result is empty with tier "none".
func (r *Retriever) Retrieve(ctx context.Context, message string, query domain.AnalyzedQuery) (*domain.RetrievalResult, error) {
	primary, _ := query.Entities.PrimaryPart()
	ctx, span := telemetry.StartSpan(ctx, "Retriever.Retrieve", telemetry.SpanAttributes{
		Intent:     string(query.Intent),
		PartNumber: primary,
		Operation:  "retrieve",
	})
	defer span.End()

	embedding, err := r.embedder.GenerateEmbedding(ctx, message)
	if err != nil {
		span.SetStatus(sentry.SpanStatusInternalError)
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}

	for _, t := range r.plan(query) {
		result, err := r.index.Search(ctx, embedding, r.limit, t.filter)
		if err != nil {
			span.SetStatus(sentry.SpanStatusInternalError)
			return nil, fmt.Errorf("%w (%s tier): %w", domain.ErrIndexQueryFailed, t.tier, err)
		}
		if !result.Empty() {
			result.Tier = t.tier
			span.SetTag("retrieval_tier", string(t.tier))
			return result, nil
		}
		telemetry.AddBreadcrumb(ctx, "retrieval", fmt.Sprintf("%s tier returned no documents", t.tier))
		log.Ctx(ctx).Debug().Str("tier", string(t.tier)).Msg("retrieval tier empty, falling back")
	}

	span.SetTag("retrieval_tier", string(domain.RetrievalTierNone))
	return &domain.RetrievalResult{Tier: domain.RetrievalTierNone}, nil
}

// plan lists the tiers to try. The intent tier is unfiltered for intents
// without a category, in which case the separate unfiltered tier is dropped.
func (r *Retriever) plan(query domain.AnalyzedQuery) []retrievalTier {
	tiers := make([]retrievalTier, 0, 3)

	if part, ok := query.Entities.PrimaryPart(); ok {
		tiers = append(tiers, retrievalTier{
			tier:   domain.RetrievalTierEntity,
			filter: domain.NewFilter(domain.MetaPartNumber, part),
		})
	}

	if category, ok := IntentCategory(query.Intent); ok {
		tiers = append(tiers, retrievalTier{
			tier:   domain.RetrievalTierIntent,
			filter: domain.NewFilter(domain.MetaChunkCategory, string(category)),
		})
	}

	return append(tiers, retrievalTier{tier: domain.RetrievalTierUnfiltered})
}

// IntentCategory maps an intent to the chunk category that scopes its search
func IntentCategory(intent domain.Intent) (domain.ChunkCategory, bool) {
	switch intent {
	case domain.IntentCompatibilityCheck:
		return domain.ChunkCategoryCompatibility, true
	case domain.IntentTroubleshoot:
		return domain.ChunkCategoryTroubleshooting, true
	case domain.IntentInstallationHelp, domain.IntentPartLookup, domain.IntentGeneral:
		return "", false
	}
	return "", false
}
