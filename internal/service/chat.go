package service

import (
	"context"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/cloo-solutions/partsdesk/internal/telemetry"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
)

// ChatServiceInterface answers one customer message
type ChatServiceInterface interface {
	Answer(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}

// ChatService runs the query-resolution pipeline. Its collaborators are
// created once by the hosting process and shared by concurrent requests.
type ChatService struct {
	gate      *TopicGate
	analyzer  *QueryAnalyzer
	retriever *Retriever
	generator *AnswerGenerator
}

// NewChatService creates a ChatService from its pipeline stages
func NewChatService(gate *TopicGate, analyzer *QueryAnalyzer, retriever *Retriever, generator *AnswerGenerator) *ChatService {
	return &ChatService{
		gate:      gate,
		analyzer:  analyzer,
		retriever: retriever,
		generator: generator,
	}
}

// ChatConfig holds the tunables of the pipeline stages
type ChatConfig struct {
	Topic            TopicGateConfig
	MaxContextChunks int
	HistoryTurns     int
}

// DefaultChatConfig returns the default pipeline settings
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		Topic:            DefaultTopicGateConfig(),
		MaxContextChunks: DefaultMaxContextChunks,
		HistoryTurns:     DefaultHistoryTurns,
	}
}

// LanguageModel is the provider surface the pipeline needs
type LanguageModel interface {
	EmbeddingClient
	ChatClient
	ClassifierClient
}

// NewChatServiceWithConfig wires every stage to one provider and one index
func NewChatServiceWithConfig(cfg ChatConfig, llm LanguageModel, index VectorIndex, extractor EntityExtractor) *ChatService {
	return NewChatService(
		NewTopicGate(llm, cfg.Topic),
		NewQueryAnalyzer(extractor),
		NewRetriever(llm, index, cfg.MaxContextChunks),
		NewAnswerGenerator(llm, cfg.HistoryTurns),
	)
}

// Answer resolves one message. Off-topic messages short-circuit before any
// retrieval or generation call.
func (s *ChatService) Answer(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.Answer", telemetry.SpanAttributes{
		Operation: "answer",
	})
	defer span.End()

	if err := domain.ValidateChatRequest(&req); err != nil {
		return nil, err
	}

	logger := log.Ctx(ctx)

	if !s.gate.Allow(ctx, req.Message) {
		span.SetTag("topic", domain.TopicOffTopic.String())
		logger.Info().Msg("message rejected as off topic")
		return OffTopicResponse(), nil
	}

	query := s.analyzer.Analyze(req.Message, req.PageURL)
	primary, _ := query.Entities.PrimaryPart()
	span.SetTag("intent", string(query.Intent))
	span.SetTag("part_number", primary)

	result, err := s.retriever.Retrieve(ctx, req.Message, query)
	if err != nil {
		span.SetStatus(sentry.SpanStatusInternalError)
		return nil, err
	}

	logger.Info().
		Str("intent", string(query.Intent)).
		Strs("part_numbers", query.Entities.PartNumbers).
		Str("tier", string(result.Tier)).
		Int("hits", len(result.Hits)).
		Msg("retrieval complete")

	content, err := s.generator.Generate(ctx, BuildContext(result), req.History, req.Message)
	if err != nil {
		span.SetStatus(sentry.SpanStatusInternalError)
		return nil, err
	}

	return &domain.ChatResponse{
		Role:             domain.ChatRoleAssistant,
		Content:          content,
		Parts:            ExtractPartCards(result),
		SuggestedQueries: SuggestQueries(query.Intent, query.Entities),
	}, nil
}
