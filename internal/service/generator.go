package service

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/cloo-solutions/partsdesk/internal/telemetry"
	"github.com/getsentry/sentry-go"
)

// DefaultHistoryTurns is how many prior turns are sent with each question
const DefaultHistoryTurns = 10

// ChatClient generates a reply from a system prompt and a conversation
type ChatClient interface {
	Chat(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, error)
}

// AnswerGenerator asks the generation provider for a grounded answer
type AnswerGenerator struct {
	client       ChatClient
	historyTurns int
}

// NewAnswerGenerator creates an AnswerGenerator keeping historyTurns prior turns
func NewAnswerGenerator(client ChatClient, historyTurns int) *AnswerGenerator {
	if historyTurns <= 0 {
		historyTurns = DefaultHistoryTurns
	}
	return &AnswerGenerator{client: client, historyTurns: historyTurns}
}

// Generate sends the system prompt, the most recent history and the message.
// Older turns are dropped.
func (g *AnswerGenerator) Generate(ctx context.Context, contextText string, history []domain.ChatMessage, message string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnswerGenerator.Generate", telemetry.SpanAttributes{
		Operation: "generate",
	})
	defer span.End()

	messages := append(recentHistory(history, g.historyTurns), domain.ChatMessage{
		Role:    domain.ChatRoleUser,
		Content: message,
	})

	reply, err := g.client.Chat(ctx, SystemPrompt(contextText), messages)
	if err != nil {
		span.SetStatus(sentry.SpanStatusInternalError)
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	return reply, nil
}

// recentHistory returns a copy of the last n turns
func recentHistory(history []domain.ChatMessage, n int) []domain.ChatMessage {
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]domain.ChatMessage, len(history), len(history)+1)
	copy(out, history)
	return out
}
