package service

import (
	"context"
	"testing"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbeddingClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) Search(ctx context.Context, embedding []float32, limit int, filter *domain.Filter) (*domain.RetrievalResult, error) {
	args := m.Called(ctx, embedding, limit, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RetrievalResult), args.Error(1)
}

type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) Chat(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, error) {
	args := m.Called(ctx, systemPrompt, messages)
	return args.String(0), args.Error(1)
}

type MockChunkWriter struct {
	mock.Mock
}

func (m *MockChunkWriter) Upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error {
	args := m.Called(ctx, chunks, embeddings)
	return args.Error(0)
}

// MockLanguageModel combines the provider mocks behind one value
type MockLanguageModel struct {
	*MockEmbeddingClient
	*MockChatClient
	*MockClassifier
}

func newMockLanguageModel() *MockLanguageModel {
	return &MockLanguageModel{
		MockEmbeddingClient: new(MockEmbeddingClient),
		MockChatClient:      new(MockChatClient),
		MockClassifier:      new(MockClassifier),
	}
}

func hit(part string, category domain.ChunkCategory) domain.Hit {
	return domain.Hit{
		ID:       domain.ChunkID(part, category),
		Document: "document for " + part,
		Metadata: domain.ChunkMetadata{
			PartNumber: part,
			Name:       "Part " + part,
			Category:   category,
			SourceURL:  "https://www.partselect.com/" + part + ".htm",
		},
	}
}

func resultOf(hits ...domain.Hit) *domain.RetrievalResult {
	return &domain.RetrievalResult{Hits: hits}
}

func emptyResult() *domain.RetrievalResult {
	return &domain.RetrievalResult{}
}

// tracedContext returns a context carrying a sampled transaction and a
// function that finishes it and returns the captured transaction event.
func tracedContext(t *testing.T) (context.Context, func() *sentry.Event) {
	t.Helper()

	transport := &sentry.MockTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              "http://public@example.com/1",
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Transport:        transport,
	})
	require.NoError(t, err)

	hub := sentry.NewHub(client, sentry.NewScope())
	tx := sentry.StartTransaction(sentry.SetHubOnContext(context.Background(), hub), "test")

	return tx.Context(), func() *sentry.Event {
		tx.Finish()
		events := transport.Events()
		require.Len(t, events, 1)
		return events[0]
	}
}

func spanByOp(t *testing.T, event *sentry.Event, op string) *sentry.Span {
	t.Helper()
	for _, span := range event.Spans {
		if span.Op == op {
			return span
		}
	}
	require.Failf(t, "span not recorded", "no span with op %q", op)
	return nil
}
