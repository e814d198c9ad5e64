package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloo-solutions/partsdesk/internal/api/handlers"
	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Answer(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatResponse), args.Error(1)
}

type MockChunkCounter struct {
	mock.Mock
}

func (m *MockChunkCounter) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func setupRouter(origins ...string) (http.Handler, *MockChatService, *MockChunkCounter) {
	chatSvc := new(MockChatService)
	counter := new(MockChunkCounter)

	router := NewRouter(RouterConfig{
		Logger:         zerolog.Nop(),
		AllowedOrigins: origins,
		ChatHandler:    handlers.NewChatHandler(chatSvc),
		HealthHandler:  handlers.NewHealthHandler(counter),
	})
	return router, chatSvc, counter
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, counter := setupRouter()
	counter.On("Count", mock.Anything).Return(7, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, float64(7), data["chunks"])
}

func TestRouter_ChatEndpoint(t *testing.T) {
	router, chatSvc, _ := setupRouter()
	chatSvc.On("Answer", mock.Anything, mock.MatchedBy(func(req domain.ChatRequest) bool {
		return req.Message == "How can I install part number PS11752778?"
	})).Return(&domain.ChatResponse{
		Role:             domain.ChatRoleAssistant,
		Content:          "Here is how.",
		Parts:            []domain.PartCard{},
		SuggestedQueries: []string{"a", "b", "c"},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"How can I install part number PS11752778?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp domain.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Here is how.", resp.Content)
	chatSvc.AssertExpectations(t)
}

func TestRouter_ChatRejectsGet(t *testing.T) {
	router, chatSvc, _ := setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	chatSvc.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything)
}

func TestRouter_ChatBodyLimit(t *testing.T) {
	router, chatSvc, _ := setupRouter()

	body := `{"message":"` + strings.Repeat("a", int(maxBodyBytes)) + `"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	chatSvc.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _, _ := setupRouter("https://www.partselect.com")

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://www.partselect.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "https://www.partselect.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSRejectsUnknownOrigin(t *testing.T) {
	router, _, counter := setupRouter("https://www.partselect.com")
	counter.On("Count", mock.Anything).Return(0, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSDefaultsToAnyOrigin(t *testing.T) {
	router, _, counter := setupRouter()
	counter.On("Count", mock.Anything).Return(0, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
