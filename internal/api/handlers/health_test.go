package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChunkCounter struct {
	mock.Mock
}

func (m *MockChunkCounter) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type healthEnvelope struct {
	Data struct {
		Status string `json:"status"`
		Chunks *int   `json:"chunks"`
	} `json:"data"`
}

func getHealth(t *testing.T, handler *HealthHandler) healthEnvelope {
	t.Helper()
	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var env healthEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHealthHandler_WithoutIndex(t *testing.T) {
	env := getHealth(t, NewHealthHandler(nil))

	assert.Equal(t, "ok", env.Data.Status)
	assert.Nil(t, env.Data.Chunks)
}

func TestHealthHandler_ReportsChunkCount(t *testing.T) {
	counter := new(MockChunkCounter)
	counter.On("Count", mock.Anything).Return(42, nil)

	env := getHealth(t, NewHealthHandler(counter))

	assert.Equal(t, "ok", env.Data.Status)
	require.NotNil(t, env.Data.Chunks)
	assert.Equal(t, 42, *env.Data.Chunks)
}

func TestHealthHandler_IndexFailure(t *testing.T) {
	counter := new(MockChunkCounter)
	counter.On("Count", mock.Anything).Return(0, errors.New("connection refused"))

	env := getHealth(t, NewHealthHandler(counter))

	assert.Equal(t, "degraded", env.Data.Status)
	assert.Nil(t, env.Data.Chunks)
}
