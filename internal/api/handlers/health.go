package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/partsdesk/internal/api"
	"github.com/rs/zerolog"
)

// ChunkCounter reports how many chunks the vector index holds
type ChunkCounter interface {
	Count(ctx context.Context) (int, error)
}

type HealthHandler struct {
	index ChunkCounter
}

// NewHealthHandler creates a health handler. index may be nil.
func NewHealthHandler(index ChunkCounter) *HealthHandler {
	return &HealthHandler{index: index}
}

type HealthResponse struct {
	Status string `json:"status"`
	Chunks *int   `json:"chunks,omitempty"`
}

// Health reports liveness. An unreachable index yields status "degraded"
// with a 200.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}

	if h.index != nil {
		count, err := h.index.Count(r.Context())
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health: index count failed")
			resp.Status = "degraded"
		} else {
			resp.Chunks = &count
		}
	}

	api.Success(w, http.StatusOK, resp)
}
