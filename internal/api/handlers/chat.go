package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloo-solutions/partsdesk/internal/api"
	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/cloo-solutions/partsdesk/internal/service"
	"github.com/cloo-solutions/partsdesk/internal/telemetry"
	"github.com/rs/zerolog"
)

type ChatHandler struct {
	svc service.ChatServiceInterface
}

func NewChatHandler(svc service.ChatServiceInterface) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message             string               `json:"message"`
	ConversationHistory []ChatMessageRequest `json:"conversation_history"`
	PageURL             string               `json:"page_url"`
}

func (req ChatRequest) toDomain() domain.ChatRequest {
	history := make([]domain.ChatMessage, 0, len(req.ConversationHistory))
	for _, msg := range req.ConversationHistory {
		history = append(history, domain.ChatMessage{
			Role:    domain.ChatRole(msg.Role),
			Content: msg.Content,
		})
	}

	return domain.ChatRequest{
		Message: req.Message,
		History: history,
		PageURL: req.PageURL,
	}
}

// Chat answers one customer message. The response body is the chat payload
// itself, not wrapped in a data envelope.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chatReq := req.toDomain()
	if err := domain.ValidateChatRequest(&chatReq); err != nil {
		api.HandleError(w, err)
		return
	}

	resp, err := h.svc.Answer(r.Context(), chatReq)
	if err != nil {
		if api.DomainErrorToHTTP(err) >= http.StatusInternalServerError {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("chat request failed")
			telemetry.CaptureError(r.Context(), err)
		}
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, resp)
}
