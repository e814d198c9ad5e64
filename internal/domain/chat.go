package domain

import "strings"

// ChatRole identifies the author of a conversation turn
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of the conversation history
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ChatRequest is the logical input of the query-resolution pipeline
type ChatRequest struct {
	Message string
	History []ChatMessage
	PageURL string
}

// PartCard is a compact reference to a part shown next to the answer
type PartCard struct {
	PartNumber    string `json:"ps_number"`
	Name          string `json:"name"`
	Price         string `json:"price,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	PartURL       string `json:"part_url,omitempty"`
	InStock       *bool  `json:"in_stock,omitempty"`
	OEMPartNumber string `json:"oem_part_number,omitempty"`
}

// ChatResponse is the logical output of the query-resolution pipeline
type ChatResponse struct {
	Role             ChatRole   `json:"role"`
	Content          string     `json:"content"`
	Parts            []PartCard `json:"parts"`
	SuggestedQueries []string   `json:"suggested_queries"`
}

// ValidateChatRequest validates a ChatRequest at the transport boundary
func ValidateChatRequest(req *ChatRequest) error {
	if req == nil || strings.TrimSpace(req.Message) == "" {
		return ErrEmptyMessage
	}

	for _, msg := range req.History {
		if msg.Role != ChatRoleUser && msg.Role != ChatRoleAssistant {
			return ErrInvalidChatRole
		}
	}

	return nil
}
