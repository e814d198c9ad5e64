package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAPIURL = "PARTSDESK_API_URL"

	defaultAPIURL = "http://localhost:8000"

	// answers wait on retrieval plus a full completion
	defaultTimeout = 90 * time.Second
)

type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClientWithCmd resolves the base URL from the --api-url flag, then
// PARTSDESK_API_URL, then the default. cmd may be nil.
func NewAPIClientWithCmd(cmd *cobra.Command) *APIClient {
	_ = godotenv.Load()

	var baseURL string
	if cmd != nil {
		if flagURL, err := cmd.Flags().GetString("api-url"); err == nil && flagURL != "" {
			baseURL = flagURL
		}
	}
	if baseURL == "" {
		baseURL = os.Getenv(envAPIURL)
	}
	if baseURL == "" {
		baseURL = defaultAPIURL
	}

	return NewAPIClientWithConfig(baseURL, nil)
}

// NewAPIClientWithConfig creates an APIClient. A nil httpClient uses a
// client with the default timeout.
func NewAPIClientWithConfig(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// APIError represents an error from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

type chatRequest struct {
	Message             string               `json:"message"`
	ConversationHistory []domain.ChatMessage `json:"conversation_history"`
	PageURL             string               `json:"page_url,omitempty"`
}

// Chat posts one message to /api/chat.
func (c *APIClient) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	history := req.History
	if history == nil {
		history = []domain.ChatMessage{}
	}

	var resp domain.ChatResponse
	err := c.do(ctx, http.MethodPost, "/api/chat", chatRequest{
		Message:             req.Message,
		ConversationHistory: history,
		PageURL:             req.PageURL,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status string `json:"status"`
	Chunks *int   `json:"chunks,omitempty"`
}

// Health fetches the server health.
func (c *APIClient) Health(ctx context.Context) (*HealthStatus, error) {
	var envelope struct {
		Data HealthStatus `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		message := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
