package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func newChatServer(t *testing.T, handle func(t *testing.T, body map[string]interface{}) (int, interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if r.Body != nil && r.Method == http.MethodPost {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		}
		status, resp := handle(t, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAPIClient_Chat(t *testing.T) {
	srv := newChatServer(t, func(t *testing.T, body map[string]interface{}) (int, interface{}) {
		assert.Equal(t, "How do I install PS11752778?", body["message"])
		assert.Equal(t, "https://www.partselect.com/PS11752778.htm", body["page_url"])
		assert.Equal(t, []interface{}{}, body["conversation_history"])
		return http.StatusOK, domain.ChatResponse{
			Role:             domain.ChatRoleAssistant,
			Content:          "Slide the bin onto the door.",
			Parts:            []domain.PartCard{{PartNumber: "PS11752778", Name: "Door Shelf Bin"}},
			SuggestedQueries: []string{"a", "b", "c"},
		}
	})

	client := NewAPIClientWithConfig(srv.URL+"/", nil)
	resp, err := client.Chat(context.Background(), domain.ChatRequest{
		Message: "How do I install PS11752778?",
		PageURL: "https://www.partselect.com/PS11752778.htm",
	})

	require.NoError(t, err)
	assert.Equal(t, "Slide the bin onto the door.", resp.Content)
	require.Len(t, resp.Parts, 1)
	assert.Equal(t, "PS11752778", resp.Parts[0].PartNumber)
}

func TestAPIClient_ChatError(t *testing.T) {
	srv := newChatServer(t, func(t *testing.T, body map[string]interface{}) (int, interface{}) {
		return http.StatusBadRequest, map[string]string{"error": "message is required"}
	})

	_, err := NewAPIClientWithConfig(srv.URL, nil).Chat(context.Background(), domain.ChatRequest{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "message is required", apiErr.Message)
}

func TestAPIClient_Health(t *testing.T) {
	srv := newChatServer(t, func(t *testing.T, body map[string]interface{}) (int, interface{}) {
		return http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"status": "ok", "chunks": 12}}
	})

	status, err := NewAPIClientWithConfig(srv.URL, nil).Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	require.NotNil(t, status.Chunks)
	assert.Equal(t, 12, *status.Chunks)
}

func TestNewAPIClientWithCmd_FlagWins(t *testing.T) {
	t.Setenv(envAPIURL, "http://env.example")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("api-url", "", "")
	require.NoError(t, cmd.Flags().Set("api-url", "http://flag.example"))

	assert.Equal(t, "http://flag.example", NewAPIClientWithCmd(cmd).baseURL)
	assert.Equal(t, "http://env.example", NewAPIClientWithCmd(nil).baseURL)
}

func TestNewAPIClientWithCmd_Default(t *testing.T) {
	t.Setenv(envAPIURL, "")

	assert.Equal(t, defaultAPIURL, NewAPIClientWithCmd(nil).baseURL)
}

func TestAskCmd_PrintsAnswer(t *testing.T) {
	srv := newChatServer(t, func(t *testing.T, body map[string]interface{}) (int, interface{}) {
		assert.Equal(t, "is it compatible with WDT780SAEM1", body["message"])
		return http.StatusOK, domain.ChatResponse{
			Role:    domain.ChatRoleAssistant,
			Content: "Yes.",
			Parts: []domain.PartCard{
				{PartNumber: "PS11752778", Name: "Door Shelf Bin", Price: "$36.08", InStock: boolPtr(false)},
			},
			SuggestedQueries: []string{"How can I install part PS11752778?"},
		}
	})

	root := &cobra.Command{Use: "partsdesk"}
	root.PersistentFlags().Bool("output", false, "")
	root.PersistentFlags().String("api-url", "", "")
	root.AddCommand(AskCmd())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"ask", "is", "it", "compatible", "with", "WDT780SAEM1", "--api-url", srv.URL})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Yes.")
	assert.Contains(t, out.String(), "PS11752778  Door Shelf Bin  $36.08  (out of stock)")
	assert.Contains(t, out.String(), "  - How can I install part PS11752778?")
}
