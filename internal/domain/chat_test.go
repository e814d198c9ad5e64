package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChatRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *ChatRequest
		wantErr error
	}{
		{"nil request", nil, ErrEmptyMessage},
		{"blank message", &ChatRequest{Message: "  "}, ErrEmptyMessage},
		{"message only", &ChatRequest{Message: "hi"}, nil},
		{
			"valid history",
			&ChatRequest{Message: "hi", History: []ChatMessage{
				{Role: ChatRoleUser, Content: "a"},
				{Role: ChatRoleAssistant, Content: "b"},
			}},
			nil,
		},
		{
			"system role rejected",
			&ChatRequest{Message: "hi", History: []ChatMessage{{Role: "system", Content: "x"}}},
			ErrInvalidChatRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChatRequest(tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestEntities_PrimaryPart(t *testing.T) {
	_, ok := Entities{}.PrimaryPart()
	assert.False(t, ok)

	part, ok := Entities{PartNumbers: []string{"PS2", "PS1"}}.PrimaryPart()
	assert.True(t, ok)
	assert.Equal(t, "PS2", part)
}

func TestRetrievalResult_Empty(t *testing.T) {
	var nilResult *RetrievalResult
	assert.True(t, nilResult.Empty())
	assert.True(t, (&RetrievalResult{}).Empty())
	assert.False(t, (&RetrievalResult{Hits: []Hit{{ID: "a"}}}).Empty())
}

func TestTopicVerdict_String(t *testing.T) {
	assert.Equal(t, "on_topic", TopicOnTopic.String())
	assert.Equal(t, "off_topic", TopicOffTopic.String())
	assert.Equal(t, "uncertain", TopicUncertain.String())
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewDomainErrorWithCause(ErrCodeUpstream, "embedding provider failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[UPSTREAM_ERROR] embedding provider failed: boom", err.Error())
}
