// Package langchain adapts langchaingo's Ollama provider to the embedding,
// chat and classification contracts used by the query pipeline.
package langchain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	DefaultServerURL      = "http://localhost:11434"
	DefaultModel          = "llama3.1"
	DefaultEmbeddingModel = "nomic-embed-text"

	chatTemperature     = 0.1
	chatMaxTokens       = 1024
	classifierMaxTokens = 20
)

var (
	ErrEmptyText = errors.New("text cannot be empty")
	ErrNoChoices = errors.New("model returned no choices")
)

// ContentGenerator is the subset of llms.Model the client calls.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

type Config struct {
	ServerURL      string
	Model          string
	EmbeddingModel string
	// Dimensions, when positive, is enforced on every returned vector.
	Dimensions int
}

// Client serves embeddings and completions from a local Ollama server.
type Client struct {
	llm        ContentGenerator
	embedder   embeddings.Embedder
	dimensions int
}

// NewClient builds a client from explicit dependencies.
func NewClient(llm ContentGenerator, embedder embeddings.Embedder, dimensions int) *Client {
	return &Client{llm: llm, embedder: embedder, dimensions: dimensions}
}

// NewOllamaClient connects the chat and embedding models of one Ollama server.
func NewOllamaClient(cfg Config) (*Client, error) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}

	chatLLM, err := ollama.New(ollama.WithServerURL(cfg.ServerURL), ollama.WithModel(cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama chat model: %w", err)
	}
	embedLLM, err := ollama.New(ollama.WithServerURL(cfg.ServerURL), ollama.WithModel(cfg.EmbeddingModel))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama embedding model: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(embedLLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return NewClient(chatLLM, embedder, cfg.Dimensions), nil
}

func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	vec, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if err := c.checkDimensions(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (c *Client) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyText
	}
	vecs, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vecs))
	}
	for _, v := range vecs {
		if err := c.checkDimensions(v); err != nil {
			return nil, err
		}
	}
	return vecs, nil
}

// Chat sends the system prompt followed by the conversation.
func (c *Client) Chat(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages)+1)
	content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	for _, m := range messages {
		role := llms.ChatMessageTypeHuman
		if m.Role == domain.ChatRoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, m.Content))
	}

	reply, err := c.generate(ctx, content, llms.WithTemperature(chatTemperature), llms.WithMaxTokens(chatMaxTokens))
	if err != nil {
		return "", fmt.Errorf("failed to generate chat reply: %w", err)
	}
	return reply, nil
}

func (c *Client) Classify(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}
	reply, err := c.generate(ctx, content, llms.WithTemperature(0), llms.WithMaxTokens(classifierMaxTokens))
	if err != nil {
		return "", fmt.Errorf("failed to classify: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func (c *Client) generate(ctx context.Context, content []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	resp, err := c.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Content, nil
}

func (c *Client) checkDimensions(vec []float32) error {
	if c.dimensions > 0 && len(vec) != c.dimensions {
		return fmt.Errorf("embedding has %d dimensions, want %d", len(vec), c.dimensions)
	}
	return nil
}
