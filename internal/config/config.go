package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	IndexBackendChromem  = "chromem"
	IndexBackendPostgres = "postgres"

	EscalationFailureOnTopic  = "on_topic"
	EscalationFailureOffTopic = "off_topic"

	// postgresEmbeddingDimensions matches the vector column in migrations/
	postgresEmbeddingDimensions = 1536

	// Vector sizes of the default embedding model of each provider:
	// text-embedding-3-small and nomic-embed-text.
	openAIEmbeddingDimensions = 1536
	ollamaEmbeddingDimensions = 768
)

// Config is read from PARTS_-prefixed environment variables. Each variable
// may also be given without the prefix, e.g. OPENAI_API_KEY.
type Config struct {
	Port        string `envconfig:"PORT" default:"8000"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty   bool   `envconfig:"LOG_PRETTY" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	Provider string `envconfig:"PROVIDER" default:"openai"`

	OpenAIAPIKey          string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel           string `envconfig:"OPENAI_MODEL" default:"gpt-4"`
	OpenAIClassifierModel string `envconfig:"OPENAI_CLASSIFIER_MODEL" default:"gpt-3.5-turbo"`
	OpenAIEmbeddingModel  string `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-small"`

	// EmbeddingDimensions defaults to the size of the provider's default model.
	EmbeddingDimensions int `envconfig:"EMBEDDING_DIMENSIONS"`

	OllamaURL            string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	OllamaModel          string `envconfig:"OLLAMA_MODEL" default:"llama3.1"`
	OllamaEmbeddingModel string `envconfig:"OLLAMA_EMBEDDING_MODEL" default:"nomic-embed-text"`

	IndexBackend   string `envconfig:"INDEX_BACKEND" default:"chromem"`
	ChromemPath    string `envconfig:"CHROMEM_PATH" default:"./data/chromem"`
	CollectionName string `envconfig:"COLLECTION_NAME" default:"partselect_parts"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`

	MaxContextChunks       int    `envconfig:"MAX_CONTEXT_CHUNKS" default:"5"`
	HistoryTurns           int    `envconfig:"HISTORY_TURNS" default:"10"`
	TopicOnTopicMatches    int    `envconfig:"TOPIC_ON_TOPIC_MATCHES" default:"2"`
	TopicEscalationFailure string `envconfig:"TOPIC_ESCALATION_FAILURE" default:"on_topic"`
	TopicVocabularyFile    string `envconfig:"TOPIC_VOCABULARY_FILE"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"partsdesk-catalog"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PARTS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	cfg.applyProviderDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyProviderDefaults() {
	if c.EmbeddingDimensions != 0 {
		return
	}
	switch c.Provider {
	case ProviderOpenAI:
		c.EmbeddingDimensions = openAIEmbeddingDimensions
	case ProviderOllama:
		c.EmbeddingDimensions = ollamaEmbeddingDimensions
	}
}

// Validate rejects unknown enum values and inconsistent settings
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.Provider)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unknown PROVIDER %q (want %s or %s)", c.Provider, ProviderOpenAI, ProviderOllama)
	}

	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}

	switch c.IndexBackend {
	case IndexBackendChromem:
	case IndexBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for index backend %q", c.IndexBackend)
		}
		if c.EmbeddingDimensions != postgresEmbeddingDimensions {
			return fmt.Errorf("postgres index stores %d-dimension vectors, EMBEDDING_DIMENSIONS is %d",
				postgresEmbeddingDimensions, c.EmbeddingDimensions)
		}
	default:
		return fmt.Errorf("unknown INDEX_BACKEND %q (want %s or %s)", c.IndexBackend, IndexBackendChromem, IndexBackendPostgres)
	}

	switch c.TopicEscalationFailure {
	case EscalationFailureOnTopic, EscalationFailureOffTopic:
	default:
		return fmt.Errorf("unknown TOPIC_ESCALATION_FAILURE %q (want %s or %s)",
			c.TopicEscalationFailure, EscalationFailureOnTopic, EscalationFailureOffTopic)
	}

	if c.MaxContextChunks <= 0 {
		return fmt.Errorf("MAX_CONTEXT_CHUNKS must be positive, got %d", c.MaxContextChunks)
	}
	if c.HistoryTurns <= 0 {
		return fmt.Errorf("HISTORY_TURNS must be positive, got %d", c.HistoryTurns)
	}
	if c.TopicOnTopicMatches <= 0 {
		return fmt.Errorf("TOPIC_ON_TOPIC_MATCHES must be positive, got %d", c.TopicOnTopicMatches)
	}

	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// AllowedOrigins splits CORS_ORIGINS on commas
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// TopicVocabulary is the YAML document that replaces the built-in keyword list
type TopicVocabulary struct {
	Keywords []string `yaml:"keywords"`
}

// LoadTopicVocabulary reads the keyword list from a YAML file. An empty path
// returns nil, meaning the built-in list.
func LoadTopicVocabulary(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topic vocabulary: %w", err)
	}

	var vocab TopicVocabulary
	if err := yaml.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("failed to parse topic vocabulary: %w", err)
	}

	keywords := make([]string, 0, len(vocab.Keywords))
	for _, kw := range vocab.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("topic vocabulary %s has no keywords", path)
	}
	return keywords, nil
}
