package admin

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/partsdesk/internal/config"
	"github.com/cloo-solutions/partsdesk/internal/database"
	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/cloo-solutions/partsdesk/internal/langchain"
	"github.com/cloo-solutions/partsdesk/internal/openai"
	"github.com/cloo-solutions/partsdesk/internal/repository"
	"github.com/cloo-solutions/partsdesk/internal/service"
	"github.com/cloo-solutions/partsdesk/internal/telemetry"
	"github.com/cloo-solutions/partsdesk/internal/vectorstore"
	"github.com/rs/zerolog/log"
	goopenai "github.com/sashabaranov/go-openai"
)

// languageModel is what serve and index need from a provider
type languageModel interface {
	service.LanguageModel
	service.BatchEmbeddingClient
}

// chunkIndex is what serve and index need from a vector index backend
type chunkIndex interface {
	service.VectorIndex
	service.ChunkWriter
	Count(ctx context.Context) (int, error)
}

// loadConfig loads configuration and initializes the global logger from it
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	telemetry.InitLogger(telemetry.LogConfig{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	return cfg, nil
}

// initTelemetry starts Sentry when a DSN is configured. The returned function
// flushes pending events.
func initTelemetry(cfg *config.Config) func() {
	if !cfg.HasSentry() {
		return func() {}
	}

	// 10% sampling in production, everything elsewhere
	sampleRate := 1.0
	if cfg.Environment == "production" {
		sampleRate = 0.1
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: sampleRate,
	})
	if err != nil {
		log.Warn().Err(err).Msg("telemetry init failed, continuing without tracing")
		return func() {}
	}
	return shutdown
}

func newLanguageModel(cfg *config.Config) (languageModel, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		log.Info().
			Str("chat_model", cfg.OpenAIModel).
			Str("embedding_model", cfg.OpenAIEmbeddingModel).
			Msg("using openai provider")
		return openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			EmbeddingModel:      goopenai.EmbeddingModel(cfg.OpenAIEmbeddingModel),
			EmbeddingDimensions: cfg.EmbeddingDimensions,
			ChatModel:           cfg.OpenAIModel,
			ClassifierModel:     cfg.OpenAIClassifierModel,
		}), nil
	case config.ProviderOllama:
		log.Info().
			Str("server", cfg.OllamaURL).
			Str("chat_model", cfg.OllamaModel).
			Str("embedding_model", cfg.OllamaEmbeddingModel).
			Msg("using ollama provider")
		client, err := langchain.NewOllamaClient(langchain.Config{
			ServerURL:      cfg.OllamaURL,
			Model:          cfg.OllamaModel,
			EmbeddingModel: cfg.OllamaEmbeddingModel,
			Dimensions:     cfg.EmbeddingDimensions,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, domain.ErrProviderNotConfigured
	}
}

// openIndex opens the configured vector index backend. The returned close
// function releases its resources.
func openIndex(ctx context.Context, cfg *config.Config, migrate bool) (chunkIndex, func(), error) {
	switch cfg.IndexBackend {
	case config.IndexBackendPostgres:
		if migrate {
			if err := database.Migrate(cfg.DatabaseURL, database.DefaultMigrationsSource); err != nil {
				return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("connected to database")
		return repository.NewChunkRepository(pool), pool.Close, nil
	default:
		index, err := vectorstore.NewChromemIndex(cfg.ChromemPath, cfg.CollectionName)
		if err != nil {
			return nil, nil, err
		}
		log.Info().
			Str("path", cfg.ChromemPath).
			Str("collection", cfg.CollectionName).
			Msg("opened chromem index")
		return index, func() {}, nil
	}
}

// chatConfig maps process configuration onto pipeline settings
func chatConfig(cfg *config.Config) (service.ChatConfig, error) {
	chatCfg := service.DefaultChatConfig()
	chatCfg.MaxContextChunks = cfg.MaxContextChunks
	chatCfg.HistoryTurns = cfg.HistoryTurns
	chatCfg.Topic.OnTopicMatches = cfg.TopicOnTopicMatches
	chatCfg.Topic.EscalationFailure = service.EscalationFailurePolicy(cfg.TopicEscalationFailure)

	vocabulary, err := config.LoadTopicVocabulary(cfg.TopicVocabularyFile)
	if err != nil {
		return chatCfg, err
	}
	if vocabulary != nil {
		chatCfg.Topic.Vocabulary = vocabulary
		log.Info().
			Str("file", cfg.TopicVocabularyFile).
			Int("keywords", len(vocabulary)).
			Msg("loaded topic vocabulary")
	}

	return chatCfg, nil
}
