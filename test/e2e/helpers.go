//go:build e2e

package e2e

import (
	"context"
	"hash/fnv"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cloo-solutions/partsdesk/internal/api/handlers"
	"github.com/cloo-solutions/partsdesk/internal/cli/client"
	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/cloo-solutions/partsdesk/internal/repository"
	"github.com/cloo-solutions/partsdesk/internal/server"
	"github.com/cloo-solutions/partsdesk/internal/service"
	"github.com/cloo-solutions/partsdesk/internal/storage"
	"github.com/cloo-solutions/partsdesk/internal/testutil"
	"github.com/rs/zerolog"
)

const (
	catalogBucket = "catalogs"
	dimensions    = 1536
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T        *testing.T
	Ctx      context.Context
	DB       *testutil.CatalogDB
	Store    *testutil.ObjectStore
	S3Client *storage.S3Client
	Index    *repository.ChunkRepository
	LLM      *fakeLanguageModel
	Server   *httptest.Server
	Client   *client.APIClient
}

// SetupE2EEnv starts Postgres and RustFS and serves the chat API against them
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	db := testutil.StartCatalogDB(ctx, t)
	store := testutil.StartObjectStore(ctx, t)

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        store.Endpoint,
		Region:          testutil.ObjectStoreRegion,
		AccessKeyID:     testutil.ObjectStoreAccessKey,
		SecretAccessKey: testutil.ObjectStoreSecretKey,
		Bucket:          catalogBucket,
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	index := repository.NewChunkRepository(db.Pool)
	llm := &fakeLanguageModel{}

	chatSvc := service.NewChatServiceWithConfig(service.DefaultChatConfig(), llm, index, nil)
	router := server.NewRouter(server.RouterConfig{
		Logger:        zerolog.Nop(),
		ChatHandler:   handlers.NewChatHandler(chatSvc),
		HealthHandler: handlers.NewHealthHandler(index),
	})
	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:        t,
		Ctx:      ctx,
		DB:       db,
		Store:    store,
		S3Client: s3Client,
		Index:    index,
		LLM:      llm,
		Server:   srv,
		Client:   client.NewAPIClientWithConfig(srv.URL, nil),
	}
}

// Cleanup stops the API server; containers are released by t.Cleanup
func (e *E2ETestEnv) Cleanup() {
	e.Server.Close()
}

// IndexCatalog uploads a JSONL catalog to object storage and indexes it from there
func (e *E2ETestEnv) IndexCatalog(key string, lines ...string) service.IndexStats {
	e.T.Helper()

	body := strings.Join(lines, "\n") + "\n"
	if err := e.S3Client.PutObject(e.Ctx, key, strings.NewReader(body), "application/x-ndjson"); err != nil {
		e.T.Fatalf("failed to upload catalog: %v", err)
	}

	reader, err := storage.OpenCatalog(e.Ctx, "s3://"+catalogBucket+"/"+key, e.S3Client)
	if err != nil {
		e.T.Fatalf("failed to open catalog: %v", err)
	}
	defer reader.Close()

	stats, err := service.NewCatalogIndexer(e.LLM, e.Index, 2).IndexCatalog(e.Ctx, reader)
	if err != nil {
		e.T.Fatalf("failed to index catalog: %v", err)
	}
	return stats
}

// fakeLanguageModel embeds by hashing words into a fixed-size vector and
// records every system prompt it receives.
type fakeLanguageModel struct {
	mu            sync.Mutex
	systemPrompts []string
	classified    int
}

func (f *fakeLanguageModel) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	return hashEmbedding(text), nil
}

func (f *fakeLanguageModel) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = hashEmbedding(text)
	}
	return out, nil
}

func (f *fakeLanguageModel) Chat(_ context.Context, systemPrompt string, messages []domain.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systemPrompts = append(f.systemPrompts, systemPrompt)
	return "Here is what I found.", nil
}

func (f *fakeLanguageModel) Classify(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classified++
	return string(domain.TopicLabelRefrigeratorParts), nil
}

func (f *fakeLanguageModel) lastSystemPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.systemPrompts) == 0 {
		return ""
	}
	return f.systemPrompts[len(f.systemPrompts)-1]
}

func (f *fakeLanguageModel) chatCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.systemPrompts)
}

func hashEmbedding(text string) []float32 {
	v := make([]float32, dimensions)
	v[0] = 0.1
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		v[1+int(h.Sum32()%(dimensions-1))] += 1
	}
	return v
}
