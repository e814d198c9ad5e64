package server

import (
	"net/http"

	"github.com/cloo-solutions/partsdesk/internal/api/handlers"
	"github.com/cloo-solutions/partsdesk/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

const maxBodyBytes int64 = 1 * 1024 * 1024

type RouterConfig struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	ChatHandler    *handlers.ChatHandler
	HealthHandler  *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	healthHandler := cfg.HealthHandler
	if healthHandler == nil {
		healthHandler = handlers.NewHealthHandler(nil)
	}
	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", cfg.ChatHandler.Chat)
	})

	return r
}
