package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/middleware"
)

type RouterConfig struct {
	ServiceName string
	// AllowedOrigin is the CORS origin; empty allows any origin.
	AllowedOrigin string
	Logger        *zap.Logger
}

// NewRouter mounts the todo resource at /api/todos and the health check at /health.
func NewRouter(h *TodoHandler, cfg RouterConfig) http.Handler {
	origin := cfg.AllowedOrigin
	if origin == "" {
		origin = "*"
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Location", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(NotFound)
	r.MethodNotAllowed(NotFound)

	r.Get("/health", Health(cfg.ServiceName))

	r.Route("/api/todos", func(r chi.Router) {
		r.NotFound(NotFound)
		r.MethodNotAllowed(NotFound)

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
