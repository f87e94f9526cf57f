// Package httpapi wires the Validator, Blob Store Adapter, Pipeline
// Orchestrator, and Proxy Gateway behind chi routes.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"imageflow/internal/middleware"
	"imageflow/internal/pipeline"
)

// App holds everything the HTTP handlers need.
type App struct {
	Orchestrator       *pipeline.Orchestrator
	MaxReferenceImages int
	ProxyHandler       http.Handler
	Logger             zerolog.Logger
}

// NewRouter assembles the three routes spec.md §6 names:
// POST /api/image-flow, GET /api/image-proxy, GET /health.
func NewRouter(app *App, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(corsOrigins))

	r.Post("/api/image-flow", app.ImageFlow)
	r.Get("/api/image-proxy", app.ProxyHandler.ServeHTTP)
	r.Get("/health", app.Health)

	return r
}
