// Package api exposes the finance tools and the backup endpoints over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/financaspro/financas/internal/finance"
	"github.com/financaspro/financas/internal/store"
	"github.com/financaspro/financas/internal/tools"
)

// maxBodyBytes caps request bodies, backups included.
const maxBodyBytes = 32 << 20

// Options are the dependencies of the router.
type Options struct {
	Store    store.RecordStore
	Service  *finance.Service
	Registry *tools.Registry
	Logger   *slog.Logger
}

// NewRouter builds the HTTP API router.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(observe(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
	}))

	h := &handler{
		store:    opts.Store,
		service:  opts.Service,
		registry: opts.Registry,
		logger:   logger,
	}

	r.Get("/api/health", h.health)

	// Tools
	r.Get("/api/tools", h.listTools)
	r.Post("/api/tools/{name}", h.callTool)

	// Backup
	r.Get("/api/backup", h.exportBackup)
	r.Post("/api/backup", h.importBackup)
	r.Post("/api/reset", h.reset)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

type handler struct {
	store    store.RecordStore
	service  *finance.Service
	registry *tools.Registry
	logger   *slog.Logger
}
