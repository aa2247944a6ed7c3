package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/solvix/solvix/internal/config"
	"github.com/solvix/solvix/internal/domain"
	"github.com/solvix/solvix/internal/store"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler handles health check and diagnostic endpoints.
type HealthHandler struct {
	docs store.DocumentStore
	cfg  *config.Config
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(docs store.DocumentStore, cfg *config.Config) *HealthHandler {
	return &HealthHandler{docs: docs, cfg: cfg}
}

// Root is the service banner.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"message": "Solvix Backend Running"})
}

// Hello is a trivial liveness check under /api.
func (h *HealthHandler) Hello(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"message": "Hello from Solvix API"})
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := map[string]interface{}{
		"status": "healthy",
		"checks": map[string]string{"api": "ok"},
	}
	statusCode := http.StatusOK

	if err := h.docs.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		status["status"] = "degraded"
		status["checks"].(map[string]string)["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		status["checks"].(map[string]string)["database"] = "ok"
	}

	JSON(w, statusCode, status)
}

// Diagnostics reports which store is in use and what it holds. Failures
// are reported in the body; the endpoint itself always answers 200.
func (h *HealthHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := map[string]interface{}{
		"backend":      h.docs.Backend(),
		"database":     "",
		"database_url": "not set",
	}
	if h.cfg != nil {
		resp["database"] = h.cfg.DB.Name
		if h.cfg.DB.Backend == config.BackendSQLite {
			resp["database"] = h.cfg.DB.Path
		}
		if h.cfg.DatabaseURLSet() {
			resp["database_url"] = "set"
		}
	}

	collections, err := h.docs.Collections(ctx)
	if err != nil {
		slog.Warn("Database diagnostic failed", "error", err)
		resp["connection_status"] = "failed"
		resp["error"] = err.Error()
		JSON(w, http.StatusOK, resp)
		return
	}

	resp["connection_status"] = "connected"
	resp["collections"] = collections
	JSON(w, http.StatusOK, resp)
}

// Schema lists the collections and describes the stored models and the
// request bodies the API accepts.
func (h *HealthHandler) Schema(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"collections": []string{store.CollectionProblems, store.CollectionSessions, store.CollectionMessages},
		"models":      domain.Models(),
		"requests":    domain.Requests(),
	})
}

// RegisterHealth registers the banner, health, diagnostic and schema routes.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/api/hello", h.Hello)
	r.Get("/health", h.Health)
	r.Get("/test", h.Diagnostics)
	r.Get("/schema", h.Schema)
}
