// Package api provides HTTP handlers for the Solvix API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/solvix/solvix/internal/domain"
	"github.com/solvix/solvix/internal/problem"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// ProblemService is the problem catalogue used by the handlers.
type ProblemService interface {
	Create(ctx context.Context, req domain.CreateProblemRequest) (*domain.Problem, error)
	Get(ctx context.Context, id string) (*domain.Problem, error)
	List(ctx context.Context, f problem.ListFilter) ([]domain.Problem, error)
}

// SessionService is the session lifecycle used by the handlers.
type SessionService interface {
	Create(ctx context.Context, req domain.CreateSessionRequest) (*domain.SessionView, error)
	Get(ctx context.Context, sessionID string) (*domain.SessionView, error)
	RegenerateSteps(ctx context.Context, sessionID string) error
	UpdateStep(ctx context.Context, sessionID string, index int, req domain.UpdateStepRequest) error
	SetCurrentStep(ctx context.Context, sessionID string, req domain.SetCurrentStepRequest) error
	AddMessage(ctx context.Context, sessionID string, req domain.AddMessageRequest) (string, error)
}

// Handler provides common handler utilities.
type Handler struct {
	problems ProblemService
	sessions SessionService
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(problems ProblemService, sessions SessionService) *Handler {
	return &Handler{problems: problems, sessions: sessions}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// writeError maps a service error onto a status code. Unclassified errors
// are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		Error(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()))
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode reads a JSON body into v, writing a 400 and returning false when
// the body is oversized or malformed.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func ok(w http.ResponseWriter) {
	JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
