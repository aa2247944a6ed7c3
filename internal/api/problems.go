package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/solvix/solvix/internal/domain"
	"github.com/solvix/solvix/internal/problem"
)

// ProblemHandler handles problem catalogue endpoints.
type ProblemHandler struct {
	*Handler
}

// NewProblemHandler creates a new problem handler.
func NewProblemHandler(base *Handler) *ProblemHandler {
	return &ProblemHandler{Handler: base}
}

// RegisterRoutes registers problem routes.
func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/problems", h.Create)
	r.Get("/api/problems", h.List)
	r.Get("/api/problems/{problemID}", h.Get)
}

// Create stores a new problem.
func (h *ProblemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProblemRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.problems.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, p)
}

// List returns problems, optionally filtered by difficulty, category and a
// title/description search.
func (h *ProblemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := problem.ListFilter{
		Difficulty: q.Get("difficulty"),
		Category:   q.Get("category"),
		Query:      q.Get("q"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			Error(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		f.Limit = limit
	}

	problems, err := h.problems.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, problems)
}

// Get returns a single problem.
func (h *ProblemHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.problems.Get(r.Context(), chi.URLParam(r, "problemID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, p)
}
