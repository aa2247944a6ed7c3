package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/solvix/solvix/internal/domain"
)

// SessionHandler handles guided-solving session endpoints.
type SessionHandler struct {
	*Handler
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(base *Handler) *SessionHandler {
	return &SessionHandler{Handler: base}
}

// RegisterRoutes registers session routes.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/sessions", h.Create)
	r.Get("/api/sessions/{sessionID}", h.Get)
	r.Patch("/api/sessions/{sessionID}", h.SetCurrentStep)
	r.Post("/api/sessions/{sessionID}/steps/generate", h.RegenerateSteps)
	r.Patch("/api/sessions/{sessionID}/steps/{index}", h.UpdateStep)
	r.Post("/api/sessions/{sessionID}/messages", h.AddMessage)
}

// Create starts a session from a stored problem or ad hoc text.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSessionRequest
	if !decode(w, r, &req) {
		return
	}

	view, err := h.sessions.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, view)
}

// Get returns the composed session with steps and messages.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, view)
}

// SetCurrentStep moves the session's step pointer.
func (h *SessionHandler) SetCurrentStep(w http.ResponseWriter, r *http.Request) {
	var req domain.SetCurrentStepRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.sessions.SetCurrentStep(r.Context(), chi.URLParam(r, "sessionID"), req); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w)
}

// RegenerateSteps replaces the session's plan with a fresh one.
func (h *SessionHandler) RegenerateSteps(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.RegenerateSteps(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w)
}

// UpdateStep edits the status and/or note of one step.
func (h *SessionHandler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		Error(w, http.StatusBadRequest, "Invalid step index")
		return
	}

	var req domain.UpdateStepRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.sessions.UpdateStep(r.Context(), chi.URLParam(r, "sessionID"), index, req); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w)
}

// AddMessage appends a transcript message.
func (h *SessionHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	var req domain.AddMessageRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.sessions.AddMessage(r.Context(), chi.URLParam(r, "sessionID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, map[string]string{"id": id})
}
