// Package session owns the guided-solving session lifecycle: creation from
// a problem or ad hoc text, the step plan, per-step edits and the message
// transcript.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/solvix/solvix/internal/domain"
	"github.com/solvix/solvix/internal/guidance"
	"github.com/solvix/solvix/internal/metrics"
	"github.com/solvix/solvix/internal/problem"
	"github.com/solvix/solvix/internal/store"
)

// Session sources, used as the metrics label.
const (
	sourceProblem = "problem"
	sourceAdHoc   = "adhoc"
)

// Manager implements the session operations on top of a document store.
// Every operation is a read followed by at most one write; concurrent
// writes to the same session are last-write-wins.
type Manager struct {
	docs     store.DocumentStore
	problems *problem.Store
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewManager creates a session manager.
func NewManager(docs store.DocumentStore, problems *problem.Store, m *metrics.Metrics) *Manager {
	return &Manager{docs: docs, problems: problems, metrics: m, now: time.Now}
}

// Create starts a session from req.ProblemID, or from req.Title and
// req.Description when no problem is referenced. The problem fields are
// copied into the session; later problem edits do not reach it.
func (m *Manager) Create(ctx context.Context, req domain.CreateSessionRequest) (*domain.SessionView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := m.now().UTC()
	s := domain.Session{
		ProblemTitle:       req.Title,
		ProblemDescription: req.Description,
		Category:           req.Category,
		Difficulty:         domain.Difficulty(req.Difficulty),
		Steps:              []domain.GuidanceStep{},
		CurrentStep:        1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	source := sourceAdHoc

	if req.ProblemID != "" {
		p, err := m.problems.Get(ctx, req.ProblemID)
		if err != nil {
			return nil, err
		}
		s.ProblemID = p.ID
		s.ProblemTitle = p.Title
		s.ProblemDescription = p.Description
		if p.Category != "" {
			s.Category = p.Category
		}
		if p.Difficulty != "" {
			s.Difficulty = p.Difficulty
		}
		source = sourceProblem
	}

	if s.ProblemTitle == "" || s.ProblemDescription == "" {
		return nil, domain.InvalidInput("Provide either problem_id or title+description")
	}
	if s.Category == "" {
		s.Category = domain.DefaultCategory
	}
	if s.Difficulty == "" {
		s.Difficulty = domain.DefaultDifficulty
	}

	// The plan is attached before the insert so creation is a single write.
	if req.AutoGenerate() {
		s.Steps = guidance.Generate(s.ProblemDescription, s.Category)
	}

	id, err := m.docs.Insert(ctx, store.CollectionSessions, s)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	s.ID = id

	m.metrics.SessionCreated(source)
	slog.Info("Session created",
		"session_id", id,
		"problem_id", s.ProblemID,
		"category", s.Category,
		"steps", len(s.Steps))

	view := domain.NewSessionView(s, nil)
	return &view, nil
}

// Get returns the composed view of a session: its fields, its steps with
// indices recomputed from position and its messages in insertion order.
func (m *Manager) Get(ctx context.Context, sessionID string) (*domain.SessionView, error) {
	s, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := m.messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := domain.NewSessionView(*s, messages)
	return &view, nil
}

// RegenerateSteps replaces the whole step plan with a fresh one built from
// the cached description and category and resets the current step to 1.
// Prior statuses and notes are discarded.
func (m *Manager) RegenerateSteps(ctx context.Context, sessionID string) error {
	s, err := m.load(ctx, sessionID)
	if err != nil {
		return err
	}

	steps := guidance.Generate(s.ProblemDescription, s.Category)
	err = m.update(ctx, sessionID, store.Fields{
		"steps":        steps,
		"current_step": 1,
		"updated_at":   m.now().UTC(),
	})
	if err != nil {
		return err
	}

	m.metrics.PlanRegenerated()
	slog.Info("Session steps regenerated", "session_id", sessionID, "steps", len(steps))
	return nil
}

// UpdateStep applies the supplied status and note to the step at the
// 1-based index. Fields left nil are unchanged. Any transition between
// statuses is accepted and the current step is not moved.
func (m *Manager) UpdateStep(ctx context.Context, sessionID string, index int, req domain.UpdateStepRequest) error {
	s, err := m.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if !s.HasStep(index) {
		return domain.InvalidInput("Invalid step index")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	step := &s.Steps[index-1]
	label := "unchanged"
	if req.Status != nil {
		step.Status = domain.StepStatus(*req.Status)
		label = *req.Status
	}
	if req.Note != nil {
		note := *req.Note
		step.Note = &note
	}

	err = m.update(ctx, sessionID, store.Fields{
		"steps":      s.Steps,
		"updated_at": m.now().UTC(),
	})
	if err != nil {
		return err
	}

	m.metrics.StepUpdated(label)
	slog.Info("Session step updated", "session_id", sessionID, "index", index, "status", step.Status)
	return nil
}

// SetCurrentStep moves the informational step pointer. The pointer must
// address an existing step, or be 1 for a session without steps.
func (m *Manager) SetCurrentStep(ctx context.Context, sessionID string, req domain.SetCurrentStepRequest) error {
	s, err := m.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if upper := max(1, len(s.Steps)); req.CurrentStep > upper {
		return domain.InvalidInput(fmt.Sprintf("current_step must be between 1 and %d", upper))
	}

	return m.update(ctx, sessionID, store.Fields{
		"current_step": req.CurrentStep,
		"updated_at":   m.now().UTC(),
	})
}

// AddMessage appends a message to the session transcript and returns its
// id. The session document itself is not modified.
func (m *Manager) AddMessage(ctx context.Context, sessionID string, req domain.AddMessageRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if _, err := m.load(ctx, sessionID); err != nil {
		return "", err
	}

	msg := domain.Message{
		SessionID: sessionID,
		Role:      req.Role,
		Content:   req.Content,
		CreatedAt: m.now().UTC(),
	}
	id, err := m.docs.Insert(ctx, store.CollectionMessages, msg)
	if err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}

	m.metrics.MessageAppended(req.Role)
	slog.Debug("Message appended", "session_id", sessionID, "message_id", id, "role", req.Role)
	return id, nil
}

func (m *Manager) load(ctx context.Context, sessionID string) (*domain.Session, error) {
	if !store.ValidID(sessionID) {
		return nil, domain.InvalidInput("invalid session id")
	}

	doc, err := m.docs.FindOne(ctx, store.CollectionSessions, store.ByID(sessionID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NotFound("Session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	var s domain.Session
	if err := doc.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s.ID = doc.ID()
	if s.Steps == nil {
		s.Steps = []domain.GuidanceStep{}
	}
	return &s, nil
}

func (m *Manager) update(ctx context.Context, sessionID string, fields store.Fields) error {
	err := m.docs.UpdateOne(ctx, store.CollectionSessions, store.ByID(sessionID), fields)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NotFound("Session not found")
	}
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (m *Manager) messages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	docs, err := m.docs.FindMany(ctx, store.CollectionMessages, store.Filter{"session_id": sessionID}, store.FindOptions{})
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}

	messages := make([]domain.Message, 0, len(docs))
	for _, doc := range docs {
		var msg domain.Message
		if err := doc.Decode(&msg); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		msg.ID = doc.ID()
		messages = append(messages, msg)
	}
	return messages, nil
}
