package domain

import (
	"strings"
	"time"
)

// StepStatus is the advisory progress marker of a guidance step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepDone       StepStatus = "done"
)

// Valid reports whether s is one of the known step statuses.
func (s StepStatus) Valid() bool {
	switch s {
	case StepPending, StepInProgress, StepDone:
		return true
	}
	return false
}

// GuidanceStep is one instruction of a session's plan. It has no stored
// index: its rank is its position in Session.Steps.
type GuidanceStep struct {
	Text   string     `json:"text" bson:"text"`
	Status StepStatus `json:"status" bson:"status"`
	Note   *string    `json:"note,omitempty" bson:"note,omitempty"`
}

// Session is a guided attempt at a problem. The problem fields are a
// snapshot taken at creation time.
type Session struct {
	ID                 string         `json:"id,omitempty" bson:"-"`
	ProblemID          string         `json:"problem_id,omitempty" bson:"problem_id,omitempty"`
	ProblemTitle       string         `json:"problem_title" bson:"problem_title"`
	ProblemDescription string         `json:"problem_description" bson:"problem_description"`
	Category           string         `json:"category" bson:"category"`
	Difficulty         Difficulty     `json:"difficulty" bson:"difficulty"`
	Steps              []GuidanceStep `json:"steps" bson:"steps"`
	CurrentStep        int            `json:"current_step" bson:"current_step"`
	CreatedAt          time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" bson:"updated_at"`
}

// HasStep reports whether the 1-based index addresses an existing step.
func (s *Session) HasStep(index int) bool {
	return index >= 1 && index <= len(s.Steps)
}

// StepView is a guidance step with its index derived from list position.
type StepView struct {
	Index int `json:"index"`
	GuidanceStep
}

// SessionView is the composed read model: session fields, steps with live
// indices and the message transcript.
type SessionView struct {
	Session
	Steps    []StepView `json:"steps"`
	Messages []Message  `json:"messages"`
}

// NewSessionView composes a view, recomputing every step index as
// position + 1.
func NewSessionView(s Session, messages []Message) SessionView {
	steps := make([]StepView, len(s.Steps))
	for i, st := range s.Steps {
		steps[i] = StepView{Index: i + 1, GuidanceStep: st}
	}
	if messages == nil {
		messages = []Message{}
	}
	return SessionView{Session: s, Steps: steps, Messages: messages}
}

// CreateSessionRequest is the client payload for a new session. Either
// ProblemID or Title+Description must be supplied.
type CreateSessionRequest struct {
	ProblemID         string `json:"problem_id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	Category          string `json:"category"`
	Difficulty        string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	AutoGenerateSteps *bool  `json:"auto_generate_steps"`
}

// Validate trims the payload and checks the field-level constraints. The
// problem_id versus title+description rule is resolved by the session
// manager, which needs the problem store for it.
func (r *CreateSessionRequest) Validate() error {
	r.ProblemID = strings.TrimSpace(r.ProblemID)
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.Difficulty = strings.TrimSpace(r.Difficulty)
	return validateStruct(r)
}

// AutoGenerate reports whether a plan should be attached at creation.
// Defaults to true when the client did not say.
func (r *CreateSessionRequest) AutoGenerate() bool {
	return r.AutoGenerateSteps == nil || *r.AutoGenerateSteps
}

// UpdateStepRequest is a partial update of one step. Nil fields are left
// unchanged.
type UpdateStepRequest struct {
	Status *string `json:"status"`
	Note   *string `json:"note"`
}

// Validate checks the status against the known set when supplied.
func (r *UpdateStepRequest) Validate() error {
	if r.Status != nil && !StepStatus(*r.Status).Valid() {
		return InvalidInput("status must be one of [pending in_progress done]")
	}
	return nil
}

// SetCurrentStepRequest moves the informational step pointer.
type SetCurrentStepRequest struct {
	CurrentStep int `json:"current_step" validate:"required,min=1"`
}

// Validate checks the pointer is a positive index.
func (r *SetCurrentStepRequest) Validate() error {
	return validateStruct(r)
}
