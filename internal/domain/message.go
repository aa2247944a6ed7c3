package domain

import (
	"strings"
	"time"
)

// Message is one append-only transcript entry of a session.
type Message struct {
	ID        string    `json:"id,omitempty" bson:"-"`
	SessionID string    `json:"session_id" bson:"session_id"`
	Role      string    `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// AddMessageRequest is the client payload for a new message. Role is free
// form (user, assistant and system by convention).
type AddMessageRequest struct {
	Role    string `json:"role" validate:"required,max=64"`
	Content string `json:"content" validate:"required"`
}

// Validate checks role and content are present.
func (r *AddMessageRequest) Validate() error {
	r.Role = strings.TrimSpace(r.Role)
	if strings.TrimSpace(r.Content) == "" {
		r.Content = ""
	}
	return validateStruct(r)
}
