package domain

import (
	"strings"
	"time"
)

// DefaultCategory is used when a problem or session names no category.
const DefaultCategory = "general"

// Difficulty is the closed set of problem difficulties.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultDifficulty is used when a problem or session names no difficulty.
const DefaultDifficulty = DifficultyMedium

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Problem is an immutable task definition that sessions snapshot from.
type Problem struct {
	ID          string     `json:"id,omitempty" bson:"-"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Category    string     `json:"category" bson:"category"`
	Difficulty  Difficulty `json:"difficulty" bson:"difficulty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}

// CreateProblemRequest is the client payload for a new problem.
type CreateProblemRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// Validate trims the payload, checks it and fills in defaults.
func (r *CreateProblemRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.Difficulty = strings.TrimSpace(r.Difficulty)

	if err := validateStruct(r); err != nil {
		return err
	}

	if r.Category == "" {
		r.Category = DefaultCategory
	}
	if r.Difficulty == "" {
		r.Difficulty = string(DefaultDifficulty)
	}
	return nil
}
