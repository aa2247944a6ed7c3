// Package problem manages the immutable problem definitions sessions are
// created from.
package problem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/solvix/solvix/internal/domain"
	"github.com/solvix/solvix/internal/metrics"
	"github.com/solvix/solvix/internal/store"
)

// ListFilter narrows and bounds List. Zero values mean "any" and "default".
type ListFilter struct {
	Limit      int
	Difficulty string
	Category   string
	// Query matches title or description as a case-insensitive substring.
	Query string
}

// Limits bounds the page size of List.
type Limits struct {
	Default int
	Max     int
}

// Store creates and reads problems.
type Store struct {
	docs    store.DocumentStore
	metrics *metrics.Metrics
	limits  Limits
	now     func() time.Time
}

// NewStore creates a problem store over docs.
func NewStore(docs store.DocumentStore, m *metrics.Metrics, limits Limits) *Store {
	if limits.Default <= 0 {
		limits.Default = 50
	}
	if limits.Max <= 0 {
		limits.Max = 200
	}
	return &Store{docs: docs, metrics: m, limits: limits, now: time.Now}
}

// Create validates req and stores a new problem.
func (s *Store) Create(ctx context.Context, req domain.CreateProblemRequest) (*domain.Problem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := domain.Problem{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  domain.Difficulty(req.Difficulty),
		CreatedAt:   s.now().UTC(),
	}

	id, err := s.docs.Insert(ctx, store.CollectionProblems, p)
	if err != nil {
		return nil, fmt.Errorf("insert problem: %w", err)
	}
	p.ID = id

	s.metrics.ProblemCreated()
	slog.Info("Problem created", "problem_id", id, "category", p.Category, "difficulty", p.Difficulty)
	return &p, nil
}

// Get returns the problem with the given id.
func (s *Store) Get(ctx context.Context, id string) (*domain.Problem, error) {
	if !store.ValidID(id) {
		return nil, domain.InvalidInput("invalid problem id")
	}

	doc, err := s.docs.FindOne(ctx, store.CollectionProblems, store.ByID(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NotFound("Problem not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find problem: %w", err)
	}
	return decodeProblem(doc)
}

// List returns problems in creation order. The limit defaults to
// Limits.Default and is clamped to Limits.Max.
func (s *Store) List(ctx context.Context, f ListFilter) ([]domain.Problem, error) {
	limit := f.Limit
	switch {
	case limit < 0:
		return nil, domain.InvalidInput("limit must not be negative")
	case limit == 0:
		limit = s.limits.Default
	case limit > s.limits.Max:
		limit = s.limits.Max
	}

	filter := store.Filter{}
	if f.Difficulty != "" {
		if !domain.Difficulty(f.Difficulty).Valid() {
			return nil, domain.InvalidInput("difficulty must be one of [easy medium hard]")
		}
		filter["difficulty"] = f.Difficulty
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		filter[store.SearchKey] = store.AnyContains{
			Fields: []string{"title", "description"},
			Text:   q,
		}
	}

	docs, err := s.docs.FindMany(ctx, store.CollectionProblems, filter, store.FindOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}

	problems := make([]domain.Problem, 0, len(docs))
	for _, doc := range docs {
		p, err := decodeProblem(doc)
		if err != nil {
			return nil, err
		}
		problems = append(problems, *p)
	}
	return problems, nil
}

func decodeProblem(doc store.Document) (*domain.Problem, error) {
	var p domain.Problem
	if err := doc.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode problem: %w", err)
	}
	p.ID = doc.ID()
	return &p, nil
}
