package problem

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/solvix/solvix/internal/domain"
	"github.com/solvix/solvix/internal/metrics"
	"github.com/solvix/solvix/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	return NewStore(store.NewMemory(), m, Limits{Default: 3, Max: 5}), m
}

func TestCreateAppliesDefaults(t *testing.T) {
	s, m := newTestStore(t)

	p, err := s.Create(context.Background(), domain.CreateProblemRequest{
		Title:       "  Two Sum ",
		Description: "Find two numbers in an array that add up to a target.",
	})
	require.NoError(t, err)
	assert.True(t, store.ValidID(p.ID))
	assert.Equal(t, "Two Sum", p.Title)
	assert.Equal(t, domain.DefaultCategory, p.Category)
	assert.Equal(t, domain.DifficultyMedium, p.Difficulty)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProblemsCreated))

	got, err := s.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, p.Difficulty, got.Difficulty)
}

func TestCreateValidation(t *testing.T) {
	s, _ := newTestStore(t)

	tests := []struct {
		name string
		req  domain.CreateProblemRequest
		msg  string
	}{
		{name: "missing title", req: domain.CreateProblemRequest{Description: "d"}, msg: "title is required"},
		{name: "blank description", req: domain.CreateProblemRequest{Title: "t", Description: "   "}, msg: "description is required"},
		{name: "bad difficulty", req: domain.CreateProblemRequest{Title: "t", Description: "d", Difficulty: "extreme"}, msg: "difficulty must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), tt.req)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestGetErrors(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get(context.Background(), "bogus")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.Get(context.Background(), store.NewID())
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Problem not found", err.Error())
}

func TestListLimitsAndFilters(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		difficulty := "easy"
		if i%2 == 1 {
			difficulty = "hard"
		}
		_, err := s.Create(ctx, domain.CreateProblemRequest{
			Title:       fmt.Sprintf("p%d", i),
			Description: "d",
			Category:    "math",
			Difficulty:  difficulty,
		})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3, "default limit")
	assert.Equal(t, "p0", all[0].Title)
	assert.Equal(t, "p2", all[2].Title)

	clamped, err := s.List(ctx, ListFilter{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, clamped, 5)

	hard, err := s.List(ctx, ListFilter{Limit: 5, Difficulty: "hard"})
	require.NoError(t, err)
	require.Len(t, hard, 3)
	for _, p := range hard {
		assert.Equal(t, domain.DifficultyHard, p.Difficulty)
	}

	none, err := s.List(ctx, ListFilter{Category: "writing"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.List(ctx, ListFilter{Limit: -1})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.List(ctx, ListFilter{Difficulty: "impossible"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListQueryMatchesTitleOrDescription(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, req := range []domain.CreateProblemRequest{
		{Title: "Two Sum", Description: "Find a pair in an array.", Difficulty: "easy"},
		{Title: "Rivers essay", Description: "Summarise the water cycle.", Category: "writing"},
		{Title: "Graph colouring", Description: "Colour the vertices.", Difficulty: "hard"},
	} {
		_, err := s.Create(ctx, req)
		require.NoError(t, err)
	}

	titles := func(ps []domain.Problem) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Title)
		}
		return out
	}

	got, err := s.List(ctx, ListFilter{Query: "  SUM "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Two Sum", "Rivers essay"}, titles(got))

	got, err = s.List(ctx, ListFilter{Query: "sum", Difficulty: "easy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Two Sum"}, titles(got))

	got, err = s.List(ctx, ListFilter{Query: "   "})
	require.NoError(t, err)
	assert.Len(t, got, 3, "blank query does not filter")

	got, err = s.List(ctx, ListFilter{Query: "sum.*"})
	require.NoError(t, err)
	assert.Empty(t, got, "query is matched literally")
}
