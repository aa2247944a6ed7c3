package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	err := NotFound("Session not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "Session not found", err.Error())

	err = InvalidInput("Invalid step index")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "Invalid step index", err.Error())
}

func TestCreateProblemRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateProblemRequest
		wantErr string
		want    CreateProblemRequest
	}{
		{
			name: "defaults",
			req:  CreateProblemRequest{Title: "  Two Sum ", Description: "find a pair"},
			want: CreateProblemRequest{Title: "Two Sum", Description: "find a pair", Category: "general", Difficulty: "medium"},
		},
		{
			name: "explicit",
			req:  CreateProblemRequest{Title: "t", Description: "d", Category: "coding", Difficulty: "hard"},
			want: CreateProblemRequest{Title: "t", Description: "d", Category: "coding", Difficulty: "hard"},
		},
		{name: "missing title", req: CreateProblemRequest{Description: "d"}, wantErr: "title is required"},
		{name: "blank description", req: CreateProblemRequest{Title: "t", Description: "   "}, wantErr: "description is required"},
		{name: "bad difficulty", req: CreateProblemRequest{Title: "t", Description: "d", Difficulty: "extreme"}, wantErr: "difficulty must be one of [easy medium hard]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr != "" {
				require.ErrorIs(t, err, ErrInvalidInput)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.req)
		})
	}
}

func TestCreateSessionRequest(t *testing.T) {
	req := CreateSessionRequest{ProblemID: " abc ", Difficulty: " easy "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "abc", req.ProblemID)
	assert.Equal(t, "easy", req.Difficulty)
	assert.True(t, req.AutoGenerate())

	off := false
	req.AutoGenerateSteps = &off
	assert.False(t, req.AutoGenerate())

	bad := CreateSessionRequest{Title: "t", Description: "d", Difficulty: "impossible"}
	require.ErrorIs(t, bad.Validate(), ErrInvalidInput)
}

func TestUpdateStepRequestValidate(t *testing.T) {
	for _, s := range []string{"pending", "in_progress", "done"} {
		req := UpdateStepRequest{Status: &s}
		assert.NoError(t, req.Validate(), s)
	}

	bogus := "finished"
	req := UpdateStepRequest{Status: &bogus}
	require.ErrorIs(t, req.Validate(), ErrInvalidInput)

	empty := UpdateStepRequest{}
	assert.NoError(t, empty.Validate())
}

func TestSetCurrentStepRequestValidate(t *testing.T) {
	ok := SetCurrentStepRequest{CurrentStep: 2}
	assert.NoError(t, ok.Validate())

	zero := SetCurrentStepRequest{}
	err := zero.Validate()
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "current_step is required", err.Error())

	neg := SetCurrentStepRequest{CurrentStep: -1}
	require.ErrorIs(t, neg.Validate(), ErrInvalidInput)
}

func TestAddMessageRequestValidate(t *testing.T) {
	req := AddMessageRequest{Role: " user ", Content: "hi"}
	require.NoError(t, req.Validate())
	assert.Equal(t, "user", req.Role)

	blank := AddMessageRequest{Role: "user", Content: " \n\t"}
	err := blank.Validate()
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "content is required", err.Error())
}

func TestNewSessionViewIndices(t *testing.T) {
	note := "tip"
	s := Session{
		ID: "abc",
		Steps: []GuidanceStep{
			{Text: "a", Status: StepDone},
			{Text: "b", Status: StepPending, Note: &note},
			{Text: "c", Status: StepInProgress},
		},
	}

	view := NewSessionView(s, nil)
	require.Len(t, view.Steps, 3)
	for i, st := range view.Steps {
		assert.Equal(t, i+1, st.Index)
		assert.Equal(t, s.Steps[i], st.GuidanceStep)
	}
	assert.NotNil(t, view.Messages)
	assert.Empty(t, view.Messages)
}

func TestSessionViewJSON(t *testing.T) {
	s := Session{
		ID:           "abc",
		ProblemTitle: "Two Sum",
		Steps:        []GuidanceStep{{Text: "a", Status: StepPending}},
		CurrentStep:  1,
	}

	raw, err := json.Marshal(NewSessionView(s, nil))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "abc", got["id"])
	assert.NotContains(t, got, "problem_id")
	assert.Equal(t, []any{}, got["messages"])

	steps, ok := got["steps"].([]any)
	require.True(t, ok)
	require.Len(t, steps, 1)
	step := steps[0].(map[string]any)
	assert.Equal(t, float64(1), step["index"])
	assert.Equal(t, "pending", step["status"])
	assert.NotContains(t, step, "note")
}

func TestHasStep(t *testing.T) {
	s := Session{Steps: make([]GuidanceStep, 5)}
	assert.False(t, s.HasStep(0))
	assert.True(t, s.HasStep(1))
	assert.True(t, s.HasStep(5))
	assert.False(t, s.HasStep(6))
}

func fieldByName(t *testing.T, fields []FieldSchema, name string) FieldSchema {
	t.Helper()
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %q not described", name)
	return FieldSchema{}
}

func TestDescribeFieldsModels(t *testing.T) {
	models := Models()
	assert.ElementsMatch(t, []string{"problem", "session", "guidancestep", "message"}, keys(models))

	session := models["session"]
	require.Len(t, session, 10)
	assert.Equal(t, "id", session[0].Name, "declaration order is kept")
	assert.Equal(t, "array<guidancestep>", fieldByName(t, session, "steps").Type)
	assert.Equal(t, "integer", fieldByName(t, session, "current_step").Type)
	assert.Equal(t, "datetime", fieldByName(t, session, "created_at").Type)

	difficulty := fieldByName(t, models["problem"], "difficulty")
	assert.Equal(t, "string", difficulty.Type)
	assert.Equal(t, []string{"easy", "medium", "hard"}, difficulty.Enum)

	step := models["guidancestep"]
	assert.Equal(t, []string{"pending", "in_progress", "done"}, fieldByName(t, step, "status").Enum)
	note := fieldByName(t, step, "note")
	assert.True(t, note.Nullable)
	assert.Equal(t, "string", note.Type)
}

func TestDescribeFieldsRequests(t *testing.T) {
	reqs := Requests()

	title := fieldByName(t, reqs["create_problem"], "title")
	assert.True(t, title.Required)
	assert.Equal(t, "required", title.Rules)

	difficulty := fieldByName(t, reqs["create_problem"], "difficulty")
	assert.False(t, difficulty.Required)
	assert.Equal(t, "omitempty,oneof=easy medium hard", difficulty.Rules)

	auto := fieldByName(t, reqs["create_session"], "auto_generate_steps")
	assert.Equal(t, "boolean", auto.Type)
	assert.True(t, auto.Nullable)
	assert.False(t, auto.Required)

	current := fieldByName(t, reqs["set_current_step"], "current_step")
	assert.True(t, current.Required)
	assert.Equal(t, "required,min=1", current.Rules)

	assert.True(t, fieldByName(t, reqs["add_message"], "content").Required)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
