package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/solvix/solvix/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"plan", "--category", "coding", "Return", "indices", "of", "two", "numbers"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		planCategory = domain.DefaultCategory
	})

	require.NoError(t, rootCmd.Execute())

	var steps []domain.StepView
	require.NoError(t, json.Unmarshal(out.Bytes(), &steps))
	require.Len(t, steps, 5)
	assert.Equal(t, 1, steps[0].Index)
	assert.Equal(t, 5, steps[4].Index)
	require.NotNil(t, steps[1].Note)
	assert.Equal(t, "Consider time/space complexity and write unit tests.", *steps[1].Note)
}

func TestPlanRequiresDescription(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"plan"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	assert.Error(t, rootCmd.Execute())
}
