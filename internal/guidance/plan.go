// Package guidance builds the deterministic step plan attached to a session.
package guidance

import (
	"strings"

	"github.com/solvix/solvix/internal/domain"
)

// SummaryThreshold is the description word count above which the plan gets
// a closing summary step.
const SummaryThreshold = 60

// SummaryStep is appended to plans for long descriptions.
const SummaryStep = "Create a brief summary of the solution and next steps."

var baseSteps = [...]string{
	"Clarify the goal and constraints. Summarize the problem in your own words.",
	"Break the problem into smaller sub-parts. Identify inputs, outputs, and edge cases.",
	"Draft a step-by-step approach or outline to solve each sub-part.",
	"Execute the plan: implement or compute the solution incrementally.",
	"Test with examples, review results, and refine any weak points.",
}

var categoryTips = map[string]string{
	"coding":  "Consider time/space complexity and write unit tests.",
	"math":    "Write definitions, known theorems, and try a simple case first.",
	"writing": "Define audience, tone, and structure (intro, body, conclusion).",
	"general": "Stay focused on the main objective and time-box explorations.",
}

// Tip returns the category tip, falling back to the general tip for any
// category without its own entry.
func Tip(category string) string {
	if tip, ok := categoryTips[category]; ok {
		return tip
	}
	return categoryTips[domain.DefaultCategory]
}

// Generate returns the plan for a description and category: the five base
// steps with the category tip noted on steps 2 and 4, plus a summary step
// when the description is longer than SummaryThreshold words. Every step
// starts pending.
func Generate(description, category string) []domain.GuidanceStep {
	tip := Tip(category)

	steps := make([]domain.GuidanceStep, 0, len(baseSteps)+1)
	for i, text := range baseSteps {
		step := domain.GuidanceStep{Text: text, Status: domain.StepPending}
		if pos := i + 1; pos == 2 || pos == 4 {
			note := tip
			step.Note = &note
		}
		steps = append(steps, step)
	}

	if len(strings.Fields(description)) > SummaryThreshold {
		steps = append(steps, domain.GuidanceStep{Text: SummaryStep, Status: domain.StepPending})
	}
	return steps
}
