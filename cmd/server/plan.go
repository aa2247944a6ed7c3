package main

import (
	"encoding/json"
	"strings"

	"github.com/solvix/solvix/internal/domain"
	"github.com/solvix/solvix/internal/guidance"
	"github.com/spf13/cobra"
)

var planCategory string

var planCmd = &cobra.Command{
	Use:   "plan [description...]",
	Short: "Print the guidance plan for a problem description",
	Long: `Generates the step plan a new session would receive and prints it as
JSON. Nothing is stored.

Examples:
  solvix plan --category coding "Return the indices of two numbers that sum to a target"
  solvix plan "Outline a short essay on rivers"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := guidance.Generate(strings.Join(args, " "), planCategory)

		views := make([]domain.StepView, len(steps))
		for i, st := range steps {
			views[i] = domain.StepView{Index: i + 1, GuidanceStep: st}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	},
}

func init() {
	planCmd.Flags().StringVarP(&planCategory, "category", "c", domain.DefaultCategory, "problem category (coding, math, writing, general)")
}
