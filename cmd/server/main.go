// Solvix - guided problem-solving server
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "solvix",
	Short: "Solvix guided problem-solving backend",
	Long: `Solvix breaks a problem into a short plan of guidance steps, tracks
progress through a session and keeps a transcript of the conversation.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, planCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
