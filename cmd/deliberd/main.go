// Package main implements the deliberd CLI for running multi-party
// deliberations from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is an optional YAML configuration file
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "deliberd",
	Short: "Run turn-based multi-party deliberations",
	Long: `deliberd orchestrates structured, turn-based deliberations between
LLM-backed participants. Each participant argues a topic in rotation, every
utterance passes a quality gate with bounded refinement, and a judge model
synthesizes a final verdict from the transcript.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML configuration file")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(profilesCmd)
}
