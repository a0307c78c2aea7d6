// Package main implements the issuesmith CLI for submitting and inspecting
// fix-issue runs.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath overrides the default config file location.
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
	Use:   "issuesmith",
	Short: "Submit automated fix runs for GitHub issues",
	Long: `issuesmith submits durable runs that fix a GitHub issue end to end:
clone the repository, generate a fix, commit it on a branch, push, and open
a pull request. Runs execute on an issuesmith worker and survive worker
restarts.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/issuesmith/config.yaml)")
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
}
