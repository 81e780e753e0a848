// Package cli is the agentauth command-line entrypoint: a single
// foreground server process, no subcommands beyond serve. There is no
// local state directory and no lock file — spec.md §5 requires the
// proxy create no filesystem state, unlike the teacher's proxy/stop/
// status trio, which exists to manage a long-running background
// process via a lock file.
package cli

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "agentauth",
	Short: "Credential-gating reverse proxy for the agent fleet",
	Long: `agentauth sits between sandboxed agent workloads and external LLM /
git-hosting APIs. It injects real credentials from a platform-protected
secret store and streams upstream responses back unchanged, so no
sandboxed process ever holds a long-lived API key.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostic logging")
	rootCmd.AddCommand(serveCmd)
}
