package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configFlag string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sprintreport",
		Short: "Board snapshots and sprint reports",
		Long: `sprintreport captures snapshots of a Trello board (or a GitHub Projects v2
board) and compares two of them into a sprint report: which cards were done,
which were added mid-sprint and which were abandoned.

Configuration is read from trello-snapshot-config.json, or the file named by
--config or SPRINTREPORT_CONFIG.

Credentials:
  Trello: apiKey/userToken in the config, or TRELLO_API_KEY/TRELLO_TOKEN
  GitHub: 'gh auth login', or GITHUB_TOKEN`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default trello-snapshot-config.json)")

	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(viewCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

// setupLogging installs the default slog logger: text on w, debug level
// when verbose, warnings otherwise.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
