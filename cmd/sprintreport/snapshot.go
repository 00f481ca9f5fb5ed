package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	snapshotOutput string
	snapshotPretty bool
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture the configured board lists as a snapshot",
		Long: `Capture the configured board lists as a JSON snapshot document.

Examples:
  sprintreport snapshot > sprint-start.json
  sprintreport snapshot -o sprint-end.json --config github.yaml`,
		Args: cobra.NoArgs,
		RunE: runSnapshot,
	}

	cmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&snapshotPretty, "pretty", false, "Indent the JSON output")

	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	doc, err := takeSnapshot(cmd.Context())
	if err != nil {
		return err
	}

	var data []byte
	if snapshotPretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return writeOutput(cmd.OutOrStdout(), snapshotOutput, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s\n", data)
		return err
	})
}

// writeOutput runs write against the named file, or stdout when path is
// empty or "-".
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
