package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/robby/sprintreport/internal/render"
	"github.com/robby/sprintreport/internal/report"
)

var (
	reportFormat   string
	reportTemplate string
	reportJSON     bool
	reportOpen     bool
	reportOutput   string
)

// openFile opens a rendered report; tests replace it.
var openFile = browser.OpenFile

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <start-snapshot> [end-snapshot]",
		Short: "Compare two snapshots into a sprint report",
		Long: `Compare two snapshots into a sprint report.

With a single snapshot the end of the sprint is captured from the board now.
The report is rendered with report.html.tmpl or report.md.tmpl from the
working directory when present, else with the built-in template.

Examples:
  sprintreport report sprint-start.json sprint-end.json > report.html
  sprintreport report sprint-start.json --format terminal
  sprintreport report sprint-start.json sprint-end.json --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runReport,
	}

	cmd.Flags().StringVarP(&reportFormat, "format", "f", "", "Output format: html, markdown or terminal (default html)")
	cmd.Flags().StringVarP(&reportTemplate, "template", "t", "", "Template file to render with")
	cmd.Flags().BoolVar(&reportJSON, "json", false, "Print the report data as JSON instead")
	cmd.Flags().BoolVar(&reportOpen, "open", false, "Render HTML to a temporary file and open it in the browser")
	cmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	start, end, err := loadSnapshots(cmd.Context(), args)
	if err != nil {
		return err
	}

	if reportJSON {
		data, err := report.New(start, end, nil).DataAsJSON()
		if err != nil {
			return fmt.Errorf("failed to encode report data: %w", err)
		}
		return writeOutput(cmd.OutOrStdout(), reportOutput, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s\n", data)
			return err
		})
	}

	renderer, err := newRenderer()
	if err != nil {
		return err
	}
	r := report.New(start, end, renderer)
	slog.Debug("Report built", "template", renderer.TemplateName(),
		"cards", len(r.AllCardIDs()), "incoming", len(r.IncomingCardIDs()), "abandoned", len(r.AbandonedCardIDs()))

	if reportOpen {
		return openReport(r)
	}
	return writeOutput(cmd.OutOrStdout(), reportOutput, r.Generate)
}

// newRenderer resolves format and template from flags, then config. --open
// always renders HTML.
func newRenderer() (*render.Renderer, error) {
	cfg, err := loadOptionalConfig()
	if err != nil {
		return nil, err
	}

	formatName := reportFormat
	if formatName == "" {
		formatName = cfg.Report.Format
	}
	if reportOpen {
		formatName = string(render.FormatHTML)
	}
	format, err := render.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	templatePath := reportTemplate
	if templatePath == "" {
		templatePath = cfg.Report.Template
	}
	return render.New(format, templatePath)
}

func openReport(r *report.Report) error {
	f, err := os.CreateTemp("", "sprint-report-*.html")
	if err != nil {
		return fmt.Errorf("failed to create temporary report: %w", err)
	}
	if err := r.Generate(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	slog.Debug("Opening report", "path", f.Name())
	if err := openFile(f.Name()); err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name(), err)
	}
	return nil
}
