package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robby/sprintreport/internal/render"
	"github.com/robby/sprintreport/internal/report"
	"github.com/robby/sprintreport/internal/server"
)

var (
	serveAddr     string
	serveTemplate string
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <start-snapshot> [end-snapshot]",
		Short: "Serve a sprint report over HTTP",
		Long: `Serve a sprint report over HTTP.

Routes:
  GET /                        rendered HTML report
  GET /api/report              report data as JSON
  GET /api/cards/{id}          one card with its sprint state
  GET /api/labels/{id}/cards   cards carrying a label`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVarP(&serveTemplate, "template", "t", "", "HTML template file to render with")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start, end, err := loadSnapshots(ctx, args)
	if err != nil {
		return err
	}

	cfg, err := loadOptionalConfig()
	if err != nil {
		return err
	}
	templatePath := serveTemplate
	if templatePath == "" {
		templatePath = cfg.Report.Template
	}
	html, err := render.New(render.FormatHTML, templatePath)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving sprint report at %s\n", serveURL(serveAddr))
	return server.New(report.New(start, end, html)).ListenAndServe(ctx, serveAddr)
}

// serveURL turns a listen address into a browsable URL. An empty or
// wildcard host becomes localhost.
func serveURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
