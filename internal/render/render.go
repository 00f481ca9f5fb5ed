// Package render turns a report context into text. It owns template lookup
// and the template engines; the report package only sees an Execute method.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"os"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/robby/sprintreport/internal/domain"
)

// Format selects the template engine and output encoding.
type Format string

// Supported output formats.
const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatTerminal Format = "terminal"
)

// DefaultWidth is the terminal word-wrap width when none is configured.
const DefaultWidth = 80

// ErrUnknownFormat indicates an unsupported output format.
var ErrUnknownFormat = errors.New("unknown format")

//go:embed templates/*.tmpl
var templatesFS embed.FS

// executor is the common surface of html/template and text/template.
type executor interface {
	Execute(w io.Writer, data any) error
}

// Renderer renders report contexts with one parsed template.
type Renderer struct {
	format Format
	name   string
	tmpl   executor
	width  int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWidth sets the word-wrap width of the terminal format.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
	}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatHTML, FormatMarkdown, FormatTerminal:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q (want html, markdown or terminal)", ErrUnknownFormat, name)
	}
}

// New creates a renderer for format. The template source is, in order:
// templatePath if set, report.<ext>.tmpl in the working directory, then the
// embedded default.
func New(format Format, templatePath string, opts ...Option) (*Renderer, error) {
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	r := &Renderer{format: format, width: DefaultWidth}
	for _, opt := range opts {
		opt(r)
	}

	name, src, err := lookupTemplate(format, templatePath)
	if err != nil {
		return nil, err
	}
	r.name = name

	if format == FormatHTML {
		t, err := htmltemplate.New(name).Funcs(htmltemplate.FuncMap(funcs())).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.tmpl = t
	} else {
		t, err := texttemplate.New(name).Funcs(texttemplate.FuncMap(funcs())).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.tmpl = t
	}

	return r, nil
}

// Format returns the renderer's output format.
func (r *Renderer) Format() Format {
	return r.format
}

// TemplateName returns the path or embedded name the template was read from.
func (r *Renderer) TemplateName() string {
	return r.name
}

// Execute renders data to w. Terminal output is rendered markdown.
func (r *Renderer) Execute(w io.Writer, data any) error {
	if r.format != FormatTerminal {
		return r.tmpl.Execute(w, data)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return err
	}
	out, err := Markdown(buf.String(), r.width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Markdown renders markdown for an ANSI terminal wrapped at width, styled
// for the terminal's background.
func Markdown(md string, width int) (string, error) {
	return markdown(md, glamour.WithAutoStyle(), glamour.WithWordWrap(width))
}

// MarkdownStyle renders markdown with a named glamour style ("dark",
// "light", "notty"). Use it where the terminal cannot be queried, such as
// inside a running TUI.
func MarkdownStyle(md string, width int, style string) (string, error) {
	return markdown(md, glamour.WithStandardStyle(style), glamour.WithWordWrap(width))
}

func markdown(md string, opts ...glamour.TermRendererOption) (string, error) {
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := tr.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

func templateFile(format Format) string {
	if format == FormatHTML {
		return "report.html.tmpl"
	}
	return "report.md.tmpl"
}

func lookupTemplate(format Format, templatePath string) (string, string, error) {
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return "", "", fmt.Errorf("failed to read template: %w", err)
		}
		return templatePath, string(data), nil
	}

	file := templateFile(format)
	if data, err := os.ReadFile(file); err == nil {
		return file, string(data), nil
	}

	data, err := templatesFS.ReadFile("templates/" + file)
	if err != nil {
		return "", "", fmt.Errorf("missing embedded template %s: %w", file, err)
	}
	return file, string(data), nil
}

func funcs() map[string]any {
	return map[string]any{
		"wrap": func(width int, s string) string {
			return wordwrap.String(s, width)
		},
		"truncate": func(width int, s string) string {
			return truncate.StringWithTail(s, uint(width), "…")
		},
		"join": func(sep string, values []string) string {
			return strings.Join(values, sep)
		},
		"lower": strings.ToLower,
		"date": func(t time.Time) string {
			return t.Format(time.DateOnly)
		},
		"labelNames": func(labels []domain.Label) string {
			names := make([]string, 0, len(labels))
			for _, lbl := range labels {
				names = append(names, lbl.Name)
			}
			return strings.Join(names, ", ")
		},
		"labelColor": labelColor,
	}
}

// trelloColors maps Trello label color names to CSS colors.
var trelloColors = map[string]string{
	"green":  "#61bd4f",
	"yellow": "#f2d600",
	"orange": "#ff9f1a",
	"red":    "#eb5a46",
	"purple": "#c377e0",
	"blue":   "#0079bf",
	"sky":    "#00c2e0",
	"lime":   "#51e898",
	"pink":   "#ff78cb",
	"black":  "#344563",
}

// labelColor returns a CSS color for a label color name, passing through
// values that are already hex colors.
func labelColor(name string) string {
	name = strings.ToLower(name)
	if c, ok := trelloColors[name]; ok {
		return c
	}
	if strings.HasPrefix(name, "#") {
		return name
	}
	if isHex(name) {
		return "#" + name
	}
	return "#b3bac5"
}

func isHex(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}
