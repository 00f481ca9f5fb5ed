package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robby/sprintreport/internal/domain"
	"github.com/robby/sprintreport/internal/report"
	"github.com/robby/sprintreport/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestReport(tmpl report.Template) *report.Report {
	bug := domain.Label{ID: "lbl_bug", Name: "Bug", Color: "red"}
	start := snapshot.New(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), []domain.List{
		{ID: "todo", Name: "Todo", Cards: []domain.Card{
			{ID: "A", Name: "Drop <legacy> API", Labels: []domain.Label{bug}},
			{ID: "B", Name: "Refactor billing"},
		}},
		{ID: "done", Name: "Done", Cards: []domain.Card{}},
	})
	end := snapshot.New(time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC), []domain.List{
		{ID: "todo", Name: "Todo", Cards: []domain.Card{{ID: "B", Name: "Refactor billing"}}},
		{ID: "done", Name: "Done", Cards: []domain.Card{{ID: "C", Name: "Hotfix login", Labels: []domain.Label{bug}}}},
	})
	return report.New(start, end, tmpl)
}

func generate(t *testing.T, r *Renderer) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, createTestReport(r).Generate(&buf))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"html", FormatHTML},
		{"HTML", FormatHTML},
		{"", FormatHTML},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{" terminal ", FormatTerminal},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRenderHTML(t *testing.T) {
	r, err := New(FormatHTML, "")
	require.NoError(t, err)
	assert.Equal(t, "report.html.tmpl", r.TemplateName())

	out := generate(t, r)
	assert.Contains(t, out, "2024-01-01 – 2024-01-14 (14 days)")
	assert.Contains(t, out, `<div class="card done">`)
	assert.Contains(t, out, `<span class="incoming">NEW</span>`)
	assert.Contains(t, out, "Drop &lt;legacy&gt; API", "names are escaped")
	assert.Contains(t, out, "#eb5a46")
}

func TestRenderMarkdown(t *testing.T) {
	r, err := New(FormatMarkdown, "")
	require.NoError(t, err)

	out := generate(t, r)
	assert.Contains(t, out, "# Sprint report")
	assert.Contains(t, out, "## Done (1)")
	assert.Contains(t, out, "- [x] Hotfix login _(new)_ — Bug")
	assert.Contains(t, out, "- [ ] Refactor billing")
	assert.Contains(t, out, "- ~~Drop <legacy> API~~ (was in Todo)")
	assert.Contains(t, out, "- **Bug**: Hotfix login, Drop <legacy> API")
}

func TestRenderTerminal(t *testing.T) {
	r, err := New(FormatTerminal, "", WithWidth(60))
	require.NoError(t, err)

	out := generate(t, r)
	assert.Contains(t, out, "Sprint")
	assert.Contains(t, out, "Hotfix login")
}

func TestCustomTemplate(t *testing.T) {
	dir := t.TempDir()

	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(dir, "custom.tmpl")
		require.NoError(t, os.WriteFile(path, []byte(`{{len .AllCardIDs}} cards, {{join "," .AbandonedCardIDs}} abandoned`), 0o644))

		r, err := New(FormatMarkdown, path)
		require.NoError(t, err)
		assert.Equal(t, path, r.TemplateName())
		assert.Equal(t, "3 cards, A abandoned", generate(t, r))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := New(FormatHTML, filepath.Join(dir, "nope.tmpl"))
		assert.Error(t, err)
	})

	t.Run("parse error", func(t *testing.T) {
		path := filepath.Join(dir, "broken.tmpl")
		require.NoError(t, os.WriteFile(path, []byte(`{{range}}`), 0o644))

		_, err := New(FormatMarkdown, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse template")
	})

	t.Run("execution error propagates", func(t *testing.T) {
		path := filepath.Join(dir, "exec.tmpl")
		require.NoError(t, os.WriteFile(path, []byte(`{{.NoSuchField}}`), 0o644))

		r, err := New(FormatMarkdown, path)
		require.NoError(t, err)
		err = createTestReport(r).Generate(&bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NoSuchField")
	})
}

func TestFuncs(t *testing.T) {
	f := funcs()

	wrap := f["wrap"].(func(int, string) string)
	assert.Equal(t, "one two\nthree", wrap(8, "one two three"))

	trunc := f["truncate"].(func(int, string) string)
	assert.True(t, strings.HasSuffix(trunc(6, "a very long name"), "…"))
	assert.Equal(t, "short", trunc(10, "short"))

	assert.Equal(t, "#61bd4f", labelColor("green"))
	assert.Equal(t, "#d73a4a", labelColor("d73a4a"))
	assert.Equal(t, "#123456", labelColor("#123456"))
	assert.Equal(t, "#b3bac5", labelColor(""))
}
