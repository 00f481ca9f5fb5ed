package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trelloJSON = `{
  "apiKey": "key123",
  "userToken": "token456",
  "listIds": ["list_todo", "list_doing", "list_done"],
  "cardFieldsBlackList": ["badges", "checkItemStates"]
}`

const githubYAML = `
source: GitHub
github:
  owner: acme
  project: 3
  field: Sprint Status
cardFieldsWhiteList: [id, name, labels]
report:
  format: markdown
  template: ./custom.md.tmpl
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_TrelloJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, trelloJSON))
	require.NoError(t, err)

	assert.Equal(t, SourceTrello, cfg.Source)
	assert.Equal(t, "key123", cfg.APIKey)
	assert.Equal(t, "token456", cfg.UserToken)
	assert.Equal(t, []string{"list_todo", "list_doing", "list_done"}, cfg.ListIDs)
	assert.NoError(t, cfg.Validate())

	f := cfg.Filter()
	assert.Equal(t, []string{"badges", "checkItemStates"}, f.Deny)
	assert.Nil(t, f.Allow)
}

func TestLoad_GitHubYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, githubYAML))
	require.NoError(t, err)

	assert.Equal(t, SourceGitHub, cfg.Source, "source is case insensitive")
	assert.Equal(t, GitHub{Owner: "acme", Project: 3, Field: "Sprint Status"}, cfg.GitHub)
	assert.Equal(t, Report{Format: "markdown", Template: "./custom.md.tmpl"}, cfg.Report)
	assert.Equal(t, []string{"id", "name", "labels"}, cfg.Filter().Allow)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Load(writeConfig(t, `{"listIds": [`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"trello ok", Config{Source: SourceTrello, ListIDs: []string{"l1"}}, ""},
		{"trello without lists", Config{Source: SourceTrello}, "listIds"},
		{"github ok", Config{Source: SourceGitHub, GitHub: GitHub{Owner: "acme", Project: 1}}, ""},
		{"github without owner", Config{Source: SourceGitHub, GitHub: GitHub{Project: 1}}, "github.owner"},
		{"github without project", Config{Source: SourceGitHub, GitHub: GitHub{Owner: "acme"}}, "github.project"},
		{"unknown source", Config{Source: "jira"}, `"jira"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, Path(""))

	t.Setenv(EnvPath, "/etc/sprint.yaml")
	assert.Equal(t, "/etc/sprint.yaml", Path(""))
	assert.Equal(t, "flag.json", Path("flag.json"))
}
