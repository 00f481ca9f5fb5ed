// Package auth resolves the credentials the board sources need: a GitHub
// token for Projects boards and an API key plus user token for Trello.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Environment variables consulted for credentials.
const (
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvTrelloKey   = "TRELLO_API_KEY"
	EnvTrelloToken = "TRELLO_TOKEN"
)

// TokenProvider defines the interface for obtaining a GitHub authentication token.
type TokenProvider interface {
	GetToken() (string, error)
}

// GhCliProvider obtains tokens by shelling out to the GitHub CLI (`gh auth token`).
type GhCliProvider struct{}

// GetToken shells out to `gh auth token` to retrieve the current token.
func (g *GhCliProvider) GetToken() (string, error) {
	cmd := exec.Command("gh", "auth", "token", "--hostname", "github.com")
	output, err := cmd.Output()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return "", errors.New("gh CLI not found in PATH")
		}
		return "", fmt.Errorf("gh auth token failed: %w", err)
	}

	token := strings.TrimSpace(string(output))
	if token == "" {
		return "", errors.New("gh auth token returned empty token")
	}

	return token, nil
}

// EnvProvider obtains tokens from an environment variable, GITHUB_TOKEN by default.
type EnvProvider struct {
	Var string
}

// GetToken reads the environment variable.
func (e *EnvProvider) GetToken() (string, error) {
	name := e.Var
	if name == "" {
		name = EnvGitHubToken
	}
	token := strings.TrimSpace(os.Getenv(name))
	if token == "" {
		return "", fmt.Errorf("%s environment variable not set or empty", name)
	}
	return token, nil
}

// GetToken obtains a GitHub token from the gh CLI, falling back to GITHUB_TOKEN.
func GetToken() (string, error) {
	token, err := (&GhCliProvider{}).GetToken()
	if err == nil {
		return token, nil
	}
	ghErr := err

	token, err = (&EnvProvider{}).GetToken()
	if err == nil {
		return token, nil
	}

	return "", fmt.Errorf(
		"failed to obtain GitHub token: gh CLI error (%v) and GITHUB_TOKEN not set.\n"+
			"Please either:\n"+
			"  1. Run 'gh auth login' to authenticate with GitHub CLI, or\n"+
			"  2. Set the GITHUB_TOKEN environment variable with a personal access token",
		ghErr,
	)
}

// TrelloCredentials returns the Trello API key and user token. Values passed in
// (from the config file) win; empty ones fall back to TRELLO_API_KEY and
// TRELLO_TOKEN.
func TrelloCredentials(apiKey, userToken string) (string, string, error) {
	if apiKey == "" {
		apiKey, _ = (&EnvProvider{Var: EnvTrelloKey}).GetToken()
	}
	if userToken == "" {
		userToken, _ = (&EnvProvider{Var: EnvTrelloToken}).GetToken()
	}

	var missing []string
	if apiKey == "" {
		missing = append(missing, "apiKey (or "+EnvTrelloKey+")")
	}
	if userToken == "" {
		missing = append(missing, "userToken (or "+EnvTrelloToken+")")
	}
	if len(missing) > 0 {
		return "", "", fmt.Errorf("missing Trello credentials: %s", strings.Join(missing, ", "))
	}
	return apiKey, userToken, nil
}
