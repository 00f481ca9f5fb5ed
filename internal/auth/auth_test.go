package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGhCliProvider_GetToken(t *testing.T) {
	provider := &GhCliProvider{}
	token, err := provider.GetToken()

	// Only succeeds where gh CLI is installed and authenticated
	if err != nil {
		assert.Contains(t, err.Error(), "gh")
	} else {
		assert.NotEmpty(t, token)
	}
}

func TestEnvProvider_GetToken_Success(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test_token_123")

	token, err := (&EnvProvider{}).GetToken()

	require.NoError(t, err)
	assert.Equal(t, "ghp_test_token_123", token)
}

func TestEnvProvider_GetToken_CustomVar(t *testing.T) {
	t.Setenv("SOME_TOKEN", "  padded  ")

	token, err := (&EnvProvider{Var: "SOME_TOKEN"}).GetToken()

	require.NoError(t, err)
	assert.Equal(t, "padded", token)
}

func TestEnvProvider_GetToken_Missing(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	token, err := (&EnvProvider{}).GetToken()

	assert.Error(t, err)
	assert.Empty(t, token)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}

func TestGetToken_FallbackToEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_fallback_token")

	// Either gh CLI or the env token must satisfy the request
	token, err := GetToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestTrelloCredentials(t *testing.T) {
	t.Run("config values win", func(t *testing.T) {
		t.Setenv(EnvTrelloKey, "env_key")
		t.Setenv(EnvTrelloToken, "env_token")

		key, token, err := TrelloCredentials("cfg_key", "cfg_token")
		require.NoError(t, err)
		assert.Equal(t, "cfg_key", key)
		assert.Equal(t, "cfg_token", token)
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(EnvTrelloKey, "env_key")
		t.Setenv(EnvTrelloToken, "env_token")

		key, token, err := TrelloCredentials("", "")
		require.NoError(t, err)
		assert.Equal(t, "env_key", key)
		assert.Equal(t, "env_token", token)
	})

	t.Run("missing token", func(t *testing.T) {
		t.Setenv(EnvTrelloKey, "")
		t.Setenv(EnvTrelloToken, "")

		_, _, err := TrelloCredentials("cfg_key", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "userToken")
		assert.NotContains(t, err.Error(), "apiKey")
	})
}

func TestTokenProvider_Interface(t *testing.T) {
	var _ TokenProvider = &GhCliProvider{}
	var _ TokenProvider = &EnvProvider{}
}
