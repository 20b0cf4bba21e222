package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearConfigEnv unsets all config env vars so tests start clean.
func clearConfigEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"MOCHI_API_KEY",
		"OPENROUTER_API_KEY",
		"MOCHI_BASE_URL",
		"OPENROUTER_URL",
		"MOCHI_SYNC_MODEL",
		"MOCHI_HTTP_TIMEOUT",
		"MOCHI_LLM_TIMEOUT",
		"ENVIRONMENT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("MOCHI_API_KEY", "key123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "key123", cfg.APIKey)
	assert.Equal(t, "https://app.mochi.cards/api", cfg.BaseURL)
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", cfg.OpenRouterURL)
	assert.Equal(t, "google/gemini-2.5-flash", cfg.Model)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearConfigEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOCHI_API_KEY")
}

func TestLoad_Overrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("MOCHI_API_KEY", "key123")
	t.Setenv("MOCHI_BASE_URL", "http://localhost:9999/api")
	t.Setenv("MOCHI_SYNC_MODEL", "other/model")
	t.Setenv("MOCHI_HTTP_TIMEOUT", "5s")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/api", cfg.BaseURL)
	assert.Equal(t, "other/model", cfg.Model)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.IsProduction())
}

func TestRequireOpenRouter(t *testing.T) {
	cfg := &Config{}
	err := cfg.RequireOpenRouter()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENROUTER_API_KEY")

	cfg.OpenRouterAPIKey = "or-key"
	assert.NoError(t, cfg.RequireOpenRouter())
}
