package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "tavily", cfg.Search.Provider)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, "readability", cfg.Fetch.Provider)
	assert.Equal(t, 1000, cfg.Fetch.MaxChars)
	assert.Equal(t, float32(0.2), cfg.LLM.Fast.Temperature)
	assert.Equal(t, 2048, cfg.LLM.Fast.MaxTokens)
	assert.Equal(t, float32(0.2), cfg.LLM.Smart.Temperature)
	assert.Equal(t, 4096, cfg.LLM.Smart.MaxTokens)
	assert.Equal(t, model.DefaultCategories, cfg.Categories)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
}

func TestLoadConfig_ExpandsEnv(t *testing.T) {
	t.Setenv("RADAR_TEST_TAVILY", "tvly-from-env")
	path := writeConfig(t, `
search:
  provider: tavily
  tavily:
    api_key: ${RADAR_TEST_TAVILY}
categories:
  - FinTech
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "tvly-from-env", cfg.Search.Tavily.APIKey)
	assert.Equal(t, []string{"FinTech"}, cfg.Categories)
}

func TestLoadConfig_CredentialsFromEnv(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "tvly-env")
	t.Setenv("GEMINI_API_KEY", "gem-env")
	path := writeConfig(t, "llm:\n  provider: gemini\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "tvly-env", cfg.Search.Tavily.APIKey)
	assert.Equal(t, "gem-env", cfg.LLM.APIKey)
}

func TestLoadConfig_ExplicitValueWins(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "tvly-env")
	path := writeConfig(t, "search:\n  tavily:\n    api_key: tvly-file\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "tvly-file", cfg.Search.Tavily.APIKey)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeConfig(t, "search: [unterminated")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
}
