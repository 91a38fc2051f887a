package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "database_url: postgres://localhost/app\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/app", cfg.DatabaseURL)
	assert.Equal(t, ".cache/counters", cfg.BadgerPath)
	assert.Equal(t, "logs/screenshots", cfg.ScreenshotDir)
	assert.Equal(t, 60, cfg.RetryBaseDelaySeconds)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "database_url: postgres://localhost/file\nport: \"9000\"\n")
	t.Setenv("DATABASE_URL", "postgres://localhost/env")
	t.Setenv("PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/env", cfg.DatabaseURL)
	assert.Equal(t, "9100", cfg.Port)
}

func TestLoadRejectsMissingDatabaseURL(t *testing.T) {
	path := writeConfig(t, "port: \"9000\"\n")
	t.Setenv("DATABASE_URL", "")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadChatID(t *testing.T) {
	path := writeConfig(t, "database_url: postgres://localhost/app\n")
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadParsesFullFile(t *testing.T) {
	path := writeConfig(t, `
database_url: postgres://localhost/app
headless: false
cookies_path: cookies.json
retry_base_delay_seconds: 30
default_answers:
  "years of experience": "5"
log_format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Headless)
	assert.Equal(t, "cookies.json", cfg.CookiesPath)
	assert.Equal(t, 30, cfg.RetryBaseDelaySeconds)
	assert.Equal(t, "5", cfg.DefaultAnswers["years of experience"])
	assert.Equal(t, "json", cfg.LogFormat)
}
