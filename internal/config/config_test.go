package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local://press-archive.db", cfg.Store.FallbackLocator)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2048, cfg.Anthropic.MaxTokens)
	assert.Equal(t, "it", cfg.NewsAPI.Language)
	assert.Equal(t, 20, cfg.NewsAPI.PageSize)
	assert.Equal(t, 2, cfg.Search.DelaySecs)
	assert.Equal(t, 5, cfg.Resolver.MaxAttempts)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  locator: pg://user:pw@localhost/press
log:
  level: debug
  format: console
server:
  port: 9090
resolver:
  max_attempts: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pg://user:pw@localhost/press", cfg.Store.Locator)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Resolver.MaxAttempts)
	// Defaults still apply for unset values
	assert.Equal(t, "it", cfg.NewsAPI.Language)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
newsapi:
  language: it
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PRESS_NEWSAPI_LANGUAGE", "en")
	t.Setenv("PRESS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "en", cfg.NewsAPI.Language)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("PRESS_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Resolver.MaxAttempts = 5
	cfg.NewsAPI.PageSize = 20
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateGenerate_RequiresAnthropicKey(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")

	cfg.Anthropic.Key = "sk-ant-key"
	assert.NoError(t, cfg.Validate("generate"))
}

func TestValidateRun_RequiresAnthropicKey(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
}

func TestValidateDiscover_WorksWithoutCredentials(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("discover"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateResolverBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Resolver.MaxAttempts = 0
	err := cfg.Validate("discover")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolver.max_attempts must be between 1 and 20")

	cfg.Resolver.MaxAttempts = 21
	err = cfg.Validate("discover")
	assert.Error(t, err)

	cfg.Resolver.MaxAttempts = 20
	assert.NoError(t, cfg.Validate("discover"))
}

func TestValidatePageSizeBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.NewsAPI.PageSize = 0
	err := cfg.Validate("discover")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newsapi.page_size must be between 1 and 100")

	cfg.NewsAPI.PageSize = 101
	assert.Error(t, cfg.Validate("discover"))
}

func TestRedacted(t *testing.T) {
	cfg := Config{}
	cfg.Anthropic.Key = "sk-ant-secret"
	cfg.SMTP.Password = "hunter2"
	cfg.Store.Locator = "pg://user:pw@localhost/press"
	cfg.Twitter.BearerToken = ""

	red := cfg.Redacted()
	assert.Equal(t, "********", red.Anthropic.Key)
	assert.Equal(t, "********", red.SMTP.Password)
	assert.Equal(t, "pg://********@localhost/press", red.Store.Locator)
	assert.Empty(t, red.Twitter.BearerToken, "empty secrets stay empty")

	// The original is untouched.
	assert.Equal(t, "sk-ant-secret", cfg.Anthropic.Key)
}
