package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicex/internal/config"
)

func TestParserConfig_PrimaryConfig(t *testing.T) {
	cfg := config.ParserConfig{
		Provider:     "claude",
		APIKey:       "sk-test",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
		Temperature:  0.2,
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "claude", primary.Provider)
	assert.Equal(t, "sk-test", primary.APIKey)
	assert.Equal(t, "claude-sonnet-4-20250514", primary.DefaultModel)
	assert.Equal(t, 30, primary.TimeoutSecs)
	assert.InDelta(t, 0.2, primary.Temperature, 1e-6)
}

func TestParserConfig_FallbacksNotConfigured(t *testing.T) {
	cfg := config.ParserConfig{Provider: "openai", APIKey: "sk-test"}

	assert.Nil(t, cfg.SecondaryConfig())
	assert.Nil(t, cfg.TertiaryConfig())
}

func TestParserConfig_FallbacksConfigured(t *testing.T) {
	cfg := config.ParserConfig{
		Provider: "openai",
		Secondary: config.ParserProviderConfig{
			Provider:     "gemini",
			APIKey:       "gk-secondary",
			DefaultModel: "gemini-2.0-flash",
		},
		Tertiary: config.ParserProviderConfig{
			Provider: "claude",
			APIKey:   "sk-tertiary",
		},
	}

	secondary := cfg.SecondaryConfig()
	require.NotNil(t, secondary)
	assert.Equal(t, "gemini", secondary.Provider)
	assert.Equal(t, "gemini-2.0-flash", secondary.DefaultModel)

	tertiary := cfg.TertiaryConfig()
	require.NotNil(t, tertiary)
	assert.Equal(t, "claude", tertiary.Provider)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Parser.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Parser.DefaultModel)
	assert.Equal(t, 120, cfg.Parser.TimeoutSecs)
	assert.Equal(t, "data", cfg.Batch.InputDir)
	assert.Equal(t, "reporte_facturas.csv", cfg.Batch.OutputFile)
	assert.False(t, cfg.Batch.UploadReport)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INVOICEX_PARSER_PROVIDER", "gemini")
	t.Setenv("INVOICEX_PARSER_API_KEY", "gk-env")
	t.Setenv("INVOICEX_BATCH_INPUT_DIR", "/tmp/facturas")
	t.Setenv("INVOICEX_CORS_ALLOWED_ORIGINS", "http://localhost:5173, http://127.0.0.1:5173")
	t.Setenv("INVOICEX_SERVER_PORT", "")
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Parser.Provider)
	assert.Equal(t, "gk-env", cfg.Parser.APIKey)
	assert.Equal(t, "/tmp/facturas", cfg.Batch.InputDir)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	t.Setenv("INVOICEX_PARSER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-from-openai-env")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-from-openai-env", cfg.Parser.APIKey)
}

func TestLoad_FallbackTemperature(t *testing.T) {
	t.Setenv("INVOICEX_PARSER_TEMPERATURE", "0.3")
	t.Setenv("INVOICEX_PARSER_SECONDARY_PROVIDER", "gemini")
	t.Setenv("INVOICEX_PARSER_TERTIARY_PROVIDER", "claude")
	t.Setenv("INVOICEX_PARSER_TERTIARY_TEMPERATURE", "0.7")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.3, cfg.Parser.Temperature, 1e-6)
	assert.InDelta(t, 0.3, cfg.Parser.SecondaryConfig().Temperature, 1e-6)
	assert.InDelta(t, 0.7, cfg.Parser.TertiaryConfig().Temperature, 1e-6)
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	err := config.LoadDotEnv(filepath.Join(t.TempDir(), "does-not-exist.env"))
	assert.NoError(t, err)
}

func TestLoadDotEnv_LoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("INVOICEX_DOTENV_PROBE=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("INVOICEX_DOTENV_PROBE") })

	require.NoError(t, config.LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("INVOICEX_DOTENV_PROBE"))
}
