package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/MagicStudio/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATA_DIR", "DEMO_MODE", "GOOGLE_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"GOOGLE_CLOUD_PROJECT", "TEXT_PROVIDER", "TEXT_MODEL", "IMAGE_PROVIDER", "IMAGE_MODEL",
		"IMAGE_EXTRACTOR", "RETRY_BACKOFF", "PARENT_PASSWORD", "AUDIT_BACKEND", "AUDIT_FILE",
		"CREATE_LIMIT", "UNLOCK_LIMIT", "TEXT_BASE_URL", "IMAGE_BASE_URL",
	} {
		// Setenv restores the original value after the test
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderGoogle, cfg.Text.Provider)
	assert.Equal(t, ProviderImagen, cfg.Image.Provider)
	assert.Equal(t, "predictions", cfg.Image.Extractor)
	assert.Equal(t, 12*time.Second, cfg.RetryBackoff)
	assert.Equal(t, DefaultParentPassword, cfg.ParentPassword)
	assert.Equal(t, "json", cfg.AuditBackend)
	assert.Equal(t, filepath.Join("data", "historial.json"), cfg.AuditPath())
	assert.Equal(t, 10, cfg.CreateLimit)
	assert.Equal(t, 5, cfg.UnlockLimit)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("IMAGE_PROVIDER", " OpenAI ")
	t.Setenv("RETRY_BACKOFF", "3s")
	t.Setenv("PARENT_PASSWORD", "s3cret")
	t.Setenv("AUDIT_FILE", "/var/lib/studio/history.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Image.Provider)
	assert.Equal(t, "data-list", cfg.Image.Extractor)
	assert.Equal(t, 3*time.Second, cfg.RetryBackoff)
	assert.Equal(t, "s3cret", cfg.ParentPassword)
	assert.Equal(t, "/var/lib/studio/history.json", cfg.AuditPath())
}

func TestLoad_DemoMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEMO_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, cfg.Text.Provider)
	assert.Equal(t, ProviderMock, cfg.Image.Provider)
	assert.Equal(t, "inline", cfg.Image.Extractor)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Text:         TextConfig{Provider: ProviderGoogle},
		Image:        ImageConfig{Provider: ProviderImagen},
		AuditBackend: "json",
	}
	err := cfg.Validate()
	assert.True(t, apperrors.IsAuthMissing(err))

	cfg.GeminiAPIKey = "g"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "g", cfg.TextProviderConfig()["api_key"])

	cfg.Image.Provider = ProviderOpenAI
	assert.True(t, apperrors.IsAuthMissing(cfg.Validate()))
	cfg.OpenAIAPIKey = "o"
	assert.NoError(t, cfg.Validate())

	cfg.Text.Provider = "openrouter"
	assert.True(t, apperrors.IsAuthMissing(cfg.Validate()), "compatible services need TEXT_API_KEY")
	cfg.Text.APIKey = "r"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "r", cfg.TextProviderConfig()["api_key"])

	cfg.Text = TextConfig{Provider: ProviderAnthropic}
	assert.True(t, apperrors.IsAuthMissing(cfg.Validate()))
	cfg.AnthropicKey = "a"
	assert.NoError(t, cfg.Validate())

	cfg.AuditBackend = "postgres"
	assert.True(t, apperrors.IsValidationError(cfg.Validate()))
}

func TestValidate_VertexImageNeedsNoKey(t *testing.T) {
	cfg := &Config{
		Text:         TextConfig{Provider: ProviderMock},
		Image:        ImageConfig{Provider: ProviderImagen},
		AuditBackend: "json",
	}
	assert.True(t, apperrors.IsAuthMissing(cfg.Validate()))

	cfg.CloudProject = "kids"
	assert.NoError(t, cfg.Validate())

	// a proxy base url goes through the api key path again
	cfg.Image.BaseURL = "http://proxy"
	assert.True(t, apperrors.IsAuthMissing(cfg.Validate()))
}

func TestProviderConfigs(t *testing.T) {
	cfg := &Config{
		GoogleAPIKey: "primary",
		GeminiAPIKey: "secondary",
		CloudProject: "kids",
		CloudRegion:  "europe-west4",
		Text:         TextConfig{Provider: ProviderGoogle, Model: "gemini-2.0-flash", BaseURL: "http://local"},
		Image:        ImageConfig{Provider: ProviderImagen, AspectRatio: "1:1"},
	}

	text := cfg.TextProviderConfig()
	assert.Equal(t, "primary", text["api_key"])
	assert.Equal(t, "gemini-2.0-flash", text["default_model"])
	assert.Equal(t, "http://local", text["base_url"])

	image := cfg.ImageProviderConfig()
	assert.Equal(t, "1:1", image["aspect_ratio"])
	assert.Equal(t, "kids", image["project_id"])
	assert.Equal(t, "europe-west4", image["region"])
	assert.NotContains(t, image, "base_url")
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{DataDir: filepath.Join(root, "data"), LogDir: filepath.Join(root, "logs")}

	require.NoError(t, cfg.EnsureDirs())
	assert.DirExists(t, cfg.DataDir)
	assert.DirExists(t, cfg.LogDir)
	assert.Equal(t, filepath.Join(root, "logs", "magicstudio.log"), cfg.LogFile())
}
