// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	apperrors "github.com/Corphon/MagicStudio/internal/errors"
)

// DefaultParentPassword is used when PARENT_PASSWORD is not set.
const DefaultParentPassword = "magia2025"

// Provider names understood by the llm registries
const (
	ProviderGoogle      = "google"
	ProviderImagen      = "imagen"
	ProviderGeminiImage = "gemini-image"
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderMock        = "mock"
)

// compatibleProviders speak the OpenAI chat format and use TEXT_API_KEY
var compatibleProviders = map[string]bool{
	"openrouter":   true,
	"grok":         true,
	"qwen":         true,
	"glm":          true,
	"githubmodels": true,
}

// Config holds every setting of the studio
type Config struct {
	Port      string `env:"PORT" env-default:"8080"`
	DataDir   string `env:"DATA_DIR" env-default:"data"`
	LogDir    string `env:"LOG_DIR" env-default:"logs"`
	DebugMode bool   `env:"DEBUG_MODE" env-default:"false"`
	DemoMode  bool   `env:"DEMO_MODE" env-default:"false"`

	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	AnthropicKey string `env:"ANTHROPIC_API_KEY"`
	CloudProject string `env:"GOOGLE_CLOUD_PROJECT"`
	CloudRegion  string `env:"GOOGLE_CLOUD_REGION" env-default:"us-central1"`

	Text  TextConfig
	Image ImageConfig

	RetryBackoff   time.Duration `env:"RETRY_BACKOFF" env-default:"12s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"90s"`
	CreateLimit    int           `env:"CREATE_LIMIT" env-default:"10"`
	UnlockLimit    int           `env:"UNLOCK_LIMIT" env-default:"5"`

	ParentPassword string        `env:"PARENT_PASSWORD" env-default:"magia2025"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL" env-default:"24h"`

	AuditBackend string `env:"AUDIT_BACKEND" env-default:"json"`
	AuditFile    string `env:"AUDIT_FILE" env-default:"historial.json"`
}

// TextConfig selects the moderation backend
type TextConfig struct {
	Provider string `env:"TEXT_PROVIDER" env-default:"google"`
	Model    string `env:"TEXT_MODEL"`
	BaseURL  string `env:"TEXT_BASE_URL"`
	APIKey   string `env:"TEXT_API_KEY"`
}

// ImageConfig selects the illustration backend
type ImageConfig struct {
	Provider    string `env:"IMAGE_PROVIDER" env-default:"imagen"`
	Model       string `env:"IMAGE_MODEL"`
	BaseURL     string `env:"IMAGE_BASE_URL"`
	Extractor   string `env:"IMAGE_EXTRACTOR"`
	AspectRatio string `env:"IMAGE_ASPECT_RATIO" env-default:"1:1"`
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Text.Provider = strings.ToLower(strings.TrimSpace(c.Text.Provider))
	c.Image.Provider = strings.ToLower(strings.TrimSpace(c.Image.Provider))
	c.AuditBackend = strings.ToLower(strings.TrimSpace(c.AuditBackend))

	if c.DemoMode {
		c.Text.Provider = ProviderMock
		c.Image.Provider = ProviderMock
	}
	if c.ParentPassword == "" {
		c.ParentPassword = DefaultParentPassword
	}
	if c.Image.Extractor == "" {
		c.Image.Extractor = DefaultExtractor(c.Image.Provider)
	}
}

// DefaultExtractor maps an image provider to the response shape it returns
func DefaultExtractor(provider string) string {
	switch provider {
	case ProviderImagen:
		return "predictions"
	case ProviderOpenAI:
		return "data-list"
	default:
		return "inline"
	}
}

// GoogleKey returns whichever Google credential is set
func (c *Config) GoogleKey() string {
	if c.GoogleAPIKey != "" {
		return c.GoogleAPIKey
	}
	return c.GeminiAPIKey
}

// Validate fails with an AuthMissing error when an active provider has no credential
func (c *Config) Validate() error {
	if c.textKey() == "" {
		return apperrors.NewAuthMissingError(
			fmt.Sprintf("no API credential configured for text provider %q", c.Text.Provider), nil)
	}
	if c.keyFor(c.Image.Provider) == "" && !c.imageOnVertex() {
		return apperrors.NewAuthMissingError(
			fmt.Sprintf("no API credential configured for image provider %q", c.Image.Provider), nil)
	}
	switch c.AuditBackend {
	case "json", "sqlite":
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown AUDIT_BACKEND %q", c.AuditBackend), nil)
	}
	return nil
}

func (c *Config) keyFor(provider string) string {
	switch provider {
	case ProviderGoogle, ProviderImagen, ProviderGeminiImage:
		return c.GoogleKey()
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicKey
	case ProviderMock:
		return "mock"
	default:
		return ""
	}
}

// imageOnVertex reports whether the image provider runs on Vertex AI with
// application default credentials instead of an api key
func (c *Config) imageOnVertex() bool {
	switch c.Image.Provider {
	case ProviderImagen, ProviderGeminiImage:
		return c.CloudProject != "" && c.Image.BaseURL == ""
	}
	return false
}

// textKey prefers TEXT_API_KEY over the provider's own credential
func (c *Config) textKey() string {
	if c.Text.APIKey != "" && c.Text.Provider != ProviderMock {
		return c.Text.APIKey
	}
	if compatibleProviders[c.Text.Provider] {
		return ""
	}
	return c.keyFor(c.Text.Provider)
}

// TextProviderConfig builds the map handed to llm.Provider.Initialize
func (c *Config) TextProviderConfig() map[string]string {
	cfg := map[string]string{
		"api_key":       c.textKey(),
		"default_model": c.Text.Model,
	}
	if c.Text.BaseURL != "" {
		cfg["base_url"] = c.Text.BaseURL
	}
	return cfg
}

// ImageProviderConfig builds the map handed to llm.ImageProvider.Initialize
func (c *Config) ImageProviderConfig() map[string]string {
	cfg := map[string]string{
		"api_key":       c.keyFor(c.Image.Provider),
		"default_model": c.Image.Model,
		"aspect_ratio":  c.Image.AspectRatio,
	}
	if c.Image.BaseURL != "" {
		cfg["base_url"] = c.Image.BaseURL
	}
	if c.CloudProject != "" {
		cfg["project_id"] = c.CloudProject
		cfg["region"] = c.CloudRegion
	}
	return cfg
}

// AuditPath is the location of the audit store
func (c *Config) AuditPath() string {
	if filepath.IsAbs(c.AuditFile) {
		return c.AuditFile
	}
	return filepath.Join(c.DataDir, c.AuditFile)
}

// LogFile is the location of the application log
func (c *Config) LogFile() string {
	return filepath.Join(c.LogDir, "magicstudio.log")
}

// EnsureDirs creates the data and log directories
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.LogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
