package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	LLM      LLMConfig         `yaml:"llm"`
	Airtable AirtableConfig    `yaml:"airtable"`
	Prompt   PromptConfig      `yaml:"prompt"`
	Audit    AuditConfig       `yaml:"audit"`
	Auth     AuthConfig        `yaml:"auth"`
	Pipeline PipelineConfig    `yaml:"pipeline"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Airtable.Validate(); err != nil {
		return err
	}
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LLMConfig holds classifier provider configuration.
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"`
	MaxTokens int    `yaml:"max_tokens"`
}

// Validate validates the classifier configuration.
func (c *LLMConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In("anthropic", "claude", "openai")),
		validation.Field(&c.APIKey, validation.Required),
		validation.Field(&c.Timeout, validation.Min(0)),
		validation.Field(&c.MaxTokens, validation.Min(0)),
	)
}

// AirtableConfig holds the record store connection settings.
type AirtableConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	BaseID        string `yaml:"base_id"`
	ProjectsTable string `yaml:"projects_table"`
	UpdatesTable  string `yaml:"updates_table"`
	Timeout       int    `yaml:"timeout"`
}

// Validate validates the record store configuration.
func (c *AirtableConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required),
		validation.Field(&c.BaseID, validation.Required),
		validation.Field(&c.ProjectsTable, validation.Required),
		validation.Field(&c.UpdatesTable, validation.Required),
		validation.Field(&c.Timeout, validation.Min(0)),
	)
}

// PromptConfig holds the classifier prompt settings.
//
// Path points at a prompt text file; when empty, the built-in prompt is
// used. Watch enables hot reload of the file on change.
type PromptConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// AuditConfig holds the local update history settings. An empty path
// disables the history database.
type AuditConfig struct {
	Path string `yaml:"path"`
}

// PipelineConfig holds pipeline tuning knobs.
type PipelineConfig struct {
	MaxFacts int `yaml:"max_facts"`
}

// Validate validates the pipeline configuration.
func (c *PipelineConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxFacts, validation.Required, validation.Min(1), validation.Max(32)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		LLM: LLMConfig{
			Provider:  "anthropic",
			Timeout:   60,
			MaxTokens: 1500,
		},
		Airtable: AirtableConfig{
			ProjectsTable: "Projects",
			UpdatesTable:  "Updates",
			Timeout:       10,
		},
		Audit: AuditConfig{
			Path: "./dotupdate.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Pipeline: PipelineConfig{
			MaxFacts: 8,
		},
	}
}
