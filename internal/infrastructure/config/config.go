// Package config provides configuration structs and loading for the
// omniscience engine.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the engine.
type Config struct {
	Provider  ProviderConfig  `yaml:"provider"`
	Assistant AssistantConfig `yaml:"assistant"`
	Runner    RunnerConfig    `yaml:"runner"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Storage   StorageConfig   `yaml:"storage"`
	LinkDir   LinkDirConfig   `yaml:"link_dir"`
}

// ProviderConfig holds backend provider settings.
type ProviderConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url,omitempty"` // optional custom endpoint
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// AssistantConfig holds generation settings for chat sends.
type AssistantConfig struct {
	Model          string  `yaml:"model"`
	ThinkingBudget int     `yaml:"thinking_budget"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float32 `yaml:"temperature"`
}

// RunnerConfig holds settings for backend-simulated code runs.
type RunnerConfig struct {
	Model        string        `yaml:"model"` // empty falls back to assistant model
	MaxTokens    int           `yaml:"max_tokens"`
	CacheEnabled bool          `yaml:"cache_enabled"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// LoggingConfig holds application logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// TracingConfig holds distributed tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ExporterType string  `yaml:"exporter_type"` // none, stdout, otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
	ServiceName  string  `yaml:"service_name"`
}

// StorageConfig holds session persistence settings.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // sqlite database file, empty for default
}

// LinkDirConfig holds linked-directory import settings.
type LinkDirConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default configuration values.
const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultThinkingBudget = 4096
	DefaultMaxTokens      = 8192
	DefaultTemperature    = 0.7
	DefaultTimeout        = 120 * time.Second
	DefaultMaxRetries     = 2
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultCacheTTL       = 1 * time.Hour
	DefaultServiceName    = "omniscience"
	DefaultSampleRate     = 1.0
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

var validExporterTypes = map[string]bool{
	"none":   true,
	"stdout": true,
	"otlp":   true,
}

// NewDefaultConfig creates a Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Timeout:    DefaultTimeout,
			MaxRetries: DefaultMaxRetries,
		},
		Assistant: AssistantConfig{
			Model:          DefaultModel,
			ThinkingBudget: DefaultThinkingBudget,
			MaxTokens:      DefaultMaxTokens,
			Temperature:    DefaultTemperature,
		},
		Runner: RunnerConfig{
			MaxTokens:    DefaultMaxTokens,
			CacheEnabled: true,
			CacheTTL:     DefaultCacheTTL,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ExporterType: "none",
			SampleRate:   DefaultSampleRate,
			ServiceName:  DefaultServiceName,
		},
		Storage: StorageConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Assistant.Model == "" {
		return fmt.Errorf("assistant model cannot be empty")
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	if c.Tracing.Enabled && !validExporterTypes[c.Tracing.ExporterType] {
		return fmt.Errorf("invalid tracing exporter type: %q", c.Tracing.ExporterType)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing sample rate must be within [0, 1]")
	}
	if c.Provider.Timeout < 0 {
		return fmt.Errorf("provider timeout cannot be negative")
	}
	if c.LinkDir.Enabled && c.LinkDir.Path == "" {
		return fmt.Errorf("link_dir path is required when link_dir is enabled")
	}
	return nil
}

// RunnerModel returns the model used for code runs, falling back to the
// assistant model when unset.
func (c *Config) RunnerModel() string {
	if c.Runner.Model != "" {
		return c.Runner.Model
	}
	return c.Assistant.Model
}
