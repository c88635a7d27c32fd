// Package config loads and validates application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	"github.com/kaiwa-ai/kaiwa/src/catalog"
)

// Config holds the application's configuration knobs.
type Config struct {
	APIKey          string `json:"api_key,omitempty"`
	BaseURL         string `json:"base_url,omitempty" validate:"omitempty,url"`
	DefaultModel    string `json:"default_model" validate:"required"`
	MaxTokens       int    `json:"max_tokens" validate:"gt=0"`
	ContextMessages int    `json:"context_messages" validate:"gt=0"`
	LogLevel        string `json:"log_level" validate:"log_level"`
	SiteURL         string `json:"site_url,omitempty" validate:"omitempty,url"`
	SiteName        string `json:"site_name,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultModel:    catalog.ModelGPT4oMini,
		MaxTokens:       1000,
		ContextMessages: 10,
		LogLevel:        "warn",
		SiteURL:         "https://japanaichatapp.com",
		SiteName:        "Japan AI Chat App",
	}
}

// Validator validates configuration values using go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterValidation("log_level", validateLogLevel)
	return &Validator{validate: v}
}

// Validate validates a complete configuration
func (v *Validator) Validate(config *Config) error {
	if err := v.validate.Struct(config); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				return fmt.Errorf("config field %s: validation failed on tag '%s' with value '%v'",
					e.Field(), e.Tag(), e.Value())
			}
		}
		return err
	}
	return nil
}

// validateLogLevel validates log level values
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// Load reads the config file at path, merging it over the defaults and
// validating the result. A missing file yields the defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
