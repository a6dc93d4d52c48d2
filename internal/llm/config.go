package llm

import (
	"fmt"
	"time"
)

// Config contains configuration for the model gateway client.
type Config struct {
	// APIKey is the OpenRouter API key
	APIKey string

	// BaseURL is the API base URL
	// Default: https://openrouter.ai/api/v1
	BaseURL string

	// DefaultModel is used when a call does not name a model
	DefaultModel string

	// Timeout is the HTTP request timeout
	// Default: 60 seconds
	Timeout time.Duration
}

// Validate checks that required config fields are set.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("APIKey is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("BaseURL is required")
	}
	return nil
}

// SetDefaults fills in default values for optional fields.
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	if c.DefaultModel == "" {
		c.DefaultModel = "google/gemma-2-9b-it"
	}
}
