package core

import "fmt"

// ConfigError reports a missing or malformed configuration value at startup.
type ConfigError struct {
	Name    string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Name, e.Message)
}

// PolicyError reports an invalid stage policy.
type PolicyError struct {
	Field   string
	Message string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("policy %s: %s", e.Field, e.Message)
}
