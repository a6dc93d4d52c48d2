package llm

import "fmt"

// ProviderError represents a failed model gateway call.
type ProviderError struct {
	// Kind categorizes the failure
	Kind string

	// Message is a human-readable error message
	Message string

	// Code is the HTTP status code (if applicable)
	Code int

	// Err is the underlying error
	Err error
}

// Failure kinds.
const (
	KindNetwork = "network"
	KindAPI     = "api"
	KindTimeout = "timeout"
	KindEmpty   = "empty"
)

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("provider %s error (status %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("provider %s error: %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a network error.
func NewNetworkError(err error) *ProviderError {
	return &ProviderError{
		Kind:    KindNetwork,
		Message: "failed to reach the model endpoint",
		Err:     err,
	}
}

// NewAPIError creates an API error with status code.
func NewAPIError(code int, message string) *ProviderError {
	return &ProviderError{
		Kind:    KindAPI,
		Code:    code,
		Message: message,
	}
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *ProviderError {
	return &ProviderError{
		Kind:    KindTimeout,
		Message: "request timed out; the model may be under heavy load",
		Err:     err,
	}
}

// NewEmptyError reports a well-formed response carrying no completion.
func NewEmptyError() *ProviderError {
	return &ProviderError{
		Kind:    KindEmpty,
		Message: "no choices in response",
	}
}
