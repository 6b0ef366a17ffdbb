package errors

import "fmt"

// Error codes surfaced to tool callers
var (
	ErrSecurityViolation = fmt.Errorf("SECURITY_VIOLATION")
	ErrConfigInvalid     = fmt.Errorf("CONFIG_INVALID")
	ErrAPIRequestFailed  = fmt.Errorf("API_REQUEST_FAILED")
)

// ConfigError wraps configuration validation failures.
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration invalid for %s (value: %v): %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
