package config

import (
	"strings"
	"time"

	"kasmbridge/internal/errors"
)

// Config holds the bridge configuration, populated from flags, environment
// and an optional config file.
type Config struct {
	APIURL         string
	APIKey         string
	APISecret      string
	UserID         string
	AllowedRoots   []string
	RequestTimeout time.Duration
	InsecureTLS    bool
	DatabasePath   string
	LogLevel       string
	LogFile        string
}

// Validate checks that the configuration is usable. Missing credentials are
// a startup error, not something to discover on the first tool call.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return &errors.ConfigError{Field: "api-url", Value: c.APIURL, Err: errors.ErrConfigInvalid}
	}
	if c.APIKey == "" || c.APISecret == "" {
		return &errors.ConfigError{Field: "api-key/api-secret", Value: "(empty)", Err: errors.ErrConfigInvalid}
	}
	if len(c.AllowedRoots) == 0 {
		return &errors.ConfigError{Field: "allowed-roots", Value: c.AllowedRoots, Err: errors.ErrConfigInvalid}
	}
	return nil
}

// ParseRoots splits the comma-separated external representation of the
// allowed roots, dropping empty entries.
func ParseRoots(raw string) []string {
	var roots []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		roots = append(roots, part)
	}
	return roots
}
