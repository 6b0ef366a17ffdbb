package cli

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"kasmbridge/internal/config"
)

// buildConfig constructs a config.Config from Viper values
func buildConfig() (*config.Config, error) {
	cfg := &config.Config{
		APIURL:       viper.GetString("api-url"),
		APIKey:       viper.GetString("api-key"),
		APISecret:    viper.GetString("api-secret"),
		UserID:       viper.GetString("user-id"),
		AllowedRoots: config.ParseRoots(viper.GetString("allowed-roots")),
		InsecureTLS:  viper.GetBool("insecure-tls"),
		DatabasePath: viper.GetString("database"),
		LogLevel:     viper.GetString("log-level"),
		LogFile:      viper.GetString("log-file"),
	}

	timeout, err := time.ParseDuration(viper.GetString("request-timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid request-timeout: %w", err)
	}
	cfg.RequestTimeout = timeout

	return cfg, nil
}
