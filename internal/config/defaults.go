package config

import "github.com/spf13/viper"

// SetViperDefaults sets all default configuration values in Viper
func SetViperDefaults() {
	// Kasm API defaults
	viper.SetDefault("api-url", "https://kasm.example.com")
	viper.SetDefault("api-key", "")
	viper.SetDefault("api-secret", "")
	viper.SetDefault("user-id", "default")
	viper.SetDefault("request-timeout", "60s")
	viper.SetDefault("insecure-tls", false)

	// Security defaults
	viper.SetDefault("allowed-roots", "/home/kasm-user")

	// Storage defaults
	viper.SetDefault("database", "./kasmbridge.db")

	// Logging defaults
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-file", "")
}
