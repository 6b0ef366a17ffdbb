package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"kasmbridge/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "kasmbridge",
	Short: "MCP bridge for Kasm Workspaces sessions",
	Long: `kasmbridge exposes Kasm Workspaces session operations - create/destroy
sessions, execute commands, read and write files - as MCP tools over stdio.
Every command and file operation is validated against the configured allowed
roots before it is forwarded to the Kasm API.`,
	RunE: runServe,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Kasm API flags
	rootCmd.PersistentFlags().String("api-url", "https://kasm.example.com", "Base URL of the Kasm API")
	rootCmd.PersistentFlags().String("api-key", "", "Kasm API key")
	rootCmd.PersistentFlags().String("api-secret", "", "Kasm API secret")
	rootCmd.PersistentFlags().String("user-id", "default", "Kasm user ID to act as")
	rootCmd.PersistentFlags().String("request-timeout", "60s", "Timeout for Kasm API requests")
	rootCmd.PersistentFlags().Bool("insecure-tls", false, "Skip TLS certificate verification")

	// Security flags
	rootCmd.PersistentFlags().String("allowed-roots", "/home/kasm-user", "Comma-separated list of allowed directory roots")

	// Storage flags
	rootCmd.PersistentFlags().String("database", "./kasmbridge.db", "Path to the audit/session database")

	// Logging flags
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "Log file path (stderr when empty)")

	viper.BindPFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(checkCmd)
}

func init() {
	config.SetViperDefaults()

	viper.SetConfigName("kasmbridge")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")

	viper.SetEnvPrefix("KASM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %v\n", err)
		}
		// Config file not found; using defaults, flags and environment
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
