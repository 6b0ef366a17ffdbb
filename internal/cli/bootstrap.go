package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"kasmbridge/internal/config"
	"kasmbridge/internal/handlers"
	"kasmbridge/internal/kasm"
	"kasmbridge/internal/security"
	"kasmbridge/internal/server"
	"kasmbridge/internal/store"
)

// App holds the wired components of a running bridge. There is no global
// state; everything hangs off this struct.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Store     *store.SQLiteStore
	Client    *kasm.Client
	Validator *security.Validator
	Server    *server.Server
}

// Close releases the app's resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// newLogger builds the zerolog logger from config. Logs go to a file when
// one is configured, otherwise to stderr (stdout carries the MCP protocol).
func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var output io.Writer = os.Stderr
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger(), nil
}

// bootstrap validates the configuration and wires client, validator, store,
// handlers and server together.
func bootstrap(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := st.Initialize(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	client := kasm.NewClient(cfg.APIURL, cfg.APIKey, cfg.APISecret, cfg.RequestTimeout, cfg.InsecureTLS, logger)
	validator := security.NewValidator(security.NewRootSet(cfg.AllowedRoots))

	logger.Info().
		Str("api_url", cfg.APIURL).
		Strs("allowed_roots", validator.Roots().Roots()).
		Msg("kasmbridge initialized")

	execHandler := handlers.NewExecHandler(client, validator, st, logger, cfg.UserID)
	fileHandler := handlers.NewFileHandler(client, validator, st, logger, cfg.UserID)
	sessionHandler := handlers.NewSessionHandler(client, st, logger, cfg.UserID)
	adminHandler := handlers.NewAdminHandler(client, logger)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     st,
		Client:    client,
		Validator: validator,
		Server:    server.New(execHandler, fileHandler, sessionHandler, adminHandler, logger),
	}, nil
}
