package handlers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"kasmbridge/internal/security"
	"kasmbridge/internal/store"
)

// DefaultExecHandler implements ExecHandler
type DefaultExecHandler struct {
	client    KasmClient
	validator *security.Validator
	store     store.Store
	logger    zerolog.Logger
	userID    string
}

// NewExecHandler creates a new exec handler
func NewExecHandler(client KasmClient, validator *security.Validator, st store.Store, logger zerolog.Logger, userID string) ExecHandler {
	return &DefaultExecHandler{
		client:    client,
		validator: validator,
		store:     st,
		logger:    logger,
		userID:    userID,
	}
}

// ExecuteCommand validates a command against the security boundary and only
// then forwards it to the remote session. A denial never reaches the network.
func (h *DefaultExecHandler) ExecuteCommand(ctx context.Context, kasmID, command, workingDir string) ExecCommandResult {
	if err := h.validator.ValidateCommand(command, workingDir); err != nil {
		h.logger.Warn().Err(err).Str("kasm_id", kasmID).Msg("security violation")
		recordAudit(h.store, h.logger, "execute_command", kasmID, command, err, "")
		return ExecCommandResult{
			Success:   false,
			Error:     fmt.Sprintf("Security violation: %v", err),
			ErrorType: "security",
		}
	}

	h.logger.Info().Str("kasm_id", kasmID).Str("command", command).Msg("executing command")

	result, err := h.client.ExecCommand(ctx, execRequest(kasmID, h.userID, command, workingDir))
	if err != nil {
		h.logger.Error().Err(err).Str("kasm_id", kasmID).Msg("command execution failed")
		recordAudit(h.store, h.logger, "execute_command", kasmID, command, nil, err.Error())
		return ExecCommandResult{
			Success: false,
			Error:   fmt.Sprintf("Failed to execute command: %v", err),
		}
	}

	recordAudit(h.store, h.logger, "execute_command", kasmID, command, nil, "")
	return ExecCommandResult{
		Success:  true,
		KasmID:   kasmID,
		Command:  command,
		Output:   result.Output,
		ExitCode: result.ExitCode,
		Error:    result.Error,
	}
}
