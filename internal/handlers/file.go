package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"kasmbridge/internal/security"
	"kasmbridge/internal/store"
)

// shellQuote wraps s in single quotes with embedded quotes escaped, so the
// remote shell sees one literal argument. Without this a quote inside a
// validated path would terminate the quoting and splice in an unvalidated
// command.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// DefaultFileHandler implements FileHandler. Remote files are read and
// written through shell commands executed in the session, so every operation
// passes the path validator first.
type DefaultFileHandler struct {
	client    KasmClient
	validator *security.Validator
	store     store.Store
	logger    zerolog.Logger
	userID    string
}

// NewFileHandler creates a new file handler
func NewFileHandler(client KasmClient, validator *security.Validator, st store.Store, logger zerolog.Logger, userID string) FileHandler {
	return &DefaultFileHandler{
		client:    client,
		validator: validator,
		store:     st,
		logger:    logger,
		userID:    userID,
	}
}

// ReadFile reads a file from the session via cat.
func (h *DefaultFileHandler) ReadFile(ctx context.Context, kasmID, filePath string) FileReadResult {
	if err := h.validator.ValidateFileOperation(filePath, security.OpRead); err != nil {
		h.logger.Warn().Err(err).Str("path", filePath).Msg("security violation reading file")
		recordAudit(h.store, h.logger, "read_file", kasmID, filePath, err, "")
		return FileReadResult{
			Success:   false,
			Error:     fmt.Sprintf("Security violation: %v", err),
			ErrorType: "security",
		}
	}

	command := "cat " + shellQuote(filePath)
	result, err := h.client.ExecCommand(ctx, execRequest(kasmID, h.userID, command, ""))
	if err != nil {
		recordAudit(h.store, h.logger, "read_file", kasmID, filePath, nil, err.Error())
		return FileReadResult{
			Success: false,
			Error:   fmt.Sprintf("Failed to read file: %v", err),
		}
	}
	if result.ExitCode != 0 {
		recordAudit(h.store, h.logger, "read_file", kasmID, filePath, nil, result.Error)
		return FileReadResult{
			Success: false,
			Error:   fmt.Sprintf("Failed to read file: %s", result.Error),
		}
	}

	recordAudit(h.store, h.logger, "read_file", kasmID, filePath, nil, "")
	return FileReadResult{
		Success:  true,
		FilePath: filePath,
		Content:  result.Output,
		Size:     len(result.Output),
	}
}

// WriteFile writes content to a file in the session. The content travels
// base64-encoded to survive shell quoting; the write is a two-step remote
// sequence (create the directory, then decode into the file) that stops at
// the first failed step.
func (h *DefaultFileHandler) WriteFile(ctx context.Context, kasmID, filePath, content string) FileWriteResult {
	if err := h.validator.ValidateFileOperation(filePath, security.OpWrite); err != nil {
		h.logger.Warn().Err(err).Str("path", filePath).Msg("security violation writing file")
		recordAudit(h.store, h.logger, "write_file", kasmID, filePath, err, "")
		return FileWriteResult{
			Success:   false,
			Error:     fmt.Sprintf("Security violation: %v", err),
			ErrorType: "security",
		}
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	quoted := shellQuote(filePath)
	commands := []string{
		fmt.Sprintf("mkdir -p $(dirname %s)", quoted),
		fmt.Sprintf("echo '%s' | base64 -d > %s", encoded, quoted),
	}

	for _, command := range commands {
		result, err := h.client.ExecCommand(ctx, execRequest(kasmID, h.userID, command, ""))
		if err != nil {
			recordAudit(h.store, h.logger, "write_file", kasmID, filePath, nil, err.Error())
			return FileWriteResult{
				Success: false,
				Error:   fmt.Sprintf("Failed to write file: %v", err),
			}
		}
		if result.ExitCode != 0 {
			recordAudit(h.store, h.logger, "write_file", kasmID, filePath, nil, result.Error)
			return FileWriteResult{
				Success: false,
				Error:   fmt.Sprintf("Failed to write file: %s", result.Error),
			}
		}
	}

	recordAudit(h.store, h.logger, "write_file", kasmID, filePath, nil, "")
	return FileWriteResult{
		Success:  true,
		FilePath: filePath,
		Size:     len(content),
		Message:  fmt.Sprintf("File written successfully to %s", filePath),
	}
}
