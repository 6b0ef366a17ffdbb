package handlers

import (
	"errors"

	"github.com/rs/zerolog"

	"kasmbridge/internal/kasm"
	"kasmbridge/internal/security"
	"kasmbridge/internal/store"
)

// recordAudit writes one audit row for a tool invocation. denial is the
// validator error when the request was refused, nil otherwise. Audit failures
// are logged and swallowed; they must never block or fail the bridge.
func recordAudit(st store.Store, logger zerolog.Logger, tool, kasmID, argument string, denial error, message string) {
	entry := store.AuditEntry{
		Tool:     tool,
		KasmID:   kasmID,
		Argument: argument,
		Allowed:  denial == nil,
		Message:  message,
	}

	var violation *security.Violation
	if errors.As(denial, &violation) {
		entry.Violation = violation.Kind.String()
		entry.Message = violation.Error()
	} else if denial != nil {
		entry.Violation = "denied"
		entry.Message = denial.Error()
	}

	if err := st.LogAudit(entry); err != nil {
		logger.Warn().Err(err).Str("tool", tool).Msg("failed to write audit entry")
	}
}

// execRequest builds the API request for a command run as the configured user.
func execRequest(kasmID, userID, command, workingDir string) kasm.ExecRequest {
	return kasm.ExecRequest{
		KasmID:     kasmID,
		UserID:     userID,
		Command:    command,
		WorkingDir: workingDir,
	}
}
