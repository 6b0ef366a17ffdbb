package handlers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"kasmbridge/internal/store"
)

// DefaultSessionHandler implements SessionHandler. Session lifecycle calls
// are pass-through forwarding with local registry bookkeeping; there is no
// security boundary to cross.
type DefaultSessionHandler struct {
	client KasmClient
	store  store.Store
	logger zerolog.Logger
	userID string
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(client KasmClient, st store.Store, logger zerolog.Logger, userID string) SessionHandler {
	return &DefaultSessionHandler{
		client: client,
		store:  st,
		logger: logger,
		userID: userID,
	}
}

// CreateSession launches a new workspace session.
func (h *DefaultSessionHandler) CreateSession(ctx context.Context, image, groupID string) SessionResult {
	result, err := h.client.RequestKasm(ctx, image, h.userID, groupID)
	if err != nil {
		h.logger.Error().Err(err).Str("image", image).Msg("failed to create session")
		return SessionResult{Success: false, Error: fmt.Sprintf("Failed to create session: %v", err)}
	}

	if err := h.store.RecordSession(result.KasmID, image); err != nil {
		h.logger.Warn().Err(err).Str("kasm_id", result.KasmID).Msg("failed to record session")
	}
	recordAudit(h.store, h.logger, "create_session", result.KasmID, image, nil, "")

	status := result.Status
	if status == "" {
		status = "created"
	}
	return SessionResult{
		Success:    true,
		KasmID:     result.KasmID,
		Status:     status,
		SessionURL: result.KasmURL,
	}
}

// DestroySession terminates a session.
func (h *DefaultSessionHandler) DestroySession(ctx context.Context, kasmID string) SessionResult {
	if err := h.client.DestroyKasm(ctx, kasmID, h.userID); err != nil {
		h.logger.Error().Err(err).Str("kasm_id", kasmID).Msg("failed to destroy session")
		return SessionResult{Success: false, Error: fmt.Sprintf("Failed to destroy session: %v", err)}
	}

	if err := h.store.MarkDestroyed(kasmID); err != nil {
		h.logger.Warn().Err(err).Str("kasm_id", kasmID).Msg("failed to mark session destroyed")
	}
	recordAudit(h.store, h.logger, "destroy_session", kasmID, "", nil, "")

	return SessionResult{
		Success: true,
		KasmID:  kasmID,
		Status:  "destroyed",
		Message: "Session terminated successfully",
	}
}

// GetStatus reports the status of a session.
func (h *DefaultSessionHandler) GetStatus(ctx context.Context, kasmID string) StatusResult {
	status, err := h.client.GetKasmStatus(ctx, kasmID, h.userID)
	if err != nil {
		h.logger.Error().Err(err).Str("kasm_id", kasmID).Msg("failed to get session status")
		return StatusResult{Success: false, Error: fmt.Sprintf("Failed to get session status: %v", err)}
	}

	return StatusResult{
		Success:           true,
		KasmID:            kasmID,
		Status:            status.Status,
		OperationalStatus: status.OperationalStatus,
		SessionURL:        status.KasmURL,
		CreatedTime:       status.CreatedTime,
		LastActivity:      status.LastActivity,
	}
}

// PauseSession pauses a running session to free resources.
func (h *DefaultSessionHandler) PauseSession(ctx context.Context, kasmID string) SessionResult {
	if err := h.client.PauseKasm(ctx, kasmID, h.userID); err != nil {
		h.logger.Error().Err(err).Str("kasm_id", kasmID).Msg("failed to pause session")
		return SessionResult{Success: false, Error: fmt.Sprintf("Failed to pause session: %v", err)}
	}

	return SessionResult{
		Success: true,
		KasmID:  kasmID,
		Status:  "paused",
		Message: "Session paused successfully",
	}
}

// ResumeSession resumes a paused session.
func (h *DefaultSessionHandler) ResumeSession(ctx context.Context, kasmID string) SessionResult {
	result, err := h.client.ResumeKasm(ctx, kasmID, h.userID)
	if err != nil {
		h.logger.Error().Err(err).Str("kasm_id", kasmID).Msg("failed to resume session")
		return SessionResult{Success: false, Error: fmt.Sprintf("Failed to resume session: %v", err)}
	}

	return SessionResult{
		Success:    true,
		KasmID:     kasmID,
		Status:     "running",
		SessionURL: result.KasmURL,
		Message:    "Session resumed successfully",
	}
}

// ListUserSessions lists the active sessions of the configured user.
func (h *DefaultSessionHandler) ListUserSessions(ctx context.Context) SessionListResult {
	result, err := h.client.GetUserKasms(ctx, h.userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list user sessions")
		return SessionListResult{Success: false, Error: fmt.Sprintf("Failed to list user sessions: %v", err)}
	}

	return SessionListResult{
		Success:  true,
		Sessions: result.Kasms,
		Count:    len(result.Kasms),
	}
}

// ListAllSessions lists all active sessions in the system (admin).
func (h *DefaultSessionHandler) ListAllSessions(ctx context.Context) SessionListResult {
	result, err := h.client.GetKasms(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list all sessions")
		return SessionListResult{Success: false, Error: fmt.Sprintf("Failed to list all sessions: %v", err)}
	}

	return SessionListResult{
		Success:  true,
		Sessions: result.Kasms,
		Count:    len(result.Kasms),
	}
}

// GetScreenshot captures a screenshot of a session.
func (h *DefaultSessionHandler) GetScreenshot(ctx context.Context, kasmID string) ScreenshotResult {
	result, err := h.client.GetKasmScreenshot(ctx, kasmID, h.userID, 0, 0)
	if err != nil {
		h.logger.Error().Err(err).Str("kasm_id", kasmID).Msg("failed to get screenshot")
		return ScreenshotResult{Success: false, Error: fmt.Sprintf("Failed to get screenshot: %v", err)}
	}

	return ScreenshotResult{
		Success:        true,
		KasmID:         kasmID,
		ScreenshotData: result.Screenshot,
		Format:         "base64",
	}
}
