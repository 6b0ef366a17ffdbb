package handlers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"kasmbridge/internal/kasm"
)

// DefaultAdminHandler implements AdminHandler. Administration calls are
// pass-through forwarding with no security invariants of their own.
type DefaultAdminHandler struct {
	client KasmClient
	logger zerolog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(client KasmClient, logger zerolog.Logger) AdminHandler {
	return &DefaultAdminHandler{client: client, logger: logger}
}

// ListWorkspaces lists the available workspace images.
func (h *DefaultAdminHandler) ListWorkspaces(ctx context.Context) WorkspaceListResult {
	result, err := h.client.GetImages(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get workspaces")
		return WorkspaceListResult{Success: false, Error: fmt.Sprintf("Failed to get workspaces: %v", err)}
	}

	return WorkspaceListResult{
		Success:    true,
		Workspaces: result.Images,
		Count:      len(result.Images),
	}
}

// ListUsers lists accounts in the Kasm system.
func (h *DefaultAdminHandler) ListUsers(ctx context.Context) UserListResult {
	result, err := h.client.GetUsers(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get users")
		return UserListResult{Success: false, Error: fmt.Sprintf("Failed to get users: %v", err)}
	}

	return UserListResult{
		Success: true,
		Users:   result.Users,
		Count:   len(result.Users),
	}
}

// CreateUser creates a new account.
func (h *DefaultAdminHandler) CreateUser(ctx context.Context, username, password, firstName, lastName string) UserResult {
	result, err := h.client.CreateUser(ctx, kasm.TargetUser{
		Username:  username,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("username", username).Msg("failed to create user")
		return UserResult{Success: false, Error: fmt.Sprintf("Failed to create user: %v", err)}
	}

	return UserResult{
		Success:  true,
		UserID:   result.UserID,
		Username: username,
		Message:  fmt.Sprintf("User '%s' created successfully", username),
	}
}
