package handlers

import (
	"context"

	"kasmbridge/internal/kasm"
)

// KasmClient is the slice of the API client the handlers need. Execution and
// file tools must validate before calling any of these.
type KasmClient interface {
	RequestKasm(ctx context.Context, image, userID, groupID string) (*kasm.RequestKasmResponse, error)
	DestroyKasm(ctx context.Context, kasmID, userID string) error
	GetKasmStatus(ctx context.Context, kasmID, userID string) (*kasm.SessionStatus, error)
	PauseKasm(ctx context.Context, kasmID, userID string) error
	ResumeKasm(ctx context.Context, kasmID, userID string) (*kasm.ResumeResponse, error)
	GetUserKasms(ctx context.Context, userID string) (*kasm.KasmsResponse, error)
	GetKasms(ctx context.Context) (*kasm.KasmsResponse, error)
	ExecCommand(ctx context.Context, req kasm.ExecRequest) (*kasm.ExecResult, error)
	GetKasmScreenshot(ctx context.Context, kasmID, userID string, width, height int) (*kasm.ScreenshotResponse, error)
	GetImages(ctx context.Context) (*kasm.ImagesResponse, error)
	GetUsers(ctx context.Context) (*kasm.UsersResponse, error)
	CreateUser(ctx context.Context, user kasm.TargetUser) (*kasm.CreateUserResponse, error)
}

// ExecHandler handles command execution in remote sessions
type ExecHandler interface {
	ExecuteCommand(ctx context.Context, kasmID, command, workingDir string) ExecCommandResult
}

// ExecCommandResult is the tool payload for command execution.
type ExecCommandResult struct {
	Success   bool   `json:"success"`
	KasmID    string `json:"kasm_id,omitempty"`
	Command   string `json:"command,omitempty"`
	Output    string `json:"output,omitempty"`
	ExitCode  int    `json:"exit_code"`
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
}

// FileHandler handles remote file operations
type FileHandler interface {
	ReadFile(ctx context.Context, kasmID, filePath string) FileReadResult
	WriteFile(ctx context.Context, kasmID, filePath, content string) FileWriteResult
}

// FileReadResult is the tool payload for file reads.
type FileReadResult struct {
	Success   bool   `json:"success"`
	FilePath  string `json:"file_path,omitempty"`
	Content   string `json:"content,omitempty"`
	Size      int    `json:"size"`
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
}

// FileWriteResult is the tool payload for file writes.
type FileWriteResult struct {
	Success   bool   `json:"success"`
	FilePath  string `json:"file_path,omitempty"`
	Size      int    `json:"size"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
}

// SessionHandler handles session lifecycle operations
type SessionHandler interface {
	CreateSession(ctx context.Context, image, groupID string) SessionResult
	DestroySession(ctx context.Context, kasmID string) SessionResult
	GetStatus(ctx context.Context, kasmID string) StatusResult
	PauseSession(ctx context.Context, kasmID string) SessionResult
	ResumeSession(ctx context.Context, kasmID string) SessionResult
	ListUserSessions(ctx context.Context) SessionListResult
	ListAllSessions(ctx context.Context) SessionListResult
	GetScreenshot(ctx context.Context, kasmID string) ScreenshotResult
}

// SessionResult is the tool payload for session lifecycle operations.
type SessionResult struct {
	Success    bool   `json:"success"`
	KasmID     string `json:"kasm_id,omitempty"`
	Status     string `json:"status,omitempty"`
	SessionURL string `json:"session_url,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// StatusResult is the tool payload for session status queries.
type StatusResult struct {
	Success           bool   `json:"success"`
	KasmID            string `json:"kasm_id,omitempty"`
	Status            string `json:"status,omitempty"`
	OperationalStatus string `json:"operational_status,omitempty"`
	SessionURL        string `json:"session_url,omitempty"`
	CreatedTime       string `json:"created_time,omitempty"`
	LastActivity      string `json:"last_activity,omitempty"`
	Error             string `json:"error,omitempty"`
}

// SessionListResult is the tool payload for session listings.
type SessionListResult struct {
	Success  bool           `json:"success"`
	Sessions []kasm.Session `json:"sessions"`
	Count    int            `json:"count"`
	Error    string         `json:"error,omitempty"`
}

// ScreenshotResult is the tool payload for screenshots.
type ScreenshotResult struct {
	Success        bool   `json:"success"`
	KasmID         string `json:"kasm_id,omitempty"`
	ScreenshotData string `json:"screenshot_data,omitempty"`
	Format         string `json:"format,omitempty"`
	Error          string `json:"error,omitempty"`
}

// AdminHandler handles workspace and user administration
type AdminHandler interface {
	ListWorkspaces(ctx context.Context) WorkspaceListResult
	ListUsers(ctx context.Context) UserListResult
	CreateUser(ctx context.Context, username, password, firstName, lastName string) UserResult
}

// WorkspaceListResult is the tool payload for workspace image listings.
type WorkspaceListResult struct {
	Success    bool         `json:"success"`
	Workspaces []kasm.Image `json:"workspaces"`
	Count      int          `json:"count"`
	Error      string       `json:"error,omitempty"`
}

// UserListResult is the tool payload for user listings.
type UserListResult struct {
	Success bool        `json:"success"`
	Users   []kasm.User `json:"users"`
	Count   int         `json:"count"`
	Error   string      `json:"error,omitempty"`
}

// UserResult is the tool payload for user creation.
type UserResult struct {
	Success  bool   `json:"success"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}
