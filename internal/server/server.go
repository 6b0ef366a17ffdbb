package server

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"kasmbridge/internal/handlers"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

// Server registers the bridge tools on an MCP stdio server. The tool
// closures decode arguments and delegate; all validation and sequencing
// lives in the handlers.
type Server struct {
	mcp      *server.MCPServer
	exec     handlers.ExecHandler
	files    handlers.FileHandler
	sessions handlers.SessionHandler
	admin    handlers.AdminHandler
	logger   zerolog.Logger
}

// New wires the handlers into a named MCP server.
func New(exec handlers.ExecHandler, files handlers.FileHandler, sessions handlers.SessionHandler, admin handlers.AdminHandler, logger zerolog.Logger) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			"kasmbridge",
			Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		exec:     exec,
		files:    files,
		sessions: sessions,
		admin:    admin,
		logger:   logger,
	}
	s.registerTools()
	return s
}

// ServeStdio runs the server over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info().Str("version", Version).Msg("kasmbridge serving on stdio")
	return server.ServeStdio(s.mcp)
}

// result marshals a handler payload into a text tool result.
func result(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("execute_kasm_command",
		mcp.WithDescription("Execute a shell command inside a Kasm session. Commands are validated against security boundaries to prevent unauthorized access outside allowed directories."),
		mcp.WithString("kasm_id", mcp.Required(), mcp.Description("ID of the Kasm session")),
		mcp.WithString("command", mcp.Required(), mcp.Description("Command to execute in the session")),
		mcp.WithString("working_dir", mcp.Description("Working directory for command execution")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kasmID, err := req.RequireString("kasm_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		command, err := req.RequireString("command")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		workingDir := req.GetString("working_dir", "")
		return result(s.exec.ExecuteCommand(ctx, kasmID, command, workingDir))
	})

	s.mcp.AddTool(mcp.NewTool("read_kasm_file",
		mcp.WithDescription("Read a file from a Kasm session. The path must be inside the allowed roots."),
		mcp.WithString("kasm_id", mcp.Required(), mcp.Description("ID of the Kasm session")),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to the file to read")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kasmID, err := req.RequireString("kasm_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filePath, err := req.RequireString("file_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return result(s.files.ReadFile(ctx, kasmID, filePath))
	})

	s.mcp.AddTool(mcp.NewTool("write_kasm_file",
		mcp.WithDescription("Write content to a file in a Kasm session. The path must be inside the allowed roots and outside protected system trees."),
		mcp.WithString("kasm_id", mcp.Required(), mcp.Description("ID of the Kasm session")),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path where the file should be written")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Content to write to the file")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kasmID, err := req.RequireString("kasm_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filePath, err := req.RequireString("file_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return result(s.files.WriteFile(ctx, kasmID, filePath, content))
	})

	s.mcp.AddTool(mcp.NewTool("create_kasm_session",
		mcp.WithDescription("Create a new Kasm session with the specified workspace image."),
		mcp.WithString("image", mcp.Required(), mcp.Description("Workspace image ID or docker image name to launch")),
		mcp.WithString("group_id", mcp.Required(), mcp.Description("Group ID for the session")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		image, err := req.RequireString("image")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		groupID, err := req.RequireString("group_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return result(s.sessions.CreateSession(ctx, image, groupID))
	})

	s.mcp.AddTool(mcp.NewTool("destroy_kasm_session",
		mcp.WithDescription("Destroy an existing Kasm session."),
		mcp.WithString("kasm_id", mcp.Required(), mcp.Description("ID of the Kasm session to destroy")),
	), s.kasmIDTool(func(ctx context.Context, kasmID string) interface{} {
		return s.sessions.DestroySession(ctx, kasmID)
	}))

	s.mcp.AddTool(mcp.NewTool("get_session_status",
		mcp.WithDescription("Get the status of a Kasm session."),
		mcp.WithString("kasm_id", mcp.Required(), mcp.Description("ID of the Kasm session")),
	), s.kasmIDTool(func(ctx context.Context, kasmID string) interface{} {
		return s.sessions.GetStatus(ctx, kasmID)
	}))

	s.mcp.AddTool(mcp.NewTool("pause_kasm_session",
		mcp.WithDescription("Pause a running Kasm session to free up resources."),
		mcp.WithString("kasm_id", mcp.Required(), mcp.Description("ID of the Kasm session to pause")),
	), s.kasmIDTool(func(ctx context.Context, kasmID string) interface{} {
		return s.sessions.PauseSession(ctx, kasmID)
	}))

	s.mcp.AddTool(mcp.NewTool("resume_kasm_session",
		mcp.WithDescription("Resume a paused Kasm session."),
		mcp.WithString("kasm_id", mcp.Required(), mcp.Description("ID of the Kasm session to resume")),
	), s.kasmIDTool(func(ctx context.Context, kasmID string) interface{} {
		return s.sessions.ResumeSession(ctx, kasmID)
	}))

	s.mcp.AddTool(mcp.NewTool("get_session_screenshot",
		mcp.WithDescription("Get a screenshot of a Kasm session as base64-encoded image data."),
		mcp.WithString("kasm_id", mcp.Required(), mcp.Description("ID of the Kasm session")),
	), s.kasmIDTool(func(ctx context.Context, kasmID string) interface{} {
		return s.sessions.GetScreenshot(ctx, kasmID)
	}))

	s.mcp.AddTool(mcp.NewTool("list_user_sessions",
		mcp.WithDescription("List all active sessions for the configured user."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(s.sessions.ListUserSessions(ctx))
	})

	s.mcp.AddTool(mcp.NewTool("list_all_sessions",
		mcp.WithDescription("List all active sessions in the system (admin)."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(s.sessions.ListAllSessions(ctx))
	})

	s.mcp.AddTool(mcp.NewTool("get_available_workspaces",
		mcp.WithDescription("Get the list of available workspace images."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(s.admin.ListWorkspaces(ctx))
	})

	s.mcp.AddTool(mcp.NewTool("get_kasm_users",
		mcp.WithDescription("Get the list of users in the Kasm system."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(s.admin.ListUsers(ctx))
	})

	s.mcp.AddTool(mcp.NewTool("create_kasm_user",
		mcp.WithDescription("Create a new user account in the Kasm system."),
		mcp.WithString("username", mcp.Required(), mcp.Description("Username for the new user")),
		mcp.WithString("password", mcp.Required(), mcp.Description("Password for the new user")),
		mcp.WithString("first_name", mcp.Description("User's first name")),
		mcp.WithString("last_name", mcp.Description("User's last name")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		username, err := req.RequireString("username")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		password, err := req.RequireString("password")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		firstName := req.GetString("first_name", "")
		lastName := req.GetString("last_name", "")
		return result(s.admin.CreateUser(ctx, username, password, firstName, lastName))
	})
}

// kasmIDTool adapts a handler taking only a session ID into a tool handler.
func (s *Server) kasmIDTool(fn func(ctx context.Context, kasmID string) interface{}) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kasmID, err := req.RequireString("kasm_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return result(fn(ctx, kasmID))
	}
}
