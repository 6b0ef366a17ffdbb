package kasm

// Typed request and response bodies for the Kasm public API. One schema per
// operation; the client injects the api_key/api_key_secret pair into every
// request body.

// ExecRequest describes a command execution inside a session.
type ExecRequest struct {
	KasmID      string
	UserID      string
	Command     string
	WorkingDir  string
	Environment map[string]string
	Privileged  bool
	User        string
}

// execConfig is the wire envelope the API expects for exec_command_kasm.
type execConfig struct {
	Cmd         string            `json:"cmd"`
	Workdir     string            `json:"workdir,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Privileged  bool              `json:"privileged,omitempty"`
	User        string            `json:"user,omitempty"`
}

// ExecResult is the outcome of a remote command execution.
type ExecResult struct {
	Output   string `json:"output"`
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error"`
}

// Session describes a workspace session as returned by the API.
type Session struct {
	KasmID            string `json:"kasm_id"`
	UserID            string `json:"user_id"`
	Username          string `json:"username"`
	ImageName         string `json:"image_name"`
	FriendlyName      string `json:"image_friendly_name"`
	Status            string `json:"status"`
	OperationalStatus string `json:"operational_status"`
	KasmURL           string `json:"kasm_url"`
	CreatedTime       string `json:"created_time"`
	LastActivity      string `json:"last_activity"`
	IsPaused          bool   `json:"is_paused"`
	ClientIP          string `json:"client_ip"`
}

// RequestKasmResponse is returned by request_kasm.
type RequestKasmResponse struct {
	KasmID  string `json:"kasm_id"`
	Status  string `json:"status"`
	KasmURL string `json:"kasm_url"`
}

// SessionStatus is returned by get_kasm_status.
type SessionStatus struct {
	Status            string `json:"status"`
	OperationalStatus string `json:"operational_status"`
	KasmURL           string `json:"kasm_url"`
	CreatedTime       string `json:"created_time"`
	LastActivity      string `json:"last_activity"`
}

// KasmsResponse lists sessions (get_user_kasms and get_kasms).
type KasmsResponse struct {
	Kasms []Session `json:"kasms"`
}

// ResumeResponse is returned by resume_kasm.
type ResumeResponse struct {
	KasmURL string `json:"kasm_url"`
}

// ScreenshotResponse is returned by get_kasm_screenshot. The screenshot is
// base64-encoded JPEG data.
type ScreenshotResponse struct {
	Screenshot string `json:"screenshot"`
}

// Image describes an available workspace image.
type Image struct {
	ImageID        string   `json:"image_id"`
	Name           string   `json:"name"`
	ImageName      string   `json:"image_name"`
	FriendlyName   string   `json:"friendly_name"`
	Description    string   `json:"description"`
	Enabled        bool     `json:"enabled"`
	Cores          float64  `json:"cores"`
	Memory         int64    `json:"memory"`
	GPUCount       int      `json:"gpu_count"`
	Categories     []string `json:"categories"`
	DockerRegistry string   `json:"docker_registry"`
	DockerImage    string   `json:"docker_image"`
}

// ImagesResponse is returned by get_images.
type ImagesResponse struct {
	Images []Image `json:"images"`
}

// User describes an account in the Kasm system.
type User struct {
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	Enabled     bool     `json:"enabled"`
	Locked      bool     `json:"locked"`
	LastSession string   `json:"last_session"`
	Groups      []string `json:"groups"`
}

// UsersResponse is returned by get_users.
type UsersResponse struct {
	Users []User `json:"users"`
}

// TargetUser is the payload for user creation and lookup.
type TargetUser struct {
	UserID       string `json:"user_id,omitempty"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Organization string `json:"organization,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Locked       bool   `json:"locked,omitempty"`
	Disabled     bool   `json:"disabled,omitempty"`
}

// CreateUserResponse is returned by create_user.
type CreateUserResponse struct {
	UserID string `json:"user_id"`
}
