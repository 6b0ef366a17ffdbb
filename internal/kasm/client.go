package kasm

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "kasmbridge/internal/errors"
)

// APIError is a failure reported by the Kasm API or its transport.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("kasm api error from %s (status %d): %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("kasm api error from %s: %s", e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error {
	return apperrors.ErrAPIRequestFailed
}

// uuidPattern matches image IDs given as 32 hex chars or a hyphenated UUID.
var uuidPattern = regexp.MustCompile(`(?i)^[a-f0-9]{32}$|^[a-f0-9]{8}-?[a-f0-9]{4}-?[a-f0-9]{4}-?[a-f0-9]{4}-?[a-f0-9]{12}$`)

// htmlTitlePattern extracts the title from HTML error pages the API sometimes
// serves instead of JSON.
var htmlTitlePattern = regexp.MustCompile(`(?i)<title>(.*?)</title>`)

// Client talks to the Kasm Workspaces public API. All endpoints are POST with
// a JSON body carrying api_key/api_key_secret plus the operation payload.
type Client struct {
	apiURL     string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Kasm API client.
func NewClient(apiURL, apiKey, apiSecret string, timeout time.Duration, insecureTLS bool, logger zerolog.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		apiURL:    strings.TrimRight(apiURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// post sends an authenticated request and decodes the JSON response into out.
// The payload struct is flattened into the request body alongside the
// credential fields.
func (c *Client) post(ctx context.Context, endpoint string, payload interface{}, out interface{}) error {
	body := map[string]interface{}{
		"api_key":        c.apiKey,
		"api_key_secret": c.apiSecret,
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request for %s: %w", endpoint, err)
		}
		extra := map[string]interface{}{}
		if err := json.Unmarshal(raw, &extra); err != nil {
			return fmt.Errorf("encode request for %s: %w", endpoint, err)
		}
		for k, v := range extra {
			body[k] = v
		}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request for %s: %w", endpoint, err)
	}

	url := c.apiURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("kasm api request failed")
		return &APIError{Endpoint: endpoint, Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Message: err.Error()}
	}

	// The API serves HTML error pages for some failure modes; surface the
	// page title rather than a JSON decode error.
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		message := fmt.Sprintf("received HTML response instead of JSON (status %d)", resp.StatusCode)
		if m := htmlTitlePattern.FindSubmatch(data); m != nil {
			message += ": " + string(m[1])
		}
		c.logger.Error().Str("endpoint", endpoint).Int("status", resp.StatusCode).Msg(message)
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Message: message}
	}

	var envelope struct {
		ErrorMessage string `json:"error_message"`
		Error        string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Message: fmt.Sprintf("invalid JSON response: %v", err)}
	}

	if resp.StatusCode >= 400 {
		message := envelope.Error
		if message == "" {
			message = envelope.ErrorMessage
		}
		if message == "" {
			message = fmt.Sprintf("API error with status %d", resp.StatusCode)
		}
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Message: message}
	}
	if envelope.ErrorMessage != "" {
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Message: envelope.ErrorMessage}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
		}
	}
	return nil
}

// RequestKasm creates a new session. The image argument may be a workspace
// image UUID or a docker image name; UUIDs are sent as image_id with hyphens
// stripped, with a one-shot fallback to image_name when the API rejects it.
func (c *Client) RequestKasm(ctx context.Context, image, userID, groupID string) (*RequestKasmResponse, error) {
	type requestBody struct {
		UserID    string `json:"user_id"`
		GroupID   string `json:"group_id"`
		ImageID   string `json:"image_id,omitempty"`
		ImageName string `json:"image_name,omitempty"`
	}

	var out RequestKasmResponse
	if uuidPattern.MatchString(image) {
		body := requestBody{
			UserID:  userID,
			GroupID: groupID,
			ImageID: strings.ReplaceAll(image, "-", ""),
		}
		c.logger.Debug().Str("image_id", body.ImageID).Msg("requesting session by image id")
		err := c.post(ctx, "/api/public/request_kasm", body, &out)
		if err == nil {
			return &out, nil
		}
		c.logger.Warn().Err(err).Msg("image_id request failed, retrying with image_name")
		body.ImageID = ""
		body.ImageName = image
		if err := c.post(ctx, "/api/public/request_kasm", body, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}

	body := requestBody{UserID: userID, GroupID: groupID, ImageName: image}
	c.logger.Debug().Str("image_name", image).Msg("requesting session by image name")
	if err := c.post(ctx, "/api/public/request_kasm", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DestroyKasm terminates a session.
func (c *Client) DestroyKasm(ctx context.Context, kasmID, userID string) error {
	body := struct {
		KasmID string `json:"kasm_id"`
		UserID string `json:"user_id"`
	}{kasmID, userID}
	return c.post(ctx, "/api/public/destroy_kasm", body, nil)
}

// GetKasmStatus returns the status of a session.
func (c *Client) GetKasmStatus(ctx context.Context, kasmID, userID string) (*SessionStatus, error) {
	body := struct {
		KasmID string `json:"kasm_id"`
		UserID string `json:"user_id"`
	}{kasmID, userID}

	var out SessionStatus
	if err := c.post(ctx, "/api/public/get_kasm_status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PauseKasm pauses a running session.
func (c *Client) PauseKasm(ctx context.Context, kasmID, userID string) error {
	body := struct {
		KasmID string `json:"kasm_id"`
		UserID string `json:"user_id"`
	}{kasmID, userID}
	return c.post(ctx, "/api/public/pause_kasm", body, nil)
}

// ResumeKasm resumes a paused session.
func (c *Client) ResumeKasm(ctx context.Context, kasmID, userID string) (*ResumeResponse, error) {
	body := struct {
		KasmID string `json:"kasm_id"`
		UserID string `json:"user_id"`
	}{kasmID, userID}

	var out ResumeResponse
	if err := c.post(ctx, "/api/public/resume_kasm", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUserKasms lists the active sessions of a user.
func (c *Client) GetUserKasms(ctx context.Context, userID string) (*KasmsResponse, error) {
	body := struct {
		UserID string `json:"user_id"`
	}{userID}

	var out KasmsResponse
	if err := c.post(ctx, "/api/public/get_user_kasms", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetKasms lists all active sessions (admin).
func (c *Client) GetKasms(ctx context.Context) (*KasmsResponse, error) {
	var out KasmsResponse
	if err := c.post(ctx, "/api/public/get_kasms", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecCommand runs a command inside a session. The caller is responsible for
// validating the command first; this method only forwards it.
func (c *Client) ExecCommand(ctx context.Context, req ExecRequest) (*ExecResult, error) {
	body := struct {
		KasmID     string     `json:"kasm_id"`
		UserID     string     `json:"user_id"`
		ExecConfig execConfig `json:"exec_config"`
	}{
		KasmID: req.KasmID,
		UserID: req.UserID,
		ExecConfig: execConfig{
			Cmd:         req.Command,
			Workdir:     req.WorkingDir,
			Environment: req.Environment,
			Privileged:  req.Privileged,
			User:        req.User,
		},
	}

	var out ExecResult
	if err := c.post(ctx, "/api/public/exec_command_kasm", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetKasmScreenshot captures a screenshot of a session. Width and height of
// zero use the API defaults.
func (c *Client) GetKasmScreenshot(ctx context.Context, kasmID, userID string, width, height int) (*ScreenshotResponse, error) {
	body := struct {
		KasmID string `json:"kasm_id"`
		UserID string `json:"user_id"`
		Width  int    `json:"width,omitempty"`
		Height int    `json:"height,omitempty"`
	}{kasmID, userID, width, height}

	var out ScreenshotResponse
	if err := c.post(ctx, "/api/public/get_kasm_screenshot", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetImages lists the available workspace images.
func (c *Client) GetImages(ctx context.Context) (*ImagesResponse, error) {
	var out ImagesResponse
	if err := c.post(ctx, "/api/public/get_images", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUsers lists accounts in the Kasm system.
func (c *Client) GetUsers(ctx context.Context) (*UsersResponse, error) {
	var out UsersResponse
	if err := c.post(ctx, "/api/public/get_users", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser creates a new account.
func (c *Client) CreateUser(ctx context.Context, user TargetUser) (*CreateUserResponse, error) {
	body := struct {
		TargetUser TargetUser `json:"target_user"`
	}{user}

	var out CreateUserResponse
	if err := c.post(ctx, "/api/public/create_user", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser looks up an account by user ID or username.
func (c *Client) GetUser(ctx context.Context, userID, username string) (*User, error) {
	if userID == "" && username == "" {
		return nil, fmt.Errorf("either user ID or username must be provided")
	}

	body := struct {
		TargetUser TargetUser `json:"target_user"`
	}{TargetUser{UserID: userID, Username: username}}

	var out struct {
		User User `json:"user"`
	}
	if err := c.post(ctx, "/api/public/get_user", body, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// DeleteUser removes an account. Force deletes even with active sessions.
func (c *Client) DeleteUser(ctx context.Context, userID string, force bool) error {
	body := struct {
		TargetUser TargetUser `json:"target_user"`
		Force      bool       `json:"force"`
	}{TargetUser{UserID: userID}, force}
	return c.post(ctx, "/api/public/delete_user", body, nil)
}

// LogoutUser terminates all login sessions of an account.
func (c *Client) LogoutUser(ctx context.Context, userID string) error {
	body := struct {
		TargetUser TargetUser `json:"target_user"`
	}{TargetUser{UserID: userID}}
	return c.post(ctx, "/api/public/logout_user", body, nil)
}
