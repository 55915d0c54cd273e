// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package qaclient provides the HTTP client for the hosted QA service.
package qaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/askdesk/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the QA service client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeUnauthorized
	ErrTypeInvalidResponse
	ErrTypeConnection
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable     = &ClientError{Type: ErrTypeUnreachable, Message: "QA service is unreachable"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnauthorized    = &ClientError{Type: ErrTypeUnauthorized, Message: "invalid or expired auth token"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid API response structure: missing ai_response or citations array"}
)

// IsUnreachable checks if an error indicates the service could not be reached.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return errors.Is(err, ErrUnreachable)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsUnauthorized checks if an error is an authentication failure.
func IsUnauthorized(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnauthorized
	}
	return errors.Is(err, ErrUnauthorized)
}

// IsInvalidResponse checks if an error is a malformed-payload error.
func IsInvalidResponse(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeInvalidResponse
	}
	return errors.Is(err, ErrInvalidResponse)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the QA service client.
type ClientConfig struct {
	// BaseURL of the QA service.
	BaseURL string

	// Endpoint paths, joined onto BaseURL.
	AskPath          string
	FeedbackPath     string
	LogPath          string
	LoginLogPath     string
	TokenExtractPath string

	// Timeout for requests (default: 60s; answers can take a while).
	Timeout time.Duration

	// AuthToken is attached as a bearer token when set.
	AuthToken string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:          "https://qa.askdesk.example.com",
		AskPath:          "/ask",
		FeedbackPath:     "/feedback",
		LogPath:          "/chat_log",
		LoginLogPath:     "/user_login_log",
		TokenExtractPath: "/saml/token/extract",
		Timeout:          60 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the QA service.
//
// The Client is safe for concurrent use; the feedback flow may run while an
// ask is in flight.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new QA service client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new QA service client with custom
// configuration. Zero values fall back to defaults.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.AskPath == "" {
		config.AskPath = defaults.AskPath
	}
	if config.FeedbackPath == "" {
		config.FeedbackPath = defaults.FeedbackPath
	}
	if config.LogPath == "" {
		config.LogPath = defaults.LogPath
	}
	if config.LoginLogPath == "" {
		config.LoginLogPath = defaults.LoginLogPath
	}
	if config.TokenExtractPath == "" {
		config.TokenExtractPath = defaults.TokenExtractPath
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// SetAuthToken updates the bearer token attached to requests.
func (c *Client) SetAuthToken(token string) {
	c.config.AuthToken = token
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// ASK
// =============================================================================

// Ask sends a question to the QA service and returns the validated answer.
// A payload missing the response text, or whose citations field is not a
// sequence, is reported as ErrInvalidResponse; the citation sequence itself
// may legitimately be empty.
func (c *Client) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	var raw rawAskResponse
	if err := c.postJSON(ctx, c.config.AskPath, req, &raw); err != nil {
		return nil, err
	}

	if raw.AIResponse == "" || len(raw.Citations) == 0 {
		return nil, ErrInvalidResponse
	}
	// citations must be a JSON array; null or any other shape is malformed.
	citations := []model.Citation{}
	if err := json.Unmarshal(raw.Citations, &citations); err != nil || bytes.TrimSpace(raw.Citations)[0] != '[' {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid API response structure: citations is not an array", Cause: err}
	}

	return &AskResponse{
		AIResponse: raw.AIResponse,
		Citations:  citations,
		Query:      raw.Query,
		FollowUps:  raw.FollowUps,
	}, nil
}

// =============================================================================
// LOGGING AND FEEDBACK
// =============================================================================

// LogChat posts a chat log record. Callers treat it as fire-and-forget: a
// failure here never alters an already-displayed answer.
func (c *Client) LogChat(ctx context.Context, req LogRequest) error {
	return c.postJSON(ctx, c.config.LogPath, req, nil)
}

// SubmitFeedback posts a feedback record for an answer. The response body is
// opaque; only success or failure matters to the caller.
func (c *Client) SubmitFeedback(ctx context.Context, req FeedbackRequest) error {
	return c.postJSON(ctx, c.config.FeedbackPath, req, nil)
}

// =============================================================================
// LOGIN FLOW
// =============================================================================

// ExtractToken resolves a SAML token into the user's name and group.
func (c *Client) ExtractToken(ctx context.Context, token string) (*TokenUserData, error) {
	var resp tokenExtractResponse
	if err := c.postJSON(ctx, c.config.TokenExtractPath, map[string]string{"token": token}, &resp); err != nil {
		return nil, err
	}
	if resp.UserData != nil {
		return resp.UserData, nil
	}
	if resp.Name == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "token extract response carries no user data"}
	}
	return &TokenUserData{Name: resp.Name, Group: resp.Group}, nil
}

// LogLogin records a completed login and returns the login session ID the
// service minted for it.
func (c *Client) LogLogin(ctx context.Context, userName string) (*LoginLogResponse, error) {
	var resp LoginLogResponse
	req := LoginLogRequest{UserName: userName}
	if err := c.postJSON(ctx, c.config.LoginLogPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// postJSON sends a JSON POST and decodes the response into out (skipped when
// out is nil). Every request carries a correlation ID so server logs can be
// matched to a client session.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.config.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeUnreachable, Message: "QA service is unreachable", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		var svcErr serviceError
		if err := json.NewDecoder(resp.Body).Decode(&svcErr); err == nil && svcErr.Error != "" {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: svcErr.Error}
		}
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "request failed: " + resp.Status}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}
