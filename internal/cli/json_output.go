// json_output.go - JSON output support for scripted use of askdesk.
//
// Provides a standardized JSON output format for all CLI commands so the
// client can be driven from scripts and pipelines.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/askdesk/internal/model"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Error:     nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
// Human-readable messages should go to stderr when JSON mode is enabled.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// AskData represents the data returned by the ask command.
type AskData struct {
	Query      string           `json:"query"`
	Answer     string           `json:"answer"`
	Citations  []model.Citation `json:"citations"`
	FollowUps  []string         `json:"follow_ups,omitempty"`
	SessionID  string           `json:"session_id"`
	DurationMs int64            `json:"duration_ms"`
}

// StatusData represents the data returned by the status command.
type StatusData struct {
	Version string            `json:"version"`
	Service StatusServiceInfo `json:"service"`
	Auth    StatusAuthInfo    `json:"auth"`
	Session StatusSessionInfo `json:"session"`
	Storage StatusStorageInfo `json:"storage"`
}

// StatusServiceInfo describes the configured QA service endpoint.
type StatusServiceInfo struct {
	BaseURL     string `json:"base_url"`
	TimeoutSecs int    `json:"timeout_secs"`
	ConfigPath  string `json:"config_path"`
}

// StatusAuthInfo describes the stored authentication state.
type StatusAuthInfo struct {
	LoggedIn   bool   `json:"logged_in"`
	UserName   string `json:"user_name,omitempty"`
	Group      string `json:"group,omitempty"`
	TokenValid bool   `json:"token_valid"`
}

// StatusSessionInfo carries the identity values the chat flows use.
type StatusSessionInfo struct {
	SessionID      string `json:"session_id"`
	UserID         string `json:"user_id"`
	LoginSessionID string `json:"login_session_id,omitempty"`
}

// StatusStorageInfo describes the local transcript store.
type StatusStorageInfo struct {
	DataDir     string `json:"data_dir"`
	Transcripts int    `json:"transcripts"`
}

// LoginData represents the data returned by the login command.
type LoginData struct {
	UserName       string `json:"user_name"`
	Group          string `json:"group,omitempty"`
	LoginSessionID string `json:"login_session_id,omitempty"`
}

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}
