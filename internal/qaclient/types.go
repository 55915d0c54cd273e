// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package qaclient provides the HTTP client for the hosted QA service.
package qaclient

import (
	"encoding/json"

	"github.com/jeranaias/askdesk/internal/model"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// AskRequest is the request body for the ask endpoint.
type AskRequest struct {
	Query     string `json:"query"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// LogRequest is the fire-and-forget chat log record posted after a
// successful ask. Citations is the comma-joined citation titles.
type LogRequest struct {
	ChatSessionID  string `json:"chat_session_id"`
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	Query          string `json:"query"`
	AIResponse     string `json:"ai_response"`
	Citations      string `json:"citations"`
	LoginSessionID string `json:"login_session_id,omitempty"`
}

// FeedbackRequest is the request body for the feedback endpoint.
type FeedbackRequest struct {
	ChatSessionID  string             `json:"chat_session_id"`
	UserName       string             `json:"user_name"`
	Query          string             `json:"query"`
	AIResponse     string             `json:"ai_response"`
	Citations      string             `json:"citations"`
	FeedbackType   model.FeedbackType `json:"feedback_type"`
	Feedback       string             `json:"feedback"`
	LoginSessionID string             `json:"login_session_id,omitempty"`
	UserID         string             `json:"user_id"`
}

// LoginLogRequest records a completed login and yields the login session ID.
type LoginLogRequest struct {
	UserName string `json:"user_name"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// rawAskResponse is the wire shape of an ask response. Citations is kept raw
// so a payload where it is not a sequence can be classified as malformed
// rather than failing silently during decode.
type rawAskResponse struct {
	AIResponse string          `json:"ai_response"`
	Citations  json.RawMessage `json:"citations"`
	Query      string          `json:"query,omitempty"`
	FollowUps  string          `json:"follow_ups,omitempty"`
}

// AskResponse is a validated answer from the ask endpoint.
type AskResponse struct {
	AIResponse string           `json:"ai_response"`
	Citations  []model.Citation `json:"citations"`
	Query      string           `json:"query,omitempty"`
	FollowUps  string           `json:"follow_ups,omitempty"` // Newline-separated suggestions
}

// LoginLogResponse carries the login session ID minted by the service.
type LoginLogResponse struct {
	SessionID string `json:"session_id"`
}

// TokenUserData is the user identity extracted from a SAML token.
type TokenUserData struct {
	Name  string `json:"name"`
	Group string `json:"group"`
}

// tokenExtractResponse tolerates both shapes the token-extract endpoint has
// been observed to return: fields at the top level or nested under
// "user_data".
type tokenExtractResponse struct {
	Name     string         `json:"name"`
	Group    string         `json:"group"`
	UserData *TokenUserData `json:"user_data"`
}

// serviceError is the error body the QA service returns on failures.
type serviceError struct {
	Error string `json:"error"`
}
