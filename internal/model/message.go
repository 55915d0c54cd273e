// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for askdesk chat sessions.
package model

import (
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAgent:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// CITATION TYPE
// =============================================================================

// Citation is a reference to a source document excerpt. The numeric ID is the
// stable key used for inline "[n]" references in the answer text.
type Citation struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Chunk    string `json:"chunk"`
	ParentID string `json:"parent_id"` // Source document URL
}

// DisplayTitle returns the citation title, falling back to the document
// filename derived from the source URL when the title is empty.
func (c Citation) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	parts := strings.Split(c.ParentID, "/")
	name := parts[len(parts)-1]
	name = strings.ReplaceAll(name, "%20", " ")
	return strings.TrimSpace(name)
}

// FallbackCitation returns the synthetic citation substituted when the
// backend answers with an empty citation set. It guarantees the caller
// always has at least one citation to show.
func FallbackCitation() Citation {
	return Citation{
		ID:       0,
		Title:    "General Support Documentation",
		Chunk:    "For additional help, contact the support team or browse the general documentation.",
		ParentID: "https://support.askdesk.example.com/docs/getting-help.pdf",
	}
}

// JoinCitationTitles returns the comma-joined citation titles, or the literal
// "No citations" when the set is empty. This is the representation the
// feedback and log endpoints expect.
func JoinCitationTitles(citations []Citation) string {
	if len(citations) == 0 {
		return "No citations"
	}
	titles := make([]string, 0, len(citations))
	for _, c := range citations {
		titles = append(titles, c.Title)
	}
	return strings.Join(titles, ", ")
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// PendingSentinel is the placeholder content shown while an answer is
// awaited.
const PendingSentinel = "..."

// Message represents a single message in a chat session.
//
// IDs are creation-timestamp-derived (unix milliseconds), unique and strictly
// monotonic within a session; the controller owns ID allocation.
type Message struct {
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Agent-message fields. AIResponse is the raw backend text and the
	// source of truth for formatting; Content is the display text.
	AIResponse string     `json:"ai_response,omitempty"`
	Citations  []Citation `json:"citations,omitempty"`
	Query      string     `json:"query,omitempty"`
}

// NewUserMessage creates a user message. The caller assigns the ID.
func NewUserMessage(id int64, content string, ts time.Time) Message {
	return Message{
		ID:        id,
		Role:      RoleUser,
		Content:   content,
		Timestamp: ts,
	}
}

// NewPlaceholderMessage creates the pending agent message inserted
// immediately on question submission.
func NewPlaceholderMessage(id int64, ts time.Time) Message {
	return Message{
		ID:         id,
		Role:       RoleAgent,
		Content:    PendingSentinel,
		AIResponse: PendingSentinel,
		Citations:  []Citation{},
		Query:      "",
		Timestamp:  ts,
	}
}

// IsPending reports whether the message still shows the placeholder
// sentinel.
func (m *Message) IsPending() bool {
	return m.Role == RoleAgent && m.Content == PendingSentinel
}

// ResponseText returns the raw backend text for agent messages, falling back
// to the display content when no backend text was recorded.
func (m *Message) ResponseText() string {
	if m.AIResponse != "" {
		return m.AIResponse
	}
	return m.Content
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// FEEDBACK TYPES
// =============================================================================

// FeedbackType identifies the kind of feedback given on an answer.
type FeedbackType string

const (
	FeedbackThumbsUp   FeedbackType = "thumbs_up"
	FeedbackThumbsDown FeedbackType = "thumbs_down"
)

// FeedbackStatus records whether feedback was submitted for a message and
// which kind it was.
type FeedbackStatus struct {
	Submitted bool         `json:"submitted"`
	Type      FeedbackType `json:"type"`
}
