// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for askdesk chat sessions.
package model

import "strings"

// =============================================================================
// CHAT STATE
// =============================================================================

// State is the aggregate chat session state. It is mutated only through the
// methods below, one transition at a time; the controller serializes access.
//
// PendingMessageID is zero when no placeholder is awaiting a response
// (message IDs are unix-millisecond derived and always positive).
type State struct {
	Messages         []Message
	Input            string
	IsResponding     bool
	PendingMessageID int64
	FollowUps        []string
	FeedbackStatus   map[int64]FeedbackStatus
	Err              string // session-level error, "" when none
	PreviewDocURL    string
}

// NewState creates an empty chat state.
func NewState() State {
	return State{
		Messages:       make([]Message, 0),
		FeedbackStatus: make(map[int64]FeedbackStatus),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message, enforcing the agent-message invariant:
// every agent message carries a non-nil AIResponse, Citations and Query
// from the moment it exists.
func (s *State) AddMessage(msg Message) {
	if msg.Role == RoleAgent {
		if msg.AIResponse == "" {
			msg.AIResponse = msg.Content
		}
		if msg.Citations == nil {
			msg.Citations = []Citation{}
		}
	}
	s.Messages = append(s.Messages, msg)
}

// MessageByID returns a pointer to the message with the given ID, or nil.
func (s *State) MessageByID(id int64) *Message {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return &s.Messages[i]
		}
	}
	return nil
}

// UpdateMessage updates an existing message's answer fields in place,
// preserving its identity. Returns false when the ID is not present.
func (s *State) UpdateMessage(id int64, content, aiResponse string, citations []Citation, query string) bool {
	msg := s.MessageByID(id)
	if msg == nil {
		return false
	}
	msg.Content = content
	msg.AIResponse = aiResponse
	if citations == nil {
		citations = []Citation{}
	}
	msg.Citations = citations
	msg.Query = query
	return true
}

// LastMessage returns the most recent message, or nil if the list is empty.
func (s *State) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// LastUserQueryBefore returns the content of the most recent user message
// with an ID smaller than the given one, or "" when there is none.
func (s *State) LastUserQueryBefore(id int64) string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser && s.Messages[i].ID < id {
			return s.Messages[i].Content
		}
	}
	return ""
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// SetInput replaces the draft input text.
func (s *State) SetInput(text string) {
	s.Input = text
}

// ClearInput blanks the draft input text.
func (s *State) ClearInput() {
	s.Input = ""
}

// SetFollowUps replaces the follow-up suggestion list.
func (s *State) SetFollowUps(followUps []string) {
	s.FollowUps = followUps
}

// SetFeedbackStatus records the feedback status for a message.
func (s *State) SetFeedbackStatus(id int64, status FeedbackStatus) {
	if s.FeedbackStatus == nil {
		s.FeedbackStatus = make(map[int64]FeedbackStatus)
	}
	s.FeedbackStatus[id] = status
}

// SetPreviewDocURL records the source document currently being previewed.
func (s *State) SetPreviewDocURL(url string) {
	s.PreviewDocURL = url
}

// ClearPreviewDocURL closes the document preview.
func (s *State) ClearPreviewDocURL() {
	s.PreviewDocURL = ""
}

// ClearChat empties messages, follow-ups and feedback bookkeeping and blanks
// input and error. Session and user identity are rotated separately and are
// deliberately untouched here.
func (s *State) ClearChat() {
	s.Messages = make([]Message, 0)
	s.FollowUps = nil
	s.FeedbackStatus = make(map[int64]FeedbackStatus)
	s.Input = ""
	s.Err = ""
	s.PendingMessageID = 0
	s.IsResponding = false
}

// ClearIfInputEmpty clears the conversation only when no draft input is
// pending, so an accidental reset does not discard a half-typed question.
func (s *State) ClearIfInputEmpty() {
	if strings.TrimSpace(s.Input) != "" {
		return
	}
	s.Messages = make([]Message, 0)
	s.FollowUps = nil
	s.FeedbackStatus = make(map[int64]FeedbackStatus)
	s.IsResponding = false
}

// Clone returns a deep copy of the state, safe to hand to presentation code
// while the controller keeps mutating the original.
func (s *State) Clone() State {
	clone := *s
	clone.Messages = make([]Message, len(s.Messages))
	for i, msg := range s.Messages {
		msgCopy := msg
		if msg.Citations != nil {
			// make+copy keeps a non-nil empty slice non-nil; append would
			// collapse it to nil and break the agent-message invariant.
			msgCopy.Citations = make([]Citation, len(msg.Citations))
			copy(msgCopy.Citations, msg.Citations)
		}
		clone.Messages[i] = msgCopy
	}
	if s.FollowUps != nil {
		clone.FollowUps = append([]string(nil), s.FollowUps...)
	}
	clone.FeedbackStatus = make(map[int64]FeedbackStatus, len(s.FeedbackStatus))
	for id, status := range s.FeedbackStatus {
		clone.FeedbackStatus[id] = status
	}
	return clone
}

// =============================================================================
// SAMPLE PROMPTS
// =============================================================================

// SamplePrompts are the canned starter questions offered on an empty chat.
var SamplePrompts = []string{
	"How do I request time off?",
	"What is the remote work policy?",
	"How are expense reports reimbursed?",
	"Who do I contact about benefits enrollment?",
}
