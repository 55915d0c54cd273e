// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

// =============================================================================
// CITATION TESTS
// =============================================================================

func TestCitation_DisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		citation Citation
		want     string
	}{
		{
			"title wins",
			Citation{Title: "VPN Guide", ParentID: "https://docs/vpn.pdf"},
			"VPN Guide",
		},
		{
			"falls back to filename",
			Citation{ParentID: "https://docs.example.com/guides/Remote%20Access.pdf"},
			"Remote Access.pdf",
		},
		{
			"bare filename",
			Citation{ParentID: "handbook.pdf"},
			"handbook.pdf",
		},
		{
			"empty everything",
			Citation{},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.citation.DisplayTitle(); got != tt.want {
				t.Errorf("DisplayTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinCitationTitles(t *testing.T) {
	citations := []Citation{{Title: "A"}, {Title: "B"}}
	if got := JoinCitationTitles(citations); got != "A, B" {
		t.Errorf("JoinCitationTitles = %q, want \"A, B\"", got)
	}
	if got := JoinCitationTitles(nil); got != "No citations" {
		t.Errorf("JoinCitationTitles(nil) = %q, want \"No citations\"", got)
	}
}

func TestFallbackCitation(t *testing.T) {
	c := FallbackCitation()
	if c.Title == "" || c.Chunk == "" || c.ParentID == "" {
		t.Errorf("fallback citation incomplete: %+v", c)
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewPlaceholderMessage(t *testing.T) {
	msg := NewPlaceholderMessage(42, time.Now())

	if msg.Role != RoleAgent {
		t.Errorf("Role = %q, want agent", msg.Role)
	}
	if !msg.IsPending() {
		t.Error("placeholder must be pending")
	}
	if msg.Citations == nil {
		t.Error("placeholder must carry a non-nil citation slice")
	}
}

func TestMessage_IsPending(t *testing.T) {
	user := NewUserMessage(1, PendingSentinel, time.Now())
	if user.IsPending() {
		t.Error("user messages are never pending, whatever their content")
	}

	answered := Message{Role: RoleAgent, Content: "done"}
	if answered.IsPending() {
		t.Error("answered message must not be pending")
	}
}

func TestMessage_ResponseText(t *testing.T) {
	msg := Message{Content: "display", AIResponse: "raw"}
	if got := msg.ResponseText(); got != "raw" {
		t.Errorf("ResponseText = %q, want raw backend text", got)
	}

	msg.AIResponse = ""
	if got := msg.ResponseText(); got != "display" {
		t.Errorf("ResponseText = %q, want display fallback", got)
	}
}

// =============================================================================
// STATE TESTS
// =============================================================================

func TestState_AddMessageEnforcesAgentInvariant(t *testing.T) {
	s := NewState()
	s.AddMessage(Message{ID: 1, Role: RoleAgent, Content: "answer"})

	msg := s.MessageByID(1)
	if msg == nil {
		t.Fatal("message not stored")
	}
	if msg.AIResponse != "answer" {
		t.Errorf("AIResponse = %q, want content copied in", msg.AIResponse)
	}
	if msg.Citations == nil {
		t.Error("Citations must be non-nil on agent messages")
	}
}

func TestState_UpdateMessage(t *testing.T) {
	s := NewState()
	s.AddMessage(NewPlaceholderMessage(1, time.Now()))

	ok := s.UpdateMessage(1, "formatted", "raw", nil, "the question")
	if !ok {
		t.Fatal("update reported failure")
	}

	msg := s.MessageByID(1)
	if msg.Content != "formatted" || msg.AIResponse != "raw" || msg.Query != "the question" {
		t.Errorf("message after update = %+v", msg)
	}
	if msg.Citations == nil {
		t.Error("nil citations must be normalized to empty slice")
	}

	if s.UpdateMessage(99, "x", "x", nil, "") {
		t.Error("updating an unknown ID must report failure")
	}
}

func TestState_ClearChatKeepsNothing(t *testing.T) {
	s := NewState()
	s.AddMessage(NewUserMessage(1, "question", time.Now()))
	s.SetFollowUps([]string{"next question?"})
	s.SetFeedbackStatus(1, FeedbackStatus{Submitted: true, Type: FeedbackThumbsUp})
	s.SetInput("draft")
	s.Err = "boom"
	s.IsResponding = true
	s.PendingMessageID = 1

	s.ClearChat()

	if len(s.Messages) != 0 || len(s.FollowUps) != 0 || len(s.FeedbackStatus) != 0 {
		t.Errorf("state not emptied: %+v", s)
	}
	if s.Input != "" || s.Err != "" || s.IsResponding || s.PendingMessageID != 0 {
		t.Errorf("flags not reset: %+v", s)
	}
}

func TestState_ClearIfInputEmpty(t *testing.T) {
	s := NewState()
	s.AddMessage(NewUserMessage(1, "question", time.Now()))
	s.SetInput("  half-typed question")

	s.ClearIfInputEmpty()
	if len(s.Messages) != 1 {
		t.Error("clear must be refused while draft input is pending")
	}

	s.ClearInput()
	s.ClearIfInputEmpty()
	if len(s.Messages) != 0 {
		t.Error("clear must proceed once input is empty")
	}
}

func TestState_PreviewDocURL(t *testing.T) {
	s := NewState()
	s.SetPreviewDocURL("https://docs.example.com/vpn.pdf")
	if s.PreviewDocURL == "" {
		t.Error("preview URL not recorded")
	}
	s.ClearPreviewDocURL()
	if s.PreviewDocURL != "" {
		t.Error("preview URL not cleared")
	}
}

func TestState_CloneIsIndependent(t *testing.T) {
	s := NewState()
	s.AddMessage(Message{ID: 1, Role: RoleAgent, Content: "answer",
		Citations: []Citation{{ID: 1, Title: "Doc"}}})
	s.SetFollowUps([]string{"one"})

	clone := s.Clone()
	clone.Messages[0].Content = "mutated"
	clone.Messages[0].Citations[0].Title = "mutated"
	clone.FollowUps[0] = "mutated"

	if s.Messages[0].Content != "answer" || s.Messages[0].Citations[0].Title != "Doc" {
		t.Error("clone shares message storage with the original")
	}
	if s.FollowUps[0] != "one" {
		t.Error("clone shares follow-up storage with the original")
	}
}

func TestState_ClonePreservesEmptyCitations(t *testing.T) {
	s := NewState()
	s.AddMessage(Message{ID: 1, Role: RoleAgent, Content: "no sources found"})
	if s.Messages[0].Citations == nil {
		t.Fatal("AddMessage did not normalize nil citations")
	}

	clone := s.Clone()
	if clone.Messages[0].Citations == nil {
		t.Error("Clone turned a non-nil empty citations slice into nil")
	}
	if len(clone.Messages[0].Citations) != 0 {
		t.Errorf("cloned citations = %v, want empty", clone.Messages[0].Citations)
	}
}

func TestState_LastUserQueryBefore(t *testing.T) {
	s := NewState()
	s.AddMessage(NewUserMessage(1, "first question", time.Now()))
	s.AddMessage(Message{ID: 2, Role: RoleAgent, Content: "answer"})
	s.AddMessage(NewUserMessage(3, "second question", time.Now()))
	s.AddMessage(Message{ID: 4, Role: RoleAgent, Content: "answer"})

	if got := s.LastUserQueryBefore(4); got != "second question" {
		t.Errorf("LastUserQueryBefore(4) = %q", got)
	}
	if got := s.LastUserQueryBefore(2); got != "first question" {
		t.Errorf("LastUserQueryBefore(2) = %q", got)
	}
	if got := s.LastUserQueryBefore(1); got != "" {
		t.Errorf("LastUserQueryBefore(1) = %q, want empty", got)
	}
}
