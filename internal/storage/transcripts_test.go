// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/askdesk/internal/model"
)

func newTestStore(t *testing.T) *TranscriptStore {
	t.Helper()
	store, err := NewTranscriptStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewTranscriptStoreWithDir failed: %v", err)
	}
	return store
}

func sampleTranscript() *Transcript {
	return &Transcript{
		SessionID: "sess-1",
		UserID:    "user-1",
		Messages: []StoredMessage{
			{
				ID:        1,
				Role:      "user",
				Content:   "How do I request parental leave?",
				Timestamp: time.Now(),
			},
			{
				ID:         2,
				Role:       "agent",
				Content:    "Submit the request through the portal.",
				AIResponse: "Submit the request through the portal.",
				Query:      "How do I request parental leave?",
				Citations:  []model.Citation{{ID: 1, Title: "Leave Policy"}},
				Timestamp:  time.Now(),
			},
		},
	}
}

// =============================================================================
// SAVE AND LOAD
// =============================================================================

func TestSaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Save(sampleTranscript())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == "" {
		t.Fatal("Save returned empty ID")
	}

	loaded, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(loaded.Messages))
	}
	if loaded.SessionID != "sess-1" || loaded.UserID != "user-1" {
		t.Errorf("identity lost: %+v", loaded)
	}
	if loaded.Messages[1].Query != "How do I request parental leave?" {
		t.Errorf("agent query lost: %q", loaded.Messages[1].Query)
	}
	if len(loaded.Messages[1].Citations) != 1 || loaded.Messages[1].Citations[0].Title != "Leave Policy" {
		t.Errorf("citations lost: %+v", loaded.Messages[1].Citations)
	}
}

func TestSave_GeneratesSummary(t *testing.T) {
	store := newTestStore(t)

	tr := sampleTranscript()
	id, err := store.Save(tr)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !strings.HasPrefix(loaded.Summary, "How do I request") {
		t.Errorf("summary = %q", loaded.Summary)
	}
}

func TestLoad_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("no-such-id")
	if !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("expected ErrTranscriptNotFound, got %v", err)
	}
}

func TestLoadByIndex(t *testing.T) {
	store := newTestStore(t)

	first := sampleTranscript()
	if _, err := store.Save(first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := sampleTranscript()
	second.Messages[0].Content = "What is the travel policy?"
	// Ensure a later UpdatedAt for deterministic ordering.
	time.Sleep(10 * time.Millisecond)
	if _, err := store.Save(second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.LoadByIndex(0)
	if err != nil {
		t.Fatalf("LoadByIndex failed: %v", err)
	}
	if loaded.Messages[0].Content != "What is the travel policy?" {
		t.Errorf("index 0 should be most recent, got %q", loaded.Messages[0].Content)
	}

	if _, err := store.LoadByIndex(5); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("out-of-range index should return not found, got %v", err)
	}
}

// =============================================================================
// LIST AND SEARCH
// =============================================================================

func TestList(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save(sampleTranscript()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("len(metas) = %d, want 1", len(metas))
	}
	if metas[0].MessageCount != 2 {
		t.Errorf("MessageCount = %d", metas[0].MessageCount)
	}
	if !strings.Contains(metas[0].Preview, "parental leave") {
		t.Errorf("preview = %q", metas[0].Preview)
	}
}

func TestList_EmptyDir(t *testing.T) {
	store := newTestStore(t)

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 0 {
		t.Errorf("expected empty list, got %d", len(metas))
	}
}

func TestSearchMessages(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save(sampleTranscript()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	other := sampleTranscript()
	other.Messages[0].Content = "Where is the office gym?"
	other.Messages = other.Messages[:1]
	if _, err := store.Save(other); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Matches only the agent answer of the first transcript
	results, err := store.SearchMessages("portal")
	if err != nil {
		t.Fatalf("SearchMessages failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	// Case-insensitive
	results, err = store.SearchMessages("GYM")
	if err != nil {
		t.Fatalf("SearchMessages failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("case-insensitive search failed: %d results", len(results))
	}
}

// =============================================================================
// DELETE AND LIMITS
// =============================================================================

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Save(sampleTranscript())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(id); !errors.Is(err, ErrTranscriptNotFound) {
		t.Error("transcript still loadable after delete")
	}
	if err := store.Delete(id); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("double delete should return not found, got %v", err)
	}
}

func TestEnforceLimit(t *testing.T) {
	store := newTestStore(t)
	store.MaxTranscripts = 2

	for i := 0; i < 4; i++ {
		tr := sampleTranscript()
		if _, err := store.Save(tr); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Errorf("limit not enforced: %d transcripts remain", len(metas))
	}
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func TestFromMessagesRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	messages := []model.Message{
		model.NewUserMessage(1, "question", now),
		{
			ID:         2,
			Role:       model.RoleAgent,
			Content:    "answer",
			AIResponse: "answer",
			Query:      "question",
			Citations:  []model.Citation{{ID: 3, Title: "Doc"}},
			Timestamp:  now,
		},
	}

	tr := FromMessages(messages, "sess-9", "user-9")
	back := tr.ToMessages()

	if len(back) != 2 {
		t.Fatalf("round-trip count = %d", len(back))
	}
	if back[0].Role != model.RoleUser || back[0].Content != "question" {
		t.Errorf("user message changed: %+v", back[0])
	}
	if back[1].Query != "question" || len(back[1].Citations) != 1 {
		t.Errorf("agent message changed: %+v", back[1])
	}
}
