// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides transcript persistence for askdesk.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/util"
)

// =============================================================================
// TRANSCRIPT TYPES
// =============================================================================

// Transcript represents a persisted conversation with the QA service.
type Transcript struct {
	// Identity
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages
	Messages []StoredMessage `json:"messages"`
}

// StoredMessage represents a persisted chat message.
type StoredMessage struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"` // "user" or "agent"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Agent message fields
	AIResponse string           `json:"ai_response,omitempty"`
	Query      string           `json:"query,omitempty"`
	Citations  []model.Citation `json:"citations,omitempty"`
}

// TranscriptMeta contains metadata for listing transcripts.
type TranscriptMeta struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"` // First user message truncated
}

// FromMessages builds a transcript from live session messages.
func FromMessages(messages []model.Message, sessionID, userID string) *Transcript {
	t := &Transcript{
		SessionID: sessionID,
		UserID:    userID,
	}
	for _, m := range messages {
		t.Messages = append(t.Messages, StoredMessage{
			ID:         m.ID,
			Role:       string(m.Role),
			Content:    m.Content,
			Timestamp:  m.Timestamp,
			AIResponse: m.AIResponse,
			Query:      m.Query,
			Citations:  m.Citations,
		})
	}
	return t
}

// ToMessages converts the transcript back into live session messages.
func (t *Transcript) ToMessages() []model.Message {
	var messages []model.Message
	for _, m := range t.Messages {
		messages = append(messages, model.Message{
			ID:         m.ID,
			Role:       model.Role(m.Role),
			Content:    m.Content,
			Timestamp:  m.Timestamp,
			AIResponse: m.AIResponse,
			Query:      m.Query,
			Citations:  m.Citations,
		})
	}
	return messages
}

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore handles transcript persistence.
type TranscriptStore struct {
	// BaseDir is the directory for storing transcripts
	// Default: ~/.askdesk/transcripts/
	BaseDir string

	// MaxTranscripts limits stored transcripts (0 = unlimited)
	MaxTranscripts int
}

// NewTranscriptStore creates a new transcript store under the default
// data directory.
func NewTranscriptStore() (*TranscriptStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewTranscriptStoreWithDir(filepath.Join(homeDir, ".askdesk", "transcripts"))
}

// NewTranscriptStoreWithDir creates a store with a custom directory.
func NewTranscriptStoreWithDir(baseDir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &TranscriptStore{
		BaseDir:        baseDir,
		MaxTranscripts: 200,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a transcript and returns its ID.
func (s *TranscriptStore) Save(t *Transcript) (string, error) {
	// Generate ID if not set
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	// Auto-generate summary if not set
	if t.Summary == "" {
		t.Summary = generateSummary(t)
	}

	// Update timestamp
	t.UpdatedAt = time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.UpdatedAt
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(s.filePath(t.ID), data, 0644); err != nil {
		return "", err
	}

	// Enforce max transcripts limit
	if s.MaxTranscripts > 0 {
		s.enforceLimit()
	}

	return t.ID, nil
}

// generateSummary creates a summary from the first user message.
func generateSummary(t *Transcript) string {
	for _, msg := range t.Messages {
		if msg.Role == string(model.RoleUser) && msg.Content != "" {
			content := strings.ReplaceAll(msg.Content, "\n", " ")
			content = strings.ReplaceAll(content, "\r", "")
			return util.TruncateRunes(content, 50)
		}
	}
	return "New conversation"
}

// enforceLimit removes oldest transcripts if over limit.
func (s *TranscriptStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxTranscripts {
		return
	}

	// Sort by updated time (oldest first)
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.Before(metas[j].UpdatedAt)
	})

	// Delete excess
	excess := len(metas) - s.MaxTranscripts
	for i := 0; i < excess; i++ {
		s.Delete(metas[i].ID)
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a transcript by ID.
func (s *TranscriptStore) Load(id string) (*Transcript, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTranscriptNotFound
		}
		return nil, err
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

// LoadByIndex loads a transcript by its index in the list (0 = most recent).
func (s *TranscriptStore) LoadByIndex(index int) (*Transcript, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(metas) {
		return nil, ErrTranscriptNotFound
	}

	return s.Load(metas[index].ID)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved transcripts (most recent first).
func (s *TranscriptStore) List() ([]TranscriptMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TranscriptMeta{}, nil
		}
		return nil, err
	}

	var metas []TranscriptMeta

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")

		t, err := s.Load(id)
		if err != nil {
			continue // Skip corrupted files
		}

		// Get first user message as preview
		preview := ""
		for _, msg := range t.Messages {
			if msg.Role == string(model.RoleUser) {
				preview = util.TruncateRunes(msg.Content, 80)
				break
			}
		}

		metas = append(metas, TranscriptMeta{
			ID:           t.ID,
			Summary:      t.Summary,
			SessionID:    t.SessionID,
			CreatedAt:    t.CreatedAt,
			UpdatedAt:    t.UpdatedAt,
			MessageCount: len(t.Messages),
			Preview:      preview,
		})
	}

	// Sort by updated time (most recent first)
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})

	return metas, nil
}

// Search finds transcripts matching a query string in summary or preview.
func (s *TranscriptStore) Search(query string) ([]TranscriptMeta, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []TranscriptMeta

	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Summary), query) ||
			strings.Contains(strings.ToLower(meta.Preview), query) {
			results = append(results, meta)
		}
	}

	return results, nil
}

// SearchMessages searches transcripts by message content.
// Returns transcripts where any message contains the query string
// (case-insensitive).
func (s *TranscriptStore) SearchMessages(query string) ([]TranscriptMeta, error) {
	if query == "" {
		return s.List()
	}

	query = strings.ToLower(query)
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	var results []TranscriptMeta

	for _, meta := range all {
		// Load full transcript to search message content
		t, err := s.Load(meta.ID)
		if err != nil {
			continue
		}

		for _, msg := range t.Messages {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				results = append(results, meta)
				break // Found a match, move to next transcript
			}
		}
	}

	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a transcript by ID.
func (s *TranscriptStore) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrTranscriptNotFound
		}
		return err
	}

	return nil
}

// Clear removes all saved transcripts.
func (s *TranscriptStore) Clear() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// filePath returns the file path for a transcript ID.
func (s *TranscriptStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrTranscriptNotFound is returned when a transcript doesn't exist.
// Use errors.Is(err, ErrTranscriptNotFound) to check for this error.
var ErrTranscriptNotFound = &TranscriptError{Message: "transcript not found"}

// TranscriptError represents a transcript-related error.
// It implements the error interface and can be compared using errors.Is.
type TranscriptError struct {
	Message string
}

// Error implements the error interface.
func (e *TranscriptError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing transcript errors.
func (e *TranscriptError) Is(target error) bool {
	t, ok := target.(*TranscriptError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// TRANSCRIPT LIST FORMATTING
// =============================================================================

// FormatTranscriptList formats a list of transcripts for display in a table.
// Returns a human-readable string with ID, creation time, message count, and
// preview.
func FormatTranscriptList(metas []TranscriptMeta) string {
	if len(metas) == 0 {
		return "No saved transcripts."
	}

	var sb strings.Builder
	sb.WriteString("Transcripts:\n")
	sb.WriteString("--------------------------------------------------------------\n")
	sb.WriteString(util.PadRight("ID", 12) + " " + util.PadRight("Created", 20) + " " + util.PadRight("Messages", 8) + " Preview\n")
	sb.WriteString("--------------------------------------------------------------\n")

	for _, meta := range metas {
		idStr := meta.ID
		if len(idStr) > 12 {
			idStr = idStr[:12]
		}
		sb.WriteString(util.PadRight(idStr, 12) + " " +
			util.PadRight(meta.CreatedAt.Format("2006-01-02 15:04"), 20) + " " +
			util.PadRight(strconv.Itoa(meta.MessageCount), 8) + " " +
			util.TruncateWidth(meta.Preview, 30) + "\n")
	}
	return sb.String()
}
