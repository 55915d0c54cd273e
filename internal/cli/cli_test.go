// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/storage"
)

// =============================================================================
// GLOBAL FLAG PARSING
// =============================================================================

func TestParseGlobalFlags(t *testing.T) {
	remaining, args := parseGlobalFlags([]string{"--json", "-q", "ask", "hello", "--api", "http://localhost:9999"})

	if !args.JSON {
		t.Error("expected JSON flag to be set")
	}
	if !args.Quiet {
		t.Error("expected Quiet flag to be set")
	}
	if args.APIURL != "http://localhost:9999" {
		t.Errorf("APIURL = %q, want http://localhost:9999", args.APIURL)
	}
	if len(remaining) != 2 || remaining[0] != "ask" || remaining[1] != "hello" {
		t.Errorf("remaining = %v, want [ask hello]", remaining)
	}
}

func TestParseGlobalFlags_EqualsForm(t *testing.T) {
	remaining, args := parseGlobalFlags([]string{"--api=https://qa.example.com", "status"})

	if args.APIURL != "https://qa.example.com" {
		t.Errorf("APIURL = %q, want https://qa.example.com", args.APIURL)
	}
	if len(remaining) != 1 || remaining[0] != "status" {
		t.Errorf("remaining = %v, want [status]", remaining)
	}
}

func TestParseAskArgs(t *testing.T) {
	args := Args{Options: make(map[string]string)}
	parseAskArgs(&args, []string{"--save", "How", "do", "I", "reset", "my", "password?", "--no-sources"})

	if !args.Save {
		t.Error("expected Save flag to be set")
	}
	if !args.NoSources {
		t.Error("expected NoSources flag to be set")
	}
	if args.Query != "How do I reset my password?" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseLoginArgs(t *testing.T) {
	args := Args{Options: make(map[string]string)}
	parseLoginArgs(&args, []string{"--token", "abc.def.ghi"})
	if args.Token != "abc.def.ghi" {
		t.Errorf("Token = %q, want abc.def.ghi", args.Token)
	}

	args = Args{Options: make(map[string]string)}
	parseLoginArgs(&args, []string{"--token=xyz"})
	if args.Token != "xyz" {
		t.Errorf("Token = %q, want xyz", args.Token)
	}
}

func TestParseConfigArgs(t *testing.T) {
	args := Args{Options: make(map[string]string)}
	parseConfigArgs(&args, []string{"set", "ui.word_wrap", "100"})

	if args.Subcommand != "set" {
		t.Errorf("Subcommand = %q, want set", args.Subcommand)
	}
	if args.ConfigKey != "ui.word_wrap" {
		t.Errorf("ConfigKey = %q, want ui.word_wrap", args.ConfigKey)
	}
	if args.ConfigVal != "100" {
		t.Errorf("ConfigVal = %q, want 100", args.ConfigVal)
	}
}

// =============================================================================
// ARG PARSER
// =============================================================================

func TestArgParser(t *testing.T) {
	parser := NewArgParser([]string{"export", "1", "--format", "html", "--output=/tmp/out", "--confirm"})

	if parser.Subcommand() != "export" {
		t.Errorf("Subcommand = %q, want export", parser.Subcommand())
	}
	if parser.Positional(1) != "1" {
		t.Errorf("Positional(1) = %q, want 1", parser.Positional(1))
	}
	if parser.Flag("format") != "html" {
		t.Errorf("Flag(format) = %q, want html", parser.Flag("format"))
	}
	if parser.Flag("output") != "/tmp/out" {
		t.Errorf("Flag(output) = %q, want /tmp/out", parser.Flag("output"))
	}
	if !parser.BoolFlag("confirm") {
		t.Error("expected confirm flag to be true")
	}
	if parser.BoolFlag("missing") {
		t.Error("expected missing flag to be false")
	}
}

func TestArgParser_Defaults(t *testing.T) {
	parser := NewArgParser([]string{"export", "2"})

	if got := parser.FlagOrDefault("format", "markdown"); got != "markdown" {
		t.Errorf("FlagOrDefault = %q, want markdown", got)
	}
	if got := parser.FlagIntOrDefault("limit", 50); got != 50 {
		t.Errorf("FlagIntOrDefault = %d, want 50", got)
	}
}

func TestJoinPositionalArgs(t *testing.T) {
	parser := NewArgParser([]string{"search", "vpn", "setup", "guide"})
	if got := JoinPositionalArgs(parser, 1); got != "vpn setup guide" {
		t.Errorf("JoinPositionalArgs = %q, want 'vpn setup guide'", got)
	}
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"validation error", NewValidationError("field", "x", "bad"), ExitUsageError},
		{"not found error", ErrNotFound("transcript", "42"), ExitNotFoundError},
		{"config error", errors.New("configuration is invalid"), ExitConfigError},
		{"auth error", errors.New("not logged in"), ExitAuthError},
		{"network error", errors.New("connection refused"), ExitNetworkError},
		{"timeout error", errors.New("request timed out"), ExitTimeoutError},
		{"generic error", errors.New("something broke"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetExitCode_WrappedValidationError(t *testing.T) {
	err := WrapError(NewValidationError("rating", "sideways", "must be 'up' or 'down'"), "feedback")
	if got := GetExitCode(err); got != ExitUsageError {
		t.Errorf("GetExitCode = %d, want %d", got, ExitUsageError)
	}
}

// =============================================================================
// TEXT WRAPPING
// =============================================================================

func TestWrapText(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog and keeps on running"
	wrapped := WrapText(text, 20)

	for i, line := range strings.Split(wrapped, "\n") {
		if len(line) > 18 {
			t.Errorf("line %d exceeds width: %q (%d chars)", i, line, len(line))
		}
	}
	// No words lost
	if strings.Join(strings.Fields(wrapped), " ") != text {
		t.Errorf("wrapped text lost content: %q", wrapped)
	}
}

func TestWrapText_PreservesNewlines(t *testing.T) {
	text := "first line\nsecond line"
	if got := WrapText(text, 80); got != text {
		t.Errorf("WrapText = %q, want unchanged", got)
	}
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{48 * time.Hour, "2d"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatDurationShort(t *testing.T) {
	if got := formatDurationShort(1500 * time.Millisecond); got != "1.5s" {
		t.Errorf("formatDurationShort = %q, want 1.5s", got)
	}
	if got := formatDurationShort(90 * time.Second); got != "1m30s" {
		t.Errorf("formatDurationShort = %q, want 1m30s", got)
	}
}

// =============================================================================
// ANSWER LOOKUP
// =============================================================================

func TestLastAnswer(t *testing.T) {
	now := time.Now()
	messages := []model.Message{
		model.NewUserMessage(1, "first question", now),
		{ID: 2, Role: model.RoleAgent, Content: "first answer", AIResponse: "first answer", Timestamp: now},
		model.NewUserMessage(3, "second question", now),
		{ID: 4, Role: model.RoleAgent, Content: "second answer", AIResponse: "second answer", Timestamp: now},
	}

	msg := lastAnswer(messages)
	if msg == nil {
		t.Fatal("expected an answer")
	}
	if msg.ID != 4 {
		t.Errorf("lastAnswer ID = %d, want 4", msg.ID)
	}
}

func TestLastAnswer_NoAgentMessages(t *testing.T) {
	messages := []model.Message{
		model.NewUserMessage(1, "only a question", time.Now()),
	}
	if msg := lastAnswer(messages); msg != nil {
		t.Errorf("expected nil, got message %d", msg.ID)
	}
}

func TestFindAnswer(t *testing.T) {
	transcript := &storage.Transcript{
		Messages: []storage.StoredMessage{
			{ID: 1, Role: string(model.RoleUser), Content: "how do I enroll?"},
			{ID: 2, Role: string(model.RoleAgent), Content: "enrollment answer", AIResponse: "enrollment answer"},
			{ID: 3, Role: string(model.RoleUser), Content: "what about deadlines?"},
			{ID: 4, Role: string(model.RoleAgent), Content: "deadline answer"},
		},
	}

	msg, query := findAnswer(transcript, 2)
	if msg == nil {
		t.Fatal("expected an answer")
	}
	if msg.ID != 4 {
		t.Errorf("answer ID = %d, want 4", msg.ID)
	}
	// Stored query is empty, so it falls back to the preceding user message
	if query != "what about deadlines?" {
		t.Errorf("query = %q, want fallback to preceding user message", query)
	}

	if msg, _ := findAnswer(transcript, 3); msg != nil {
		t.Errorf("expected nil for out-of-range answer number, got %d", msg.ID)
	}
}

// =============================================================================
// TRANSCRIPT RESOLUTION
// =============================================================================

func TestResolveTranscript(t *testing.T) {
	store, err := storage.NewTranscriptStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	id, err := store.Save(&storage.Transcript{
		Messages: []storage.StoredMessage{
			{ID: 1, Role: string(model.RoleUser), Content: "where is the style guide?"},
		},
	})
	if err != nil {
		t.Fatalf("failed to save transcript: %v", err)
	}

	// By 1-based index
	byIndex, err := resolveTranscript(store, "1")
	if err != nil {
		t.Fatalf("resolve by index failed: %v", err)
	}
	if byIndex.ID != id {
		t.Errorf("by index ID = %q, want %q", byIndex.ID, id)
	}

	// By ID
	byID, err := resolveTranscript(store, id)
	if err != nil {
		t.Fatalf("resolve by ID failed: %v", err)
	}
	if byID.ID != id {
		t.Errorf("by ID = %q, want %q", byID.ID, id)
	}

	// Missing
	if _, err := resolveTranscript(store, "99"); !IsNotFoundError(err) {
		t.Errorf("expected not found error, got %v", err)
	}
	if _, err := resolveTranscript(store, ""); !IsValidationError(err) {
		t.Errorf("expected validation error for empty ref, got %v", err)
	}
}
