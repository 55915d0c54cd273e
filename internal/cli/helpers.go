// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface functionality.
// This file contains shared helper functions used across multiple CLI commands.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/askdesk/internal/chat"
	"github.com/jeranaias/askdesk/internal/config"
	"github.com/jeranaias/askdesk/internal/identity"
	"github.com/jeranaias/askdesk/internal/qaclient"
	"github.com/jeranaias/askdesk/internal/storage"
)

// =============================================================================
// RUNTIME WIRING
// =============================================================================

// runtimeDeps bundles the long-lived objects a command handler needs:
// configuration, the QA service client, the identity provider, the chat
// controller and the transcript store.
type runtimeDeps struct {
	Cfg    *config.Config
	Client *qaclient.Client
	Ident  *identity.Provider
	Ctrl   *chat.Controller
	Store  *storage.TranscriptStore
}

// buildRuntime constructs the shared runtime from configuration and flags.
// The session ID lives in a memory store, so every process run starts a
// fresh chat session; the user ID and auth state are durable on disk.
func buildRuntime(args Args) (*runtimeDeps, error) {
	cfg := config.Global()
	if args.APIURL != "" {
		cfg.API.BaseURL = args.APIURL
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, WrapError(err, "failed to resolve data directory")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, WrapError(err, "failed to create data directory")
	}

	client := qaclient.NewClientWithConfig(&qaclient.ClientConfig{
		BaseURL:          cfg.API.BaseURL,
		AskPath:          cfg.API.AskPath,
		FeedbackPath:     cfg.API.FeedbackPath,
		LogPath:          cfg.API.ChatLogPath,
		LoginLogPath:     cfg.API.LoginLogPath,
		TokenExtractPath: cfg.API.TokenExtractPath,
		Timeout:          time.Duration(cfg.API.TimeoutSecs) * time.Second,
	})

	ident := identity.NewProvider(
		identity.NewFileStore(filepath.Join(dataDir, "identity.json")),
		identity.NewMemStore(),
	)

	// Attach the stored bearer token when a login is still valid.
	if auth := ident.Auth(); auth.Token != "" && identity.TokenValid(auth.Token) {
		client.SetAuthToken(auth.Token)
	}

	store, err := storage.NewTranscriptStoreWithDir(filepath.Join(dataDir, "transcripts"))
	if err != nil {
		return nil, WrapError(err, "failed to open transcript store")
	}
	store.MaxTranscripts = cfg.Storage.MaxTranscripts

	return &runtimeDeps{
		Cfg:    cfg,
		Client: client,
		Ident:  ident,
		Ctrl:   chat.NewController(client, ident),
		Store:  store,
	}, nil
}

// =============================================================================
// TRANSCRIPT RESOLUTION
// =============================================================================

// resolveTranscript resolves a user-supplied reference to a stored
// transcript. The reference is either a 1-based list index (as printed by
// "history list") or a transcript ID.
func resolveTranscript(store *storage.TranscriptStore, ref string) (*storage.Transcript, error) {
	if ref == "" {
		return nil, ErrMissingArgument("transcript", "askdesk history show <n|id>")
	}

	if n, err := strconv.Atoi(ref); err == nil {
		t, err := store.LoadByIndex(n - 1)
		if err != nil {
			return nil, ErrNotFound("transcript", ref)
		}
		return t, nil
	}

	t, err := store.Load(ref)
	if err != nil {
		return nil, ErrNotFound("transcript", ref)
	}
	return t, nil
}

// =============================================================================
// INPUT HELPERS
// =============================================================================

// readStdinPipe returns piped stdin content, or "" when stdin is a terminal.
func readStdinPipe() string {
	stat, err := os.Stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		return ""
	}
	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// promptInput prompts the user for a single line of input.
func promptInput(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// formatDuration formats a time.Duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// formatDurationShort formats a short duration string.
func formatDurationShort(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}
