// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// TestConfig_ConcurrentAccess tests that Global() and SetGlobal() can be
// safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// 50 writers using SetGlobal, 50 readers using Global
	for i := 0; i < 50; i++ {
		wg.Add(2)

		// Writer goroutine
		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "test"
			SetGlobal(c)
		}()

		// Reader goroutine
		go func() {
			defer wg.Done()
			cfg := Global()
			if cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.BaseURL == "" {
		t.Error("default base URL should not be empty")
	}
	if cfg.API.AskPath != "/ask" {
		t.Errorf("default ask path = %q", cfg.API.AskPath)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Errorf("default timeout = %d, want 60", cfg.API.TimeoutSecs)
	}
	if cfg.Storage.MaxTranscripts != 200 {
		t.Errorf("default max transcripts = %d, want 200", cfg.Storage.MaxTranscripts)
	}
	if !cfg.UI.RenderMarkdown {
		t.Error("markdown rendering should default to enabled")
	}

	// Defaults must always pass validation
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, true},
		{"bad base url", func(c *Config) { c.API.BaseURL = "not a url" }, true},
		{"path missing slash", func(c *Config) { c.API.AskPath = "ask" }, true},
		{"timeout too low", func(c *Config) { c.API.TimeoutSecs = 0 }, true},
		{"timeout too high", func(c *Config) { c.API.TimeoutSecs = 601 }, true},
		{"negative transcripts", func(c *Config) { c.Storage.MaxTranscripts = -1 }, true},
		{"word wrap out of range", func(c *Config) { c.UI.WordWrap = 1000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.API.BaseURL == "" {
		t.Error("SetDefaults did not fill base URL")
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Errorf("SetDefaults timeout = %d", cfg.API.TimeoutSecs)
	}
	if cfg.API.TokenExtractPath != "/saml/token/extract" {
		t.Errorf("SetDefaults token extract path = %q", cfg.API.TokenExtractPath)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://qa.internal.example.com"
	cfg.API.TimeoutSecs = 90
	cfg.UI.ShowFollowUps = false

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	// File must be created with owner-only permissions
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.API.BaseURL != "https://qa.internal.example.com" {
		t.Errorf("round-trip base URL = %q", loaded.API.BaseURL)
	}
	if loaded.API.TimeoutSecs != 90 {
		t.Errorf("round-trip timeout = %d", loaded.API.TimeoutSecs)
	}
	if loaded.UI.ShowFollowUps {
		t.Error("round-trip lost show_follow_ups = false")
	}
}

func TestLoadFromPath_PartialFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.toml")

	partial := "[api]\nbase_url = \"https://qa.partial.example.com\"\n"
	if err := os.WriteFile(path, []byte(partial), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.API.BaseURL != "https://qa.partial.example.com" {
		t.Errorf("base URL = %q", cfg.API.BaseURL)
	}
	// Missing fields fall back to defaults
	if cfg.API.AskPath != "/ask" {
		t.Errorf("ask path not defaulted: %q", cfg.API.AskPath)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Errorf("timeout not defaulted: %d", cfg.API.TimeoutSecs)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ASKDESK_API_URL", "https://override.example.com")
	t.Setenv("ASKDESK_TIMEOUT_SECS", "120")
	t.Setenv("ASKDESK_NO_MARKDOWN", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.BaseURL != "https://override.example.com" {
		t.Errorf("env base URL override not applied: %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs != 120 {
		t.Errorf("env timeout override not applied: %d", cfg.API.TimeoutSecs)
	}
	if cfg.UI.RenderMarkdown {
		t.Error("env no-markdown override not applied")
	}
}

func TestGetSetDotNotation(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("api.base_url", "https://set.example.com"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := cfg.Get("api.base_url")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "https://set.example.com" {
		t.Errorf("Get = %v", got)
	}

	// String-to-int conversion
	if err := cfg.Set("api.timeout_secs", "45"); err != nil {
		t.Fatalf("Set int failed: %v", err)
	}
	if cfg.API.TimeoutSecs != 45 {
		t.Errorf("timeout = %d, want 45", cfg.API.TimeoutSecs)
	}

	// String-to-bool conversion
	if err := cfg.Set("ui.render_markdown", "false"); err != nil {
		t.Fatalf("Set bool failed: %v", err)
	}
	if cfg.UI.RenderMarkdown {
		t.Error("render_markdown not set to false")
	}

	// Unknown keys are rejected
	if err := cfg.Set("api.nonexistent", "x"); err == nil {
		t.Error("Set on unknown key should fail")
	}
	if _, err := cfg.Get("nope.nope"); err == nil {
		t.Error("Get on unknown key should fail")
	}
}

func TestDataDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.DataDir = "/custom/data"

	dir, err := cfg.DataDir()
	if err != nil {
		t.Fatalf("DataDir failed: %v", err)
	}
	if dir != "/custom/data" {
		t.Errorf("DataDir = %q", dir)
	}
}
