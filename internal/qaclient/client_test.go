// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package qaclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// newTestClient returns a client pointed at a test server serving handler.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// =============================================================================
// ASK TESTS
// =============================================================================

func TestAsk_Success(t *testing.T) {
	client := newTestClient(t, jsonHandler(http.StatusOK, `{
		"ai_response": "Reset it from the portal [1].",
		"citations": [{"id": 1, "title": "Password Guide", "chunk": "…", "parent_id": "https://docs/pw.pdf"}],
		"follow_ups": "How do I enable MFA?\nWhere is the portal?"
	}`))

	resp, err := client.Ask(context.Background(), AskRequest{Query: "reset password"})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if resp.AIResponse != "Reset it from the portal [1]." {
		t.Errorf("AIResponse = %q", resp.AIResponse)
	}
	if len(resp.Citations) != 1 || resp.Citations[0].Title != "Password Guide" {
		t.Errorf("Citations = %+v", resp.Citations)
	}
	if resp.FollowUps != "How do I enable MFA?\nWhere is the portal?" {
		t.Errorf("FollowUps = %q", resp.FollowUps)
	}
}

func TestAsk_EmptyCitationsArrayIsValid(t *testing.T) {
	client := newTestClient(t, jsonHandler(http.StatusOK,
		`{"ai_response": "answer", "citations": []}`))

	resp, err := client.Ask(context.Background(), AskRequest{Query: "q"})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if len(resp.Citations) != 0 {
		t.Errorf("Citations = %+v, want empty", resp.Citations)
	}
}

func TestAsk_MalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing ai_response", `{"citations": []}`},
		{"missing citations", `{"ai_response": "answer"}`},
		{"citations null", `{"ai_response": "answer", "citations": null}`},
		{"citations not an array", `{"ai_response": "answer", "citations": {"id": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, jsonHandler(http.StatusOK, tt.body))
			_, err := client.Ask(context.Background(), AskRequest{Query: "q"})
			if !IsInvalidResponse(err) {
				t.Errorf("err = %v, want invalid-response error", err)
			}
		})
	}
}

func TestAsk_RequestShape(t *testing.T) {
	var got AskRequest
	var headers http.Header
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ai_response": "a", "citations": []}`))
	})
	client.SetAuthToken("tok123")

	req := AskRequest{Query: "q", SessionID: "sess", UserID: "user_1"}
	if _, err := client.Ask(context.Background(), req); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if got.Query != "q" || got.SessionID != "sess" || got.UserID != "user_1" {
		t.Errorf("request body = %+v", got)
	}
	if headers.Get("Authorization") != "Bearer tok123" {
		t.Errorf("Authorization = %q", headers.Get("Authorization"))
	}
	if headers.Get("X-Request-ID") == "" {
		t.Error("expected a correlation ID header")
	}
	if headers.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", headers.Get("Content-Type"))
	}
}

// =============================================================================
// ERROR CATEGORY TESTS
// =============================================================================

func TestErrorCategories(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		client := newTestClient(t, jsonHandler(http.StatusUnauthorized, `{}`))
		_, err := client.Ask(context.Background(), AskRequest{Query: "q"})
		if !IsUnauthorized(err) {
			t.Errorf("err = %v, want unauthorized", err)
		}
	})

	t.Run("forbidden maps to unauthorized", func(t *testing.T) {
		client := newTestClient(t, jsonHandler(http.StatusForbidden, `{}`))
		err := client.LogChat(context.Background(), LogRequest{})
		if !IsUnauthorized(err) {
			t.Errorf("err = %v, want unauthorized", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		client := NewClientWithConfig(&ClientConfig{
			BaseURL: "http://127.0.0.1:1", // nothing listens here
			Timeout: 2 * time.Second,
		})
		_, err := client.Ask(context.Background(), AskRequest{Query: "q"})
		if !IsUnreachable(err) {
			t.Errorf("err = %v, want unreachable", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := client.Ask(ctx, AskRequest{Query: "q"})
		if !IsTimeout(err) {
			t.Errorf("err = %v, want timeout", err)
		}
	})

	t.Run("service error body surfaces", func(t *testing.T) {
		client := newTestClient(t, jsonHandler(http.StatusInternalServerError,
			`{"error": "index rebuild in progress"}`))
		_, err := client.Ask(context.Background(), AskRequest{Query: "q"})
		if err == nil || err.Error() != "index rebuild in progress" {
			t.Errorf("err = %v, want service error message", err)
		}
	})
}

// =============================================================================
// LOGIN FLOW TESTS
// =============================================================================

func TestExtractToken_TopLevelShape(t *testing.T) {
	client := newTestClient(t, jsonHandler(http.StatusOK,
		`{"name": "Jesse Morgan", "group": "engineering"}`))

	data, err := client.ExtractToken(context.Background(), "saml-token")
	if err != nil {
		t.Fatalf("ExtractToken failed: %v", err)
	}
	if data.Name != "Jesse Morgan" || data.Group != "engineering" {
		t.Errorf("data = %+v", data)
	}
}

func TestExtractToken_NestedShape(t *testing.T) {
	client := newTestClient(t, jsonHandler(http.StatusOK,
		`{"user_data": {"name": "Jesse Morgan", "group": "engineering"}}`))

	data, err := client.ExtractToken(context.Background(), "saml-token")
	if err != nil {
		t.Fatalf("ExtractToken failed: %v", err)
	}
	if data.Name != "Jesse Morgan" {
		t.Errorf("Name = %q", data.Name)
	}
}

func TestExtractToken_NoUserData(t *testing.T) {
	client := newTestClient(t, jsonHandler(http.StatusOK, `{}`))

	if _, err := client.ExtractToken(context.Background(), "saml-token"); !IsInvalidResponse(err) {
		t.Errorf("err = %v, want invalid-response error", err)
	}
}

func TestLogLogin(t *testing.T) {
	var got LoginLogRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"session_id": "login_42"}`))
	})

	resp, err := client.LogLogin(context.Background(), "Jesse Morgan")
	if err != nil {
		t.Fatalf("LogLogin failed: %v", err)
	}
	if got.UserName != "Jesse Morgan" {
		t.Errorf("request user_name = %q", got.UserName)
	}
	if resp.SessionID != "login_42" {
		t.Errorf("SessionID = %q", resp.SessionID)
	}
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://example.com"})

	cfg := client.GetConfig()
	if cfg.AskPath != "/ask" {
		t.Errorf("AskPath = %q, want /ask", cfg.AskPath)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}

	if nilCfg := NewClientWithConfig(nil).GetConfig(); nilCfg.BaseURL == "" {
		t.Error("nil config must fall back to defaults")
	}
}
