// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat owns the chat session lifecycle: question submission,
// pending-response tracking, feedback, and session resets.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/askdesk/internal/format"
	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/qaclient"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBusy is returned when a question is submitted while another is
	// still awaiting its answer. The new submission is rejected before
	// dispatch; the in-flight request is never cancelled.
	ErrBusy = errors.New("a question is already awaiting a response")

	// ErrEmptyQuery is returned when the submitted question is blank.
	ErrEmptyQuery = errors.New("question is empty")

	// ErrMessageNotFound is returned when feedback targets a message ID
	// that is not in the current list.
	ErrMessageNotFound = errors.New("message not found for feedback")
)

// =============================================================================
// PORTS
// =============================================================================

// AskClient is the slice of the QA service client the controller uses.
type AskClient interface {
	Ask(ctx context.Context, req qaclient.AskRequest) (*qaclient.AskResponse, error)
	LogChat(ctx context.Context, req qaclient.LogRequest) error
	SubmitFeedback(ctx context.Context, req qaclient.FeedbackRequest) error
}

// IdentityProvider supplies the resolved identity values the request flows
// attach to their payloads.
type IdentityProvider interface {
	SessionID() (string, error)
	UserID() (string, error)
	UserName() string
	LoginSessionID() string
	RotateSessionID() (string, error)
	RotateUserID() (string, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller sequences the request lifecycle against the session state:
// optimistic placeholder insertion, the API call, update-or-error, cleanup.
// All state mutation goes through it, one transition at a time.
//
// Submit runs synchronously; the feedback flow is independent and may run
// concurrently with an in-flight ask.
type Controller struct {
	mu     sync.Mutex
	state  model.State
	client AskClient
	ident  IdentityProvider

	now    func() time.Time
	lastID int64
}

// NewController creates a controller over a QA client and identity provider.
func NewController(client AskClient, ident IdentityProvider) *Controller {
	return &Controller{
		state:  model.NewState(),
		client: client,
		ident:  ident,
		now:    time.Now,
	}
}

// State returns a snapshot of the session state, safe to read while the
// controller keeps working.
func (c *Controller) State() model.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// nextMessageID allocates a creation-timestamp-derived ID, strictly
// monotonic within the session even when two messages land in the same
// millisecond.
func (c *Controller) nextMessageID() int64 {
	id := c.now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

// =============================================================================
// QUESTION SUBMISSION
// =============================================================================

// Submit sends a question through the full ask lifecycle. It rejects with
// ErrBusy while a response is pending and with ErrEmptyQuery for blank
// input; rejection happens before anything is dispatched or mutated.
//
// On success the placeholder agent message is updated in place with the
// cleaned answer, its citations (the fallback citation when the backend
// returned none) and any follow-up suggestions. On failure the placeholder
// absorbs an inline error and the session error mirror is set; the error is
// never propagated to the caller. Either way input, the pending marker and
// the responding flag are reset.
func (c *Controller) Submit(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)

	c.mu.Lock()
	if c.state.IsResponding {
		c.mu.Unlock()
		return ErrBusy
	}
	if question == "" {
		c.mu.Unlock()
		return ErrEmptyQuery
	}

	c.state.SetFollowUps(nil)

	ts := c.now()
	userMsg := model.NewUserMessage(c.nextMessageID(), question, ts)
	c.state.AddMessage(userMsg)

	placeholderID := c.nextMessageID()
	c.state.AddMessage(model.NewPlaceholderMessage(placeholderID, ts))
	c.state.PendingMessageID = placeholderID
	c.state.IsResponding = true

	sessionID, userID := c.identityValues()
	c.mu.Unlock()

	resp, err := c.client.Ask(ctx, qaclient.AskRequest{
		Query:     question,
		UserID:    userID,
		SessionID: sessionID,
	})

	c.mu.Lock()
	defer func() {
		// Executes on both paths: the answer flow is done either way.
		c.state.ClearInput()
		c.state.PendingMessageID = 0
		c.state.IsResponding = false
		c.mu.Unlock()
	}()

	if err != nil {
		failure := "Something went wrong: " + err.Error()
		if c.state.PendingMessageID == placeholderID {
			c.state.UpdateMessage(placeholderID, failure, failure, []model.Citation{}, question)
		}
		c.state.Err = err.Error()
		return nil
	}

	// Reject a response whose placeholder no longer exists (the chat was
	// cleared mid-flight); a stale answer must not resurrect it.
	if c.state.PendingMessageID != placeholderID || c.state.MessageByID(placeholderID) == nil {
		return nil
	}

	cleaned := format.Clean(resp.AIResponse)
	citations := resp.Citations
	if len(citations) == 0 {
		citations = []model.Citation{model.FallbackCitation()}
	}
	c.state.UpdateMessage(placeholderID, cleaned, cleaned, citations, resp.Query)
	c.state.SetFollowUps(splitFollowUps(resp.FollowUps))
	c.state.Err = ""

	logReq := qaclient.LogRequest{
		ChatSessionID:  sessionID,
		UserID:         userID,
		UserName:       c.ident.UserName(),
		Query:          question,
		AIResponse:     cleaned,
		Citations:      model.JoinCitationTitles(citations),
		LoginSessionID: c.ident.LoginSessionID(),
	}

	// Fire-and-forget: the chat log call must never roll back or delay the
	// already-stored answer, so it runs detached from the ask context.
	go func() {
		_ = c.client.LogChat(context.Background(), logReq)
	}()

	return nil
}

// splitFollowUps splits newline-separated follow-up text into trimmed,
// non-empty suggestions.
func splitFollowUps(text string) []string {
	if text == "" {
		return nil
	}
	var followUps []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			followUps = append(followUps, line)
		}
	}
	return followUps
}

// identityValues resolves the session and user IDs, tolerating a broken
// store: the ask flow still works with blank identity values.
func (c *Controller) identityValues() (sessionID, userID string) {
	sessionID, _ = c.ident.SessionID()
	userID, _ = c.ident.UserID()
	return sessionID, userID
}

// =============================================================================
// FEEDBACK
// =============================================================================

// SubmitFeedback posts feedback for an answer. The originating query is the
// message's own query when present, else the most recent prior user
// message, else a literal placeholder. Feedback status is recorded only on
// success; a failure is returned to the caller, leaving the status
// untouched so the submission can be retried.
func (c *Controller) SubmitFeedback(ctx context.Context, messageID int64, feedbackType model.FeedbackType, text string) error {
	c.mu.Lock()
	msg := c.state.MessageByID(messageID)
	if msg == nil {
		c.mu.Unlock()
		return ErrMessageNotFound
	}

	query := msg.Query
	if query == "" {
		query = c.state.LastUserQueryBefore(messageID)
	}
	if query == "" {
		query = "Unknown query"
	}

	req := qaclient.FeedbackRequest{
		Query:        query,
		AIResponse:   msg.ResponseText(),
		Citations:    model.JoinCitationTitles(msg.Citations),
		FeedbackType: feedbackType,
		Feedback:     text,
	}
	c.mu.Unlock()

	req.ChatSessionID, req.UserID = c.identityValues()
	req.UserName = c.ident.UserName()
	req.LoginSessionID = c.ident.LoginSessionID()

	if err := c.client.SubmitFeedback(ctx, req); err != nil {
		return err
	}

	c.mu.Lock()
	c.state.SetFeedbackStatus(messageID, model.FeedbackStatus{Submitted: true, Type: feedbackType})
	c.mu.Unlock()
	return nil
}

// =============================================================================
// SESSION MANAGEMENT
// =============================================================================

// ClearChat empties the conversation without touching identity.
func (c *Controller) ClearChat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ClearChat()
}

// ResetSession rotates the session ID and stops any responding indication.
func (c *Controller) ResetSession() (string, error) {
	c.mu.Lock()
	c.state.IsResponding = false
	c.mu.Unlock()
	return c.ident.RotateSessionID()
}

// ResetUser rotates the durable user ID and stops any responding
// indication.
func (c *Controller) ResetUser() (string, error) {
	c.mu.Lock()
	c.state.IsResponding = false
	c.mu.Unlock()
	return c.ident.RotateUserID()
}

// =============================================================================
// INPUT AND PREVIEW
// =============================================================================

// SetInput replaces the draft input text.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SetInput(text)
}

// Input returns the draft input text.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Input
}

// SetPreviewDocURL records the source document currently being previewed.
func (c *Controller) SetPreviewDocURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SetPreviewDocURL(url)
}

// ClearPreviewDocURL closes the document preview.
func (c *Controller) ClearPreviewDocURL() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ClearPreviewDocURL()
}
