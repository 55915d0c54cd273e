// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// feedback_cmd.go - Feedback command handler for the askdesk CLI.
//
// Command: feedback
// Usage:   askdesk feedback <n|id> <answer-number> up|down [comment]
//
// Rates an answer in a saved transcript. Answers are numbered by their
// position among the assistant messages of the transcript, starting at 1.
// During an interactive chat the /feedback command rates the live answer
// instead.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/qaclient"
	"github.com/jeranaias/askdesk/internal/storage"
)

const feedbackUsage = "askdesk feedback <n|id> <answer-number> up|down [comment]"

// HandleFeedback handles the "feedback" command.
func HandleFeedback(args Args) error {
	deps, err := buildRuntime(args)
	if err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)
	if parser.PositionalCount() < 3 {
		return ErrMissingArgument("arguments", feedbackUsage)
	}

	t, err := resolveTranscript(deps.Store, parser.Positional(0))
	if err != nil {
		return err
	}

	answerNum, err := ParseIntWithValidation(parser.Positional(1), "answer number")
	if err != nil {
		return NewValidationError("answer number", parser.Positional(1), "must be a positive integer")
	}

	var fbType model.FeedbackType
	switch strings.ToLower(parser.Positional(2)) {
	case "up", "+", "thumbs-up":
		fbType = model.FeedbackThumbsUp
	case "down", "-", "thumbs-down":
		fbType = model.FeedbackThumbsDown
	default:
		return NewValidationErrorWithExample("rating", parser.Positional(2), "must be 'up' or 'down'", feedbackUsage)
	}

	msg, query := findAnswer(t, answerNum)
	if msg == nil {
		return ErrNotFound("answer", parser.Positional(1))
	}

	comment := JoinPositionalArgs(parser, 3)
	userID, _ := deps.Ident.UserID()

	answer := msg.AIResponse
	if answer == "" {
		answer = msg.Content
	}

	req := qaclient.FeedbackRequest{
		ChatSessionID:  t.SessionID,
		UserName:       deps.Ident.UserName(),
		Query:          query,
		AIResponse:     answer,
		Citations:      model.JoinCitationTitles(msg.Citations),
		FeedbackType:   fbType,
		Feedback:       comment,
		LoginSessionID: deps.Ident.LoginSessionID(),
		UserID:         userID,
	}

	if err := deps.Client.SubmitFeedback(context.Background(), req); err != nil {
		if args.JSON {
			NewJSONErrorResponse("feedback", err).Print()
		}
		return WrapError(err, "feedback submission failed")
	}

	if args.JSON {
		return NewJSONResponse("feedback", map[string]string{
			"transcript": t.ID,
			"type":       string(fbType),
		}).Print()
	}
	fmt.Printf("%s Feedback submitted\n", SuccessStyle.Render("[OK]"))
	return nil
}

// findAnswer returns the n-th assistant message of a transcript (1-based)
// and the query that produced it, falling back to the preceding user
// message when the stored query is empty.
func findAnswer(t *storage.Transcript, n int) (*storage.StoredMessage, string) {
	count := 0
	lastQuery := ""
	for i := range t.Messages {
		msg := &t.Messages[i]
		if msg.Role == string(model.RoleUser) {
			lastQuery = msg.Content
			continue
		}
		if msg.Role != string(model.RoleAgent) {
			continue
		}
		count++
		if count == n {
			query := msg.Query
			if query == "" {
				query = lastQuery
			}
			if query == "" {
				query = "Unknown query"
			}
			return msg, query
		}
	}
	return nil, ""
}
