// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package qaclient provides the HTTP client for the hosted QA service.
//
// The service exposes five JSON endpoints: ask (question in, answer plus
// citations out), feedback, chat log, login log, and SAML token extraction.
// All calls take a context; there is no retry logic anywhere. A failed call
// surfaces immediately and every retry is a fresh user action.
//
// # Key Types
//
//   - Client: HTTP client with categorized ClientError reporting
//   - AskRequest / AskResponse: the question-answer exchange
//   - FeedbackRequest: thumbs up/down with free-text feedback
//   - LogRequest: fire-and-forget chat log record
//
// Errors are classified (unreachable, timeout, unauthorized, invalid
// response) so the chat controller can absorb them into message state and
// the CLI can phrase them for the user.
package qaclient
