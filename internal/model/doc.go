// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for askdesk chat sessions.
//
// # Key Types
//
//   - Message: a single chat message with role, content and, for agent
//     messages, the raw backend answer text, citations and originating query
//   - Citation: a numbered reference to a source document excerpt
//   - State: the aggregate session state (message list, pending-response
//     tracking, follow-ups, feedback bookkeeping)
//
// State transitions are plain methods on State; the chat package's
// Controller is the only writer and serializes all mutation.
package model
