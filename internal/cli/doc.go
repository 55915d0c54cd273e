// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the askdesk command-line interface.
//
// The package provides two entry modes: an interactive chat REPL with input
// history and markdown rendering, and one-shot commands for scripting (ask,
// login, status, config, session, history, feedback). All commands support
// a --json flag for machine-readable output, honor NO_COLOR, and disable
// styling automatically when output is piped.
package cli
