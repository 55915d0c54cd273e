// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - Identity/session command handler for the askdesk CLI.
//
// Command: session (aliases: sessions)
// Subcommands:
//   show          Show session, user and login session IDs (default)
//   reset         Rotate the chat session ID
//   reset-user    Rotate the durable user ID
//
// The session ID groups one conversation; the user ID is the durable
// pseudonymous profile identity. Rotating either starts fresh without
// touching stored credentials.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"fmt"
)

// HandleSession handles the "session" command.
func HandleSession(args Args) error {
	deps, err := buildRuntime(args)
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "show":
		sessionID, err := deps.Ident.SessionID()
		if err != nil {
			return WrapError(err, "failed to resolve session ID")
		}
		userID, err := deps.Ident.UserID()
		if err != nil {
			return WrapError(err, "failed to resolve user ID")
		}

		data := StatusSessionInfo{
			SessionID:      sessionID,
			UserID:         userID,
			LoginSessionID: deps.Ident.LoginSessionID(),
		}
		if args.JSON {
			return NewJSONResponse("session", data).Print()
		}

		fmt.Println()
		fmt.Printf("  %s%s\n", RenderLabel("Session ID:"), data.SessionID)
		fmt.Printf("  %s%s\n", RenderLabel("User ID:"), data.UserID)
		if data.LoginSessionID != "" {
			fmt.Printf("  %s%s\n", RenderLabel("Login session:"), data.LoginSessionID)
		}
		fmt.Println()
		return nil

	case "reset":
		id, err := deps.Ctrl.ResetSession()
		if err != nil {
			return WrapError(err, "failed to rotate session ID")
		}
		if args.JSON {
			return NewJSONResponse("session", map[string]string{"session_id": id}).Print()
		}
		fmt.Printf("%s New session ID: %s\n", SuccessStyle.Render("[OK]"), id)
		return nil

	case "reset-user":
		id, err := deps.Ctrl.ResetUser()
		if err != nil {
			return WrapError(err, "failed to rotate user ID")
		}
		if args.JSON {
			return NewJSONResponse("session", map[string]string{"user_id": id}).Print()
		}
		fmt.Printf("%s New user ID: %s\n", SuccessStyle.Render("[OK]"), id)
		return nil

	default:
		return NewValidationErrorWithExample(
			"subcommand",
			args.Subcommand,
			"unknown session subcommand",
			"askdesk session show | reset | reset-user",
		)
	}
}
