// confirm.go - Unified confirmation handling for destructive askdesk commands.
//
// USABILITY: TTY detection for proper terminal handling
//
// Confirmation pattern:
//   1. If --confirm flag is present, proceed without prompting
//   2. If --json mode, require --confirm flag (no interactive prompts in JSON mode)
//   3. If stdin is not a TTY, require --confirm flag (can't prompt)
//   4. Otherwise, show interactive prompt for confirmation
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RequireConfirmation checks if the user has confirmed a destructive action
// such as deleting transcripts. It returns whether the action is confirmed;
// the error is non-nil when confirmation is required but cannot be obtained.
func RequireConfirmation(confirmFlag bool, action string, jsonMode bool) (bool, error) {
	if confirmFlag {
		return true, nil
	}

	if jsonMode {
		return false, fmt.Errorf("confirmation required: use --confirm flag for destructive actions in JSON mode")
	}

	// Piped input, cron jobs, CI: nothing to prompt.
	if !IsTTY() {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; use --confirm flag")
	}

	fmt.Println()
	return promptYesNo(fmt.Sprintf("Are you sure you want to %s?", action))
}

// promptYesNo asks a y/N question on stdin. Anything but an explicit yes is
// a no.
func promptYesNo(question string) (bool, error) {
	fmt.Printf("%s [y/N]: ", question)

	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes", nil
}
