// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the askdesk CLI.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering and history for better CLI experience
//
// Handles the "askdesk ask" command which sends one question to the QA
// service and prints the answer with its sources.
//
// Command: ask [question]
// Short:   Ask a single question
//
// Examples:
//   askdesk ask "How do I request parental leave?"
//   askdesk ask --save "What is the travel policy?"
//   echo "How do I reset my VPN password?" | askdesk ask
//   askdesk ask --json "List the onboarding steps"
//
// Flags:
//   --save          Save the exchange as a transcript
//   --no-sources    Hide the source list
//   --json          Output response as JSON
//   -v, --verbose   Verbose output
//   -q, --quiet     Minimal output
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askdesk/internal/config"
	"github.com/jeranaias/askdesk/internal/format"
	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/storage"
	"github.com/jeranaias/askdesk/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the shared glamour renderer for answer output.
// USABILITY: Renders markdown answers with formatting on TTYs.
var (
	markdownRenderer     *glamour.TermRenderer
	markdownRendererOnce sync.Once
)

// getMarkdownRenderer lazily builds the renderer so the configured word
// wrap width is respected.
func getMarkdownRenderer() *glamour.TermRenderer {
	markdownRendererOnce.Do(func() {
		wrap := config.Global().UI.WordWrap
		if wrap <= 0 {
			wrap = DefaultTerminalWidth
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			// Fall back to plain text if renderer initialization fails
			markdownRenderer = nil
			return
		}
		markdownRenderer = r
	})
	return markdownRenderer
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	r := getMarkdownRenderer()
	if r == nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayAnswer prints an answer with markdown rendering when appropriate.
// Only renders markdown when stdout is a TTY to avoid corrupting piped
// output, and only when ui.render_markdown is enabled.
func displayAnswer(answer string) {
	if IsStdoutTTY() && config.Global().UI.RenderMarkdown {
		fmt.Print(renderMarkdown(answer))
		return
	}
	fmt.Println(answer)
}

// =============================================================================
// STYLES
// =============================================================================

var (
	// Source list styles
	sourceHeadStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	sourceItemStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	// Follow-up suggestion style
	followUpStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	// Inline failure style
	askErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	// Timing footer style
	timingStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAskCommand handles the "ask" command: one question, one answer.
func HandleAskCommand(args Args) error {
	question := args.Query

	// Accept piped input when no question was given on the command line
	if question == "" {
		question = readStdinPipe()
		if question != "" && !args.Quiet && !args.JSON {
			fmt.Fprintf(os.Stderr, "%s Read question from stdin\n",
				InfoStyle.Render("[+]"))
		}
	}

	if question == "" {
		err := ErrMissingArgument("question", `askdesk ask "your question"`)
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	deps, err := buildRuntime(args)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	start := time.Now()
	if err := deps.Ctrl.Submit(context.Background(), question); err != nil {
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	st := deps.Ctrl.State()
	if st.Err != "" {
		err := errors.New(st.Err)
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
			return err
		}
		fmt.Fprintln(os.Stderr, askErrorStyle.Render("Something went wrong: ")+st.Err)
		return err
	}

	msg := lastAnswer(st.Messages)
	if msg == nil {
		return fmt.Errorf("no answer received")
	}

	referenced, _ := format.ReferencedCitations(msg.AIResponse, msg.Citations)
	sessionID, _ := deps.Ident.SessionID()

	if args.JSON {
		data := AskData{
			Query:      question,
			Answer:     msg.Content,
			Citations:  referenced,
			FollowUps:  st.FollowUps,
			SessionID:  sessionID,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err := NewJSONResponse("ask", data).Print(); err != nil {
			return err
		}
	} else {
		displayAnswer(msg.Content)

		if !args.NoSources && deps.Cfg.UI.ShowCitations {
			printSources(referenced)
		}
		if deps.Cfg.UI.ShowFollowUps && len(st.FollowUps) > 0 && !args.Quiet {
			printFollowUps(st.FollowUps)
		}
		if args.Verbose {
			fmt.Fprintln(os.Stderr, timingStyle.Render(
				fmt.Sprintf("answered in %s", formatDurationShort(time.Since(start)))))
		}
	}

	// Persist the exchange when requested
	if args.Save {
		userID, _ := deps.Ident.UserID()
		transcript := storage.FromMessages(st.Messages, sessionID, userID)
		id, err := deps.Store.Save(transcript)
		if err != nil {
			return WrapError(err, "failed to save transcript")
		}
		if !args.Quiet && !args.JSON {
			fmt.Fprintf(os.Stderr, "%s Saved transcript %s\n",
				SuccessStyle.Render("[+]"), id)
		}
	}

	return nil
}

// lastAnswer returns the most recent agent message, or nil.
func lastAnswer(messages []model.Message) *model.Message {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleAgent {
			return &messages[i]
		}
	}
	return nil
}

// printSources prints the numbered source list for an answer.
func printSources(citations []model.Citation) {
	if len(citations) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(sourceHeadStyle.Render("Sources:"))
	for i, c := range citations {
		line := fmt.Sprintf("  %d. %s", i+1, c.DisplayTitle())
		if c.ParentID != "" {
			line += "  " + timingStyle.Render(c.ParentID)
		}
		fmt.Println(sourceItemStyle.Render(line))
	}
}

// printFollowUps prints the suggested follow-up questions.
func printFollowUps(followUps []string) {
	fmt.Println()
	fmt.Println(sourceHeadStyle.Render("Suggested follow-ups:"))
	for _, q := range followUps {
		fmt.Println(followUpStyle.Render("  - " + q))
	}
}
