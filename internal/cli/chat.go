// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the askdesk CLI.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering and history for better CLI experience
//
// Handles the "askdesk chat" command which provides an interactive REPL
// for conversing with the documentation assistant.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Examples:
//   askdesk chat                Start interactive chat
//   askdesk chat --quiet        Start chat without the welcome banner
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear the conversation
//   /new                Start a new session (rotates session ID)
//   /sources            Show sources for the last answer
//   /feedback up|down [comment]
//                       Rate the last answer
//   /save               Save the conversation as a transcript
//   /session            Show session information
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel the in-flight question
//   Ctrl+D              Exit chat
//
// Typing the number of a suggested follow-up asks that question.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/askdesk/internal/config"
	"github.com/jeranaias/askdesk/internal/format"
	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/storage"
	"github.com/jeranaias/askdesk/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	// Prompt style
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	// Welcome banner style
	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	// Info style
	chatInfoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	// Command style
	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	// Warning style
	chatWarningStyle = lipgloss.NewStyle().
				Foreground(styles.Amber)

	// Session summary header
	summaryHeaderStyle = lipgloss.NewStyle().
				Foreground(styles.Cyan).
				Bold(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	// Input history lives next to the config file
	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}

	cli.LoadHistory()

	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}

	return input, nil
}

// SaveHistory persists input history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	// SECURITY: History may contain sensitive questions; 0600 only
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	// Runtime wiring (controller, client, identity, transcript store)
	Deps *runtimeDeps

	// Display options
	Quiet bool

	// Tracking
	StartTime time.Time
	Questions int

	// Cancel function for the in-flight question
	CancelFunc context.CancelFunc

	// Input history handler
	// USABILITY: Provides readline-like input with history
	InputCLI *ChatCLI
}

// NewChatSession creates a new chat session.
func NewChatSession(args Args) (*ChatSession, error) {
	deps, err := buildRuntime(args)
	if err != nil {
		return nil, err
	}

	return &ChatSession{
		Deps:      deps,
		Quiet:     args.Quiet,
		StartTime: time.Now(),
		InputCLI:  NewChatCLI(),
	}, nil
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command with full interactive support.
func HandleChatCommand(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	session, err := NewChatSession(args)
	if err != nil {
		return err
	}

	if !session.Quiet {
		printWelcome(session)
	}

	// Ensure input history is saved on exit
	defer session.InputCLI.Close()

	// Set up signal handling for graceful Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig == os.Interrupt || sig == syscall.SIGTERM {
				// First Ctrl+C cancels the in-flight question
				if session.CancelFunc != nil {
					session.CancelFunc()
					session.CancelFunc = nil
					fmt.Fprintln(os.Stderr, "\n"+chatWarningStyle.Render("[Cancelled]"))
				}
			}
		}
	}()

	// Main REPL loop using liner for input history
	// USABILITY: Provides readline-like line editing and history navigation
	for {
		input, err := session.InputCLI.ReadInput(promptStyle.Render("askdesk> "))
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C at the prompt - exit gracefully
				fmt.Println()
				return finishChat(session)
			}
			// EOF (Ctrl+D) or other error - exit gracefully
			fmt.Println()
			return finishChat(session)
		}

		input = strings.TrimSpace(input)

		if input == "" {
			continue
		}

		// Handle slash commands
		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, session)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				return finishChat(session)
			}
			continue
		}

		// Handle exit/quit without slash
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return finishChat(session)
		}

		// A bare number selects the matching suggested follow-up
		if question, ok := followUpByNumber(session, input); ok {
			input = question
		}

		if err := processQuestion(session, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		}
	}
}

// followUpByNumber maps a bare number to the corresponding suggested
// follow-up question from the last answer.
func followUpByNumber(session *ChatSession, input string) (string, bool) {
	n, err := strconv.Atoi(input)
	if err != nil {
		return "", false
	}
	followUps := session.Deps.Ctrl.State().FollowUps
	if n < 1 || n > len(followUps) {
		return "", false
	}
	return followUps[n-1], true
}

// =============================================================================
// QUESTION PROCESSING
// =============================================================================

// processQuestion submits a question and renders the answer.
func processQuestion(session *ChatSession, input string) error {
	ctx, cancel := context.WithCancel(context.Background())
	session.CancelFunc = cancel
	defer func() {
		session.CancelFunc = nil
		cancel()
	}()

	start := time.Now()

	if !session.Quiet {
		fmt.Fprintln(os.Stderr, chatInfoStyle.Render("thinking..."))
	}

	if err := session.Deps.Ctrl.Submit(ctx, input); err != nil {
		return err
	}
	session.Questions++

	st := session.Deps.Ctrl.State()
	if st.Err != "" {
		// The failure is already recorded inline in the conversation;
		// surface it on stderr as well.
		fmt.Fprintln(os.Stderr, askErrorStyle.Render("Something went wrong: ")+st.Err)
		return nil
	}

	msg := lastAnswer(st.Messages)
	if msg == nil {
		return fmt.Errorf("no answer received")
	}

	fmt.Println()
	displayAnswer(msg.Content)

	cfg := session.Deps.Cfg
	if cfg.UI.ShowCitations {
		referenced, _ := format.ReferencedCitations(msg.AIResponse, msg.Citations)
		printSources(referenced)
	}
	if cfg.UI.ShowFollowUps && len(st.FollowUps) > 0 && !session.Quiet {
		printNumberedFollowUps(st.FollowUps)
	}

	if !session.Quiet {
		fmt.Fprintln(os.Stderr, timingStyle.Render(
			fmt.Sprintf("[%s]", formatDurationShort(time.Since(start)))))
	}
	fmt.Println()

	return nil
}

// printNumberedFollowUps prints follow-ups with selection numbers.
func printNumberedFollowUps(followUps []string) {
	fmt.Println()
	fmt.Println(sourceHeadStyle.Render("Suggested follow-ups (type a number to ask):"))
	for i, q := range followUps {
		fmt.Println(followUpStyle.Render(fmt.Sprintf("  %d. %s", i+1, q)))
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes an interactive slash command.
// Returns false when the session should end.
func handleSlashCommand(input string, session *ChatSession) (bool, error) {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	rest := parts[1:]

	switch cmd {
	case "/help", "/h":
		printChatHelp()
		return true, nil

	case "/clear", "/c":
		session.Deps.Ctrl.ClearChat()
		fmt.Println(chatInfoStyle.Render("Conversation cleared."))
		return true, nil

	case "/new":
		session.Deps.Ctrl.ClearChat()
		id, err := session.Deps.Ctrl.ResetSession()
		if err != nil {
			return true, err
		}
		fmt.Println(chatInfoStyle.Render("New session: " + id))
		return true, nil

	case "/sources":
		msg := lastAnswer(session.Deps.Ctrl.State().Messages)
		if msg == nil {
			return true, fmt.Errorf("no answer yet")
		}
		referenced, _ := format.ReferencedCitations(msg.AIResponse, msg.Citations)
		printSources(referenced)
		return true, nil

	case "/feedback", "/f":
		return true, submitChatFeedback(session, rest)

	case "/save":
		return true, saveChatTranscript(session, true)

	case "/session":
		printSessionInfo(session)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
}

// submitChatFeedback rates the most recent answer.
// Usage: /feedback up|down [comment]
func submitChatFeedback(session *ChatSession, args []string) error {
	if len(args) == 0 {
		return ErrMissingArgument("rating", "/feedback up|down [comment]")
	}

	var fbType model.FeedbackType
	switch strings.ToLower(args[0]) {
	case "up", "+", "thumbs-up":
		fbType = model.FeedbackThumbsUp
	case "down", "-", "thumbs-down":
		fbType = model.FeedbackThumbsDown
	default:
		return NewValidationError("rating", args[0], "must be 'up' or 'down'")
	}

	msg := lastAnswer(session.Deps.Ctrl.State().Messages)
	if msg == nil {
		return fmt.Errorf("no answer to rate yet")
	}

	comment := strings.Join(args[1:], " ")
	if err := session.Deps.Ctrl.SubmitFeedback(context.Background(), msg.ID, fbType, comment); err != nil {
		return WrapError(err, "feedback submission failed")
	}

	fmt.Println(commandStyle.Render("Feedback submitted. Thank you!"))
	return nil
}

// saveChatTranscript persists the current conversation.
// When announce is true the transcript ID is printed.
func saveChatTranscript(session *ChatSession, announce bool) error {
	st := session.Deps.Ctrl.State()
	if len(st.Messages) == 0 {
		return fmt.Errorf("nothing to save yet")
	}

	sessionID, _ := session.Deps.Ident.SessionID()
	userID, _ := session.Deps.Ident.UserID()
	transcript := storage.FromMessages(st.Messages, sessionID, userID)

	id, err := session.Deps.Store.Save(transcript)
	if err != nil {
		return WrapError(err, "failed to save transcript")
	}

	if announce {
		fmt.Println(commandStyle.Render("Saved transcript " + id))
	}
	return nil
}

// printSessionInfo shows the identity values for the running session.
func printSessionInfo(session *ChatSession) {
	sessionID, _ := session.Deps.Ident.SessionID()
	userID, _ := session.Deps.Ident.UserID()

	fmt.Println()
	fmt.Printf("  %s%s\n", RenderLabel("Session ID:"), sessionID)
	fmt.Printf("  %s%s\n", RenderLabel("User ID:"), userID)
	if loginID := session.Deps.Ident.LoginSessionID(); loginID != "" {
		fmt.Printf("  %s%s\n", RenderLabel("Login session:"), loginID)
	}
	fmt.Printf("  %s%s\n", RenderLabel("User name:"), session.Deps.Ident.UserName())
	fmt.Println()
}

// printChatHelp shows available interactive commands.
func printChatHelp() {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Interactive commands:"))
	help := [][2]string{
		{"/help, /h", "Show this help"},
		{"/clear, /c", "Clear the conversation"},
		{"/new", "Start a new session (rotates session ID)"},
		{"/sources", "Show sources for the last answer"},
		{"/feedback up|down [comment]", "Rate the last answer"},
		{"/save", "Save the conversation as a transcript"},
		{"/session", "Show session information"},
		{"/quit, /q", "Exit chat"},
	}
	for _, h := range help {
		fmt.Printf("  %s %s\n",
			commandStyle.Render(fmt.Sprintf("%-28s", h[0])),
			chatInfoStyle.Render(h[1]))
	}
	fmt.Println()
	fmt.Println(chatInfoStyle.Render("  Typing the number of a suggested follow-up asks that question."))
	fmt.Println()
}

// =============================================================================
// WELCOME / EXIT
// =============================================================================

// printWelcome shows the session banner.
func printWelcome(session *ChatSession) {
	auth := session.Deps.Ident.Auth()

	fmt.Println()
	fmt.Println(welcomeStyle.Render("askdesk " + Version))
	if auth.Name != "" {
		fmt.Println(chatInfoStyle.Render("Logged in as " + auth.Name))
	} else {
		fmt.Println(chatWarningStyle.Render("Not logged in. Run 'askdesk login' to authenticate."))
	}
	fmt.Println(chatInfoStyle.Render("Type a question, or /help for commands."))

	if !session.Quiet {
		fmt.Println()
		fmt.Println(chatInfoStyle.Render("Some things to ask:"))
		for _, prompt := range model.SamplePrompts {
			fmt.Println(chatInfoStyle.Render("  - " + prompt))
		}
	}
	fmt.Println()
}

// finishChat prints the exit summary and autosaves the conversation.
func finishChat(session *ChatSession) error {
	// Autosave non-empty conversations so they show up in history
	if session.Questions > 0 {
		if err := saveChatTranscript(session, false); err == nil && !session.Quiet {
			fmt.Println(chatInfoStyle.Render("Conversation saved to history."))
		}
	}

	if !session.Quiet {
		printExitSummary(session)
	}
	return nil
}

// printExitSummary shows session statistics on exit.
func printExitSummary(session *ChatSession) {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session summary"))
	fmt.Printf("  %s%d\n", RenderLabel("Questions:"), session.Questions)
	fmt.Printf("  %s%s\n", RenderLabel("Duration:"), formatDuration(time.Since(session.StartTime)))
	fmt.Println()
	fmt.Println(chatInfoStyle.Render("Goodbye!"))
}
