// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line interface entry points for askdesk.
//
// CLI: Comprehensive help and examples for all commands
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.9.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents a CLI command.
type Command int

const (
	// CmdChat starts the interactive chat REPL (default).
	CmdChat Command = iota
	// CmdAsk sends a single question and prints the answer.
	CmdAsk
	// CmdLogin authenticates against the QA service.
	CmdLogin
	// CmdLogout clears stored credentials.
	CmdLogout
	// CmdStatus shows service and session status.
	CmdStatus
	// CmdConfig shows or modifies configuration.
	CmdConfig
	// CmdSession shows or rotates identity values.
	CmdSession
	// CmdHistory lists, searches and exports saved transcripts.
	CmdHistory
	// CmdFeedback submits feedback on an answer in a saved transcript.
	CmdFeedback
	// CmdVersion shows version information.
	CmdVersion
	// CmdHelp shows usage information.
	CmdHelp
)

// Args holds parsed command-line arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	APIURL  string // --api override for the service base URL

	// Command-specific values
	Query      string // Question text for ask
	Subcommand string // Subcommand for config/session/history
	ConfigKey  string
	ConfigVal  string
	Token      string // --token for login
	Save       bool   // --save for ask
	NoSources  bool   // --no-sources for ask/chat

	// Options holds named option values for subcommand parsing.
	Options map[string]string

	// Raw contains unparsed remaining arguments.
	Raw []string
}

// usageText is the main help text.
const usageText = `askdesk - terminal client for the AskDesk documentation assistant

Usage: askdesk [command] [options]

Commands:
  askdesk                       Start interactive chat (default)
  askdesk chat                  Start interactive chat
  askdesk ask <question>        Ask a single question and exit
    --save                      Save the exchange as a transcript
    --no-sources                Hide the source list
  askdesk login [--token T]     Authenticate with a SAML token
  askdesk logout                Clear stored credentials
  askdesk status                Show service, auth and session status (alias: s)
    --json                      Output in JSON format

Configuration:
  askdesk config show           Show current configuration
  askdesk config get <key>      Show a single value
  askdesk config set <key> <value>
                                Change a value and save
  askdesk config path           Show config file location

Identity:
  askdesk session show          Show session, user and login session IDs
  askdesk session reset         Rotate the chat session ID
  askdesk session reset-user    Rotate the durable user ID

Transcripts:
  askdesk history list          List saved transcripts
  askdesk history show <n|id>   Show a transcript
  askdesk history search <text> Search transcripts
  askdesk history export <n|id> Export a transcript
    --format FORMAT             html, markdown or json (default: markdown)
    --output DIR                Output directory (default: current)
  askdesk history delete <n|id> Delete a transcript
    --confirm                   Skip confirmation prompt
  askdesk history clear         Delete all transcripts
    --confirm                   Skip confirmation prompt

Feedback:
  askdesk feedback <n|id> <msg> up|down [comment]
                                Rate answer <msg> of a saved transcript

Interactive Commands (during chat):
  /help, /h           Show available commands
  /clear, /c          Clear the conversation
  /new                Start a new session (rotates session ID)
  /sources            Show sources for the last answer
  /feedback up|down [comment]
                      Rate the last answer
  /save               Save the conversation as a transcript
  /session            Show session information
  /quit, /q           Exit chat
  Ctrl+C              Cancel the in-flight question
  Ctrl+D              Exit chat

Global Flags:
  --api URL       Override the QA service base URL
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --json          Output in JSON format

Examples:
  askdesk                                  Start interactive chat
  askdesk ask "How do I request leave?"    One-shot question
  askdesk ask --save "What is the travel policy?"
  echo "What is the VPN setup?" | askdesk ask
  askdesk login --token "$SAML_TOKEN"
  askdesk config set ui.render_markdown false
  askdesk history export 1 --format html

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("askdesk version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(args)

	// If no remaining args, default to interactive chat
	if len(remaining) == 0 {
		return CmdChat, parsedArgs
	}

	// Check first argument for command
	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "chat":
		return CmdChat, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "login":
		parseLoginArgs(&parsedArgs, remaining)
		return CmdLogin, parsedArgs

	case "logout":
		return CmdLogout, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "session", "sessions":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdSession, parsedArgs

	case "history", "hist":
		// Detailed argument parsing is done in history_cmd.go
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdHistory, parsedArgs

	case "feedback":
		// Detailed argument parsing is done in feedback_cmd.go
		return CmdFeedback, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command - treat the whole line as a one-shot question
		parseAskArgs(&parsedArgs, append([]string{cmd}, remaining...))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	parsedArgs := Args{
		Options: make(map[string]string),
	}

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--api":
			if i+1 < len(args) {
				i++
				parsedArgs.APIURL = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--api=") {
				parsedArgs.APIURL = strings.TrimPrefix(arg, "--api=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "--save":
			args.Save = true
		case "--no-sources":
			args.NoSources = true
		default:
			if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
	}

	args.Query = strings.Join(query, " ")
}

// parseLoginArgs parses login command specific arguments.
func parseLoginArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-t", "--token":
			if i+1 < len(remaining) {
				i++
				args.Token = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--token=") {
				args.Token = strings.TrimPrefix(arg, "--token=")
			}
		}
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// ERROR HANDLING: Errors must not be silently ignored

// HandleAsk handles the "ask" command.
// This delegates to the full implementation in ask.go.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleChat handles the "chat" command.
// This delegates to the full implementation in chat.go.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		resp := NewJSONResponse("version", data)
		resp.Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
