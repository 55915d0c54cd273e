// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Transcript history command handler for the askdesk CLI.
//
// Command: history (alias: hist)
// Subcommands:
//   list                List saved transcripts (default)
//   show <n|id>         Show a transcript
//   search <text>       Search transcripts by content
//   export <n|id>       Export a transcript (--format html|markdown|json)
//   delete <n|id>       Delete a transcript (--confirm to skip prompt)
//   clear               Delete all transcripts (--confirm to skip prompt)
//
// Transcripts are referenced by their 1-based position in "history list"
// or by their full ID.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"fmt"

	"github.com/jeranaias/askdesk/internal/export"
	"github.com/jeranaias/askdesk/internal/format"
	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/storage"
)

// HandleHistory handles the "history" command.
func HandleHistory(args Args) error {
	deps, err := buildRuntime(args)
	if err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list", "ls", "l":
		return handleHistoryList(deps, args)
	case "show":
		return handleHistoryShow(deps, args, parser)
	case "search":
		return handleHistorySearch(deps, args, parser)
	case "export":
		return handleHistoryExport(deps, args, parser)
	case "delete", "rm":
		return handleHistoryDelete(deps, args, parser)
	case "clear":
		return handleHistoryClear(deps, args, parser)
	default:
		return NewValidationErrorWithExample(
			"subcommand",
			parser.Subcommand(),
			"unknown history subcommand",
			"askdesk history list | show <n|id> | search <text> | export <n|id> | delete <n|id> | clear",
		)
	}
}

// handleHistoryList lists saved transcripts.
func handleHistoryList(deps *runtimeDeps, args Args) error {
	metas, err := deps.Store.List()
	if err != nil {
		return NewCommandError("history", "list", "failed to list transcripts", err)
	}

	if args.JSON {
		return NewJSONResponse("history", metas).Print()
	}

	fmt.Println(storage.FormatTranscriptList(metas))
	return nil
}

// handleHistoryShow displays a single transcript.
func handleHistoryShow(deps *runtimeDeps, args Args, parser *ArgParser) error {
	t, err := resolveTranscript(deps.Store, parser.Positional(1))
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("history", t).Print()
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render(t.Summary))
	fmt.Println(DimStyle.Render(fmt.Sprintf("  %s | %d messages | %s",
		t.ID, len(t.Messages), t.CreatedAt.Format("2006-01-02 15:04"))))
	fmt.Println()

	for _, msg := range t.Messages {
		role := model.Role(msg.Role)
		fmt.Println(SectionStyle.Render(role.DisplayName() + ":"))
		if role == model.RoleAgent {
			displayAnswer(format.Clean(msg.Content))
			if len(msg.Citations) > 0 {
				referenced, _ := format.ReferencedCitations(msg.AIResponse, msg.Citations)
				printSources(referenced)
			}
		} else {
			fmt.Println(WrapText(msg.Content, 0))
		}
		fmt.Println()
	}
	return nil
}

// handleHistorySearch searches transcript contents.
func handleHistorySearch(deps *runtimeDeps, args Args, parser *ArgParser) error {
	query := JoinPositionalArgs(parser, 1)
	if query == "" {
		return ErrMissingArgument("search text", "askdesk history search vpn setup")
	}

	metas, err := deps.Store.SearchMessages(query)
	if err != nil {
		return NewCommandError("history", "search", "search failed", err)
	}

	if args.JSON {
		return NewJSONResponse("history", metas).Print()
	}

	if len(metas) == 0 {
		fmt.Println(DimStyle.Render("No transcripts match: " + query))
		return nil
	}
	fmt.Println(storage.FormatTranscriptList(metas))
	return nil
}

// handleHistoryExport writes a transcript to a file in the chosen format.
func handleHistoryExport(deps *runtimeDeps, args Args, parser *ArgParser) error {
	t, err := resolveTranscript(deps.Store, parser.Positional(1))
	if err != nil {
		return err
	}

	formatName := parser.FlagOrDefault("format", "markdown")
	opts := export.DefaultOptions()
	opts.OutputDir = parser.FlagOrDefault("output", ".")

	exporter, err := export.ExporterFor(formatName, opts)
	if err != nil {
		return ErrUnsupportedFormat(formatName, []string{"html", "markdown", "json"})
	}

	path, err := export.ExportToFile(t, exporter, opts)
	if err != nil {
		return NewCommandError("history", "export", "export failed", err)
	}

	if args.JSON {
		return NewJSONResponse("history", map[string]string{"path": path}).Print()
	}
	fmt.Printf("%s Exported to %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}

// handleHistoryDelete removes a single transcript.
func handleHistoryDelete(deps *runtimeDeps, args Args, parser *ArgParser) error {
	t, err := resolveTranscript(deps.Store, parser.Positional(1))
	if err != nil {
		return err
	}

	confirmed, err := RequireConfirmation(
		parser.BoolFlag("confirm"),
		fmt.Sprintf("delete transcript %q", t.Summary),
		args.JSON,
	)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println(DimStyle.Render("Cancelled."))
		return nil
	}

	if err := deps.Store.Delete(t.ID); err != nil {
		return NewCommandError("history", "delete", "failed to delete transcript", err)
	}

	if args.JSON {
		return NewJSONResponse("history", map[string]string{"deleted": t.ID}).Print()
	}
	fmt.Printf("%s Deleted %s\n", SuccessStyle.Render("[OK]"), t.ID)
	return nil
}

// handleHistoryClear removes all transcripts.
func handleHistoryClear(deps *runtimeDeps, args Args, parser *ArgParser) error {
	metas, err := deps.Store.List()
	if err != nil {
		return NewCommandError("history", "clear", "failed to list transcripts", err)
	}
	if len(metas) == 0 {
		fmt.Println(DimStyle.Render("No transcripts to delete."))
		return nil
	}

	confirmed, err := RequireConfirmation(
		parser.BoolFlag("confirm"),
		fmt.Sprintf("delete all %d transcripts", len(metas)),
		args.JSON,
	)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println(DimStyle.Render("Cancelled."))
		return nil
	}

	if err := deps.Store.Clear(); err != nil {
		return NewCommandError("history", "clear", "failed to clear transcripts", err)
	}

	if args.JSON {
		return NewJSONResponse("history", map[string]int{"deleted": len(metas)}).Print()
	}
	fmt.Printf("%s Deleted %d transcripts\n", SuccessStyle.Render("[OK]"), len(metas))
	return nil
}
