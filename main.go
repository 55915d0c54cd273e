// askdesk - A terminal client for the AskDesk documentation QA service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/jeranaias/askdesk/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdLogin:
		exitOnError(cli.HandleLogin(args), args)
	case cli.CmdLogout:
		exitOnError(cli.HandleLogout(args), args)
	case cli.CmdStatus:
		exitOnError(cli.HandleStatus(args), args)
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args), args)
	case cli.CmdSession:
		exitOnError(cli.HandleSession(args), args)
	case cli.CmdHistory:
		exitOnError(cli.HandleHistory(args), args)
	case cli.CmdFeedback:
		exitOnError(cli.HandleFeedback(args), args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		cli.PrintUsage()
		os.Exit(cli.ExitUsageError)
	}
}

// exitOnError reports a command error and exits with its category code.
func exitOnError(err error, args cli.Args) {
	if err == nil {
		return
	}
	if args.JSON {
		cli.DisplayErrorJSON(err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
