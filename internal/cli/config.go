// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration command handler for the askdesk CLI.
//
// Command: config
// Subcommands:
//   show              Show current configuration
//   get <key>         Show a single value
//   set <key> <value> Change a value and save
//   path              Show config file location
//
// Keys use dot notation, e.g. api.base_url, ui.render_markdown.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"fmt"

	"github.com/jeranaias/askdesk/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(args)
	case "get":
		return handleConfigGet(args)
	case "set":
		return handleConfigSet(args)
	case "path":
		return handleConfigPath(args)
	default:
		return NewValidationErrorWithExample(
			"subcommand",
			args.Subcommand,
			"unknown config subcommand",
			"askdesk config show | get <key> | set <key> <value> | path",
		)
	}
}

// handleConfigShow displays all configuration values.
func handleConfigShow(args Args) error {
	cfg := config.Global()

	if args.JSON {
		values := make(map[string]interface{})
		for _, key := range config.GetAllKeys() {
			if v, err := cfg.Get(key); err == nil {
				values[key] = v
			}
		}
		return NewJSONResponse("config", values).Print()
	}

	path, _ := config.ConfigPath()

	fmt.Println()
	fmt.Println(TitleStyle.Render("askdesk configuration"))
	for _, key := range config.GetAllKeys() {
		v, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Printf("  %s%v\n", RenderLabel(key+":", 28), v)
	}
	fmt.Println()
	fmt.Println(DimStyle.Render("  Config file: " + path))
	fmt.Println()
	return nil
}

// handleConfigGet displays a single configuration value.
func handleConfigGet(args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "askdesk config get api.base_url")
	}

	cfg := config.Global()
	v, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return ErrNotFound("config key", args.ConfigKey)
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]interface{}{args.ConfigKey: v}).Print()
	}
	fmt.Printf("%v\n", v)
	return nil
}

// handleConfigSet changes a configuration value and saves the file.
func handleConfigSet(args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("key and value", "askdesk config set ui.word_wrap 100")
	}

	cfg := config.Global()
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return NewCommandError("config", "set", "invalid key or value", err)
	}

	// Validate the resulting configuration before persisting it
	if err := cfg.Validate(); err != nil {
		return NewCommandError("config", "set", "resulting configuration is invalid", err)
	}

	if err := config.Save(cfg); err != nil {
		return NewCommandError("config", "set", "failed to save configuration", err)
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]string{args.ConfigKey: args.ConfigVal}).Print()
	}
	fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[OK]"), args.ConfigKey, args.ConfigVal)
	return nil
}

// handleConfigPath shows where the config file lives.
func handleConfigPath(args Args) error {
	path, err := config.ConfigPath()
	if err != nil {
		return WrapError(err, "failed to resolve config path")
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]string{"path": path}).Print()
	}
	fmt.Println(path)
	return nil
}
