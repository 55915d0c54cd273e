// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth.go - Login, logout and status command handlers for the askdesk CLI.
//
// Login exchanges a SAML token for the user's identity via the service's
// token-extract endpoint, stores the auth state, and records the login with
// the service to obtain a login session ID. Logout clears the stored auth
// state; session and user IDs survive logout.
//
// Examples:
//   askdesk login --token "$SAML_TOKEN"
//   echo "$SAML_TOKEN" | askdesk login
//   askdesk logout
//   askdesk status --json
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/askdesk/internal/config"
	"github.com/jeranaias/askdesk/internal/identity"
)

// =============================================================================
// LOGIN
// =============================================================================

// HandleLogin handles the "login" command.
func HandleLogin(args Args) error {
	token := args.Token
	if token == "" {
		token = readStdinPipe()
	}
	if token == "" {
		if !CanPrompt() {
			return ErrMissingArgument("token", `askdesk login --token "$SAML_TOKEN"`)
		}
		token = promptInput("SAML token: ")
	}
	if token == "" {
		return ErrMissingArgument("token", `askdesk login --token "$SAML_TOKEN"`)
	}

	deps, err := buildRuntime(args)
	if err != nil {
		return err
	}

	ctx := context.Background()

	userData, err := deps.Client.ExtractToken(ctx, token)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("login", err).Print()
		}
		return WrapError(err, "login failed")
	}

	if err := deps.Ident.StoreAuth(identity.AuthState{
		Token: token,
		Name:  userData.Name,
		Group: userData.Group,
	}); err != nil {
		return WrapError(err, "failed to store auth state")
	}
	deps.Client.SetAuthToken(token)

	// Record the login; the service mints the login session ID that the
	// feedback and chat-log flows attach to their records.
	loginSessionID := ""
	if resp, err := deps.Client.LogLogin(ctx, userData.Name); err == nil {
		loginSessionID = resp.SessionID
		if err := deps.Ident.SetLoginSessionID(loginSessionID); err != nil && args.Verbose {
			fmt.Fprintf(os.Stderr, "warning: failed to persist login session ID: %v\n", err)
		}
	} else if args.Verbose {
		fmt.Fprintf(os.Stderr, "warning: login log failed: %v\n", err)
	}

	if args.JSON {
		return NewJSONResponse("login", LoginData{
			UserName:       userData.Name,
			Group:          userData.Group,
			LoginSessionID: loginSessionID,
		}).Print()
	}

	fmt.Printf("%s Logged in as %s\n", SuccessStyle.Render("[OK]"), userData.Name)
	if userData.Group != "" && !args.Quiet {
		fmt.Println(DimStyle.Render("  Group: " + userData.Group))
	}
	return nil
}

// =============================================================================
// LOGOUT
// =============================================================================

// HandleLogout handles the "logout" command.
func HandleLogout(args Args) error {
	deps, err := buildRuntime(args)
	if err != nil {
		return err
	}

	auth := deps.Ident.Auth()
	if auth.Token == "" && auth.Name == "" {
		fmt.Println(DimStyle.Render("Not logged in."))
		return nil
	}

	if err := deps.Ident.ClearAuth(); err != nil {
		return WrapError(err, "logout failed")
	}

	if args.JSON {
		return NewJSONResponse("logout", map[string]bool{"logged_out": true}).Print()
	}
	fmt.Printf("%s Logged out\n", SuccessStyle.Render("[OK]"))
	return nil
}

// =============================================================================
// STATUS
// =============================================================================

// HandleStatus handles the "status" command.
func HandleStatus(args Args) error {
	deps, err := buildRuntime(args)
	if err != nil {
		return err
	}

	configPath, _ := config.ConfigPath()
	dataDir, _ := deps.Cfg.DataDir()
	auth := deps.Ident.Auth()
	sessionID, _ := deps.Ident.SessionID()
	userID, _ := deps.Ident.UserID()

	transcripts := 0
	if metas, err := deps.Store.List(); err == nil {
		transcripts = len(metas)
	}

	data := StatusData{
		Version: Version,
		Service: StatusServiceInfo{
			BaseURL:     deps.Cfg.API.BaseURL,
			TimeoutSecs: deps.Cfg.API.TimeoutSecs,
			ConfigPath:  configPath,
		},
		Auth: StatusAuthInfo{
			LoggedIn:   auth.Token != "",
			UserName:   auth.Name,
			Group:      auth.Group,
			TokenValid: auth.Token != "" && identity.TokenValid(auth.Token),
		},
		Session: StatusSessionInfo{
			SessionID:      sessionID,
			UserID:         userID,
			LoginSessionID: deps.Ident.LoginSessionID(),
		},
		Storage: StatusStorageInfo{
			DataDir:     dataDir,
			Transcripts: transcripts,
		},
	}

	if args.JSON {
		return NewJSONResponse("status", data).Print()
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("askdesk status"))

	fmt.Println(SectionStyle.Render("Service"))
	fmt.Printf("  %s%s\n", RenderLabel("Base URL:"), data.Service.BaseURL)
	fmt.Printf("  %s%ds\n", RenderLabel("Timeout:"), data.Service.TimeoutSecs)
	fmt.Printf("  %s%s\n", RenderLabel("Config:"), data.Service.ConfigPath)

	fmt.Println(SectionStyle.Render("Authentication"))
	if data.Auth.LoggedIn {
		state := "expired"
		if data.Auth.TokenValid {
			state = "valid"
		}
		fmt.Printf("  %s%s (%s token)\n", RenderLabel("Logged in as:"), data.Auth.UserName, state)
		if data.Auth.Group != "" {
			fmt.Printf("  %s%s\n", RenderLabel("Group:"), data.Auth.Group)
		}
	} else {
		fmt.Printf("  %s%s\n", RenderLabel("Logged in:"), DimStyle.Render("no"))
	}

	fmt.Println(SectionStyle.Render("Session"))
	fmt.Printf("  %s%s\n", RenderLabel("Session ID:"), data.Session.SessionID)
	fmt.Printf("  %s%s\n", RenderLabel("User ID:"), data.Session.UserID)
	if data.Session.LoginSessionID != "" {
		fmt.Printf("  %s%s\n", RenderLabel("Login session:"), data.Session.LoginSessionID)
	}

	fmt.Println(SectionStyle.Render("Storage"))
	fmt.Printf("  %s%s\n", RenderLabel("Data dir:"), data.Storage.DataDir)
	fmt.Printf("  %s%d\n", RenderLabel("Transcripts:"), data.Storage.Transcripts)
	fmt.Println()

	return nil
}
