// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity manages the session, user and login identity scopes.
//
// Three independent scopes exist: the session ID (ephemeral, one per chat
// session), the user ID (durable, one per profile) and the login session ID
// (minted by the service after an authenticated login). The Provider hands
// out and rotates these values over a pluggable key-value Store port, with
// a JSON FileStore for real use and a MemStore for the ephemeral scope and
// for tests.
//
// The package also persists the delegated-auth state (token, user name,
// group) and clears it in full on logout, and offers an unverified JWT
// expiry check for the stored token.
package identity
