// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

// =============================================================================
// STORAGE KEYS
// =============================================================================

// Storage keys. Session scope holds only the session ID; everything else is
// durable.
const (
	KeySessionID      = "session_id"
	KeyUserID         = "user_id"
	KeyAuthToken      = "token"
	KeyUserName       = "name"
	KeyUserGroup      = "group"
	KeyLoginSessionID = "login_session_id"
)

// =============================================================================
// PROVIDER
// =============================================================================

// Provider supplies the three identity scopes the chat flows need:
//
//   - session ID: ephemeral, one per session, in the session store
//   - user ID: durable, one per profile, in the durable store
//   - login session ID: minted by the service after login, nullable
//
// It owns generation, caching and rotation; callers hold only the resolved
// values.
type Provider struct {
	durable Store
	session Store

	now func() time.Time
}

// NewProvider creates a provider over a durable and a session store.
func NewProvider(durable, session Store) *Provider {
	return &Provider{
		durable: durable,
		session: session,
		now:     time.Now,
	}
}

// =============================================================================
// SESSION ID
// =============================================================================

// SessionID returns the current session ID, creating and persisting one if
// none exists.
func (p *Provider) SessionID() (string, error) {
	return p.getOrCreate(p.session, KeySessionID, p.newSessionID)
}

// RotateSessionID generates, persists and returns a fresh session ID.
func (p *Provider) RotateSessionID() (string, error) {
	id := p.newSessionID()
	if err := p.session.Set(KeySessionID, id); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Provider) newSessionID() string {
	return strconv.FormatInt(p.now().UnixMilli(), 10)
}

// =============================================================================
// USER ID
// =============================================================================

// UserID returns the durable user ID, creating and persisting one if none
// exists.
func (p *Provider) UserID() (string, error) {
	return p.getOrCreate(p.durable, KeyUserID, p.newUserID)
}

// RotateUserID generates, persists and returns a fresh user ID.
func (p *Provider) RotateUserID() (string, error) {
	id := p.newUserID()
	if err := p.durable.Set(KeyUserID, id); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Provider) newUserID() string {
	return "user_" + strconv.FormatInt(p.now().UnixMilli(), 10) + randomSuffix(6)
}

// =============================================================================
// LOGIN SESSION ID
// =============================================================================

// LoginSessionID returns the login session ID, or "" when the post-login
// logging call has not set one yet.
func (p *Provider) LoginSessionID() string {
	value, _, err := p.durable.Get(KeyLoginSessionID)
	if err != nil {
		return ""
	}
	return value
}

// SetLoginSessionID persists the login session ID obtained after login.
func (p *Provider) SetLoginSessionID(id string) error {
	return p.durable.Set(KeyLoginSessionID, id)
}

// =============================================================================
// AUTH STATE
// =============================================================================

// AuthState is the persisted authentication state.
type AuthState struct {
	Token string
	Name  string
	Group string
}

// StoreAuth persists the auth token and user identity after login.
func (p *Provider) StoreAuth(auth AuthState) error {
	if err := p.durable.Set(KeyAuthToken, auth.Token); err != nil {
		return err
	}
	if err := p.durable.Set(KeyUserName, auth.Name); err != nil {
		return err
	}
	return p.durable.Set(KeyUserGroup, auth.Group)
}

// Auth returns the persisted authentication state; fields are empty when not
// logged in.
func (p *Provider) Auth() AuthState {
	token, _, _ := p.durable.Get(KeyAuthToken)
	name, _, _ := p.durable.Get(KeyUserName)
	group, _, _ := p.durable.Get(KeyUserGroup)
	return AuthState{Token: token, Name: name, Group: group}
}

// UserName returns the authenticated user's name, falling back to the user
// ID when no login has stored one.
func (p *Provider) UserName() string {
	name, ok, err := p.durable.Get(KeyUserName)
	if err == nil && ok && name != "" {
		return name
	}
	id, err := p.UserID()
	if err != nil {
		return ""
	}
	return id
}

// ClearAuth removes the token, user name, group and login session ID.
// User and session IDs survive logout.
func (p *Provider) ClearAuth() error {
	for _, key := range []string{KeyAuthToken, KeyUserName, KeyUserGroup, KeyLoginSessionID} {
		if err := p.durable.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (p *Provider) getOrCreate(store Store, key string, generate func() string) (string, error) {
	value, ok, err := store.Get(key)
	if err != nil {
		return "", err
	}
	if ok && value != "" {
		return value, nil
	}
	value = generate()
	if err := store.Set(key, value); err != nil {
		return "", err
	}
	return value, nil
}

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// randomSuffix returns n random base36 characters.
func randomSuffix(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = '0'
			continue
		}
		out[i] = suffixAlphabet[idx.Int64()]
	}
	return string(out)
}
