// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// =============================================================================
// TOKEN VALIDITY
// =============================================================================

// jwtClaims is the slice of the JWT payload the validity check needs.
type jwtClaims struct {
	Exp int64 `json:"exp"`
}

// TokenValid reports whether a JWT carries an unexpired exp claim. The
// signature is NOT verified; validation belongs to the SAML service that
// issued the token. This check only avoids sending a token that is already
// known to be expired or unparseable.
func TokenValid(token string) bool {
	return tokenValidAt(token, time.Now())
}

func tokenValidAt(token string, now time.Time) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	var claims jwtClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return false
	}
	if claims.Exp == 0 {
		return false
	}
	return claims.Exp > now.Unix()
}
