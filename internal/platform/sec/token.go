// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package sec

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// # Opaque Token Values

// GenerateSecureToken produces an unguessable, URL-safe opaque token value
// of the given byte length.
//
// # Usage
//
// This is the value generator behind every single-use token (email
// verification, password reset). The output carries no structure: all
// lifecycle semantics (purpose, expiry, consumption) live in the token
// ledger, never in the value itself.
func GenerateSecureToken(byteLength int) (string, error) {
	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
