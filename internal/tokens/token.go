// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

/*
Package tokens implements the single-use security token ledger.

A token is an opaque random value bound to one account and one purpose. It can
be consumed exactly once, even under concurrent redemption attempts, and is
dead the moment its expiry passes regardless of whether a sweep has physically
removed it yet.

Architecture:

  - Ledger: Issue/Consume semantics with a strict failure precedence.
  - TokenStore: Persistence contract with an atomic consume primitive.
  - Sweeper: Batched physical removal of expired rows.

Two store implementations ship: PostgreSQL (default, durable) and Redis
(volatile, for deployments that keep tokens out of the primary database).
*/
package tokens

import "time"

// # Token Purposes

// Purpose scopes a token to exactly one workflow.
type Purpose string

const (
	// PurposeVerify activates a pending account.
	PurposeVerify Purpose = "verify"

	// PurposeResetPassword authorizes a password replacement.
	PurposeResetPassword Purpose = "reset_password"
)

// Valid reports whether the purpose is one of the known workflow scopes.
func (purpose Purpose) Valid() bool {
	return purpose == PurposeVerify || purpose == PurposeResetPassword
}

// # Token Entity

// AuthToken is a single-use credential bound to an account and a purpose.
//
// Value doubles as the primary key; it is a high-entropy random string, never
// a sequential ID.
type AuthToken struct {
	Value      string     `json:"value"`
	AccountID  string     `json:"account_id"`
	Purpose    Purpose    `json:"purpose"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}

// Expired reports whether the token's lifetime has passed at the given instant.
// A token expiring exactly at now is still live.
func (token *AuthToken) Expired(now time.Time) bool {
	return now.After(token.ExpiresAt)
}

// Consumed reports whether the token has already been redeemed.
func (token *AuthToken) Consumed() bool {
	return token.ConsumedAt != nil
}
