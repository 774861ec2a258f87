// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

/*
Package accounts implements the account lifecycle and authentication core.

An account moves through a small state machine: it is born pending
verification, becomes enabled once its email is proven, may be locked by
repeated authentication failures or an administrator, and may be disabled
administratively. Only enabled accounts authenticate.

Architecture:

  - Service: Registration, verification, login, password reset, and the
    administrative state transitions.
  - Tracker: Failed-attempt counting and the lockout threshold, with optional
    time-based auto-unlock.
  - AccountStore: Persistence contract; the failure counter increments
    atomically in the database so concurrent bad logins are all counted.

Secrets discipline: plaintext passwords travel as []byte and every acquiring
function wipes the buffer before returning.
*/
package accounts

import "time"

// # Account States

// Status is the lifecycle state of an account.
type Status string

const (
	// StatusPending means the email is not yet proven; authentication is refused.
	StatusPending Status = "pending_verification"

	// StatusEnabled is the only state that can authenticate.
	StatusEnabled Status = "enabled"

	// StatusLocked blocks authentication after repeated failures or an
	// administrative lock.
	StatusLocked Status = "locked"

	// StatusDisabled is an administrative shutdown of the account.
	StatusDisabled Status = "disabled"
)

// # Account Entity

// Account is a registered identity.
type Account struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	DisplayName    string     `json:"display_name"`
	Roles          []string   `json:"roles"`
	Status         Status     `json:"status"`
	FailedAttempts int        `json:"-"`
	LastFailedAt   *time.Time `json:"-"`
	LockedAt       *time.Time `json:"locked_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
