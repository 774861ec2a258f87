// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

/*
Package factors implements the credential inventory for accounts.

A factor is one way an account can authenticate: the password slot or a
registered passkey. The inventory enforces per-account credential uniqueness
and guards against removing an enabled account's last remaining factor.

Architecture:

  - Service: Label validation, duplicate detection, last-factor protection.
  - FactorStore: Persistence contract; removal guarding runs inside a
    database transaction so concurrent removals cannot strand an account.
  - AccountGate: Narrow read-only view of account state, implemented by the
    accounts service, used only for the disabled-account exemption.
*/
package factors

import "time"

// # Factor Kinds

// Kind identifies the authentication mechanism a factor represents.
type Kind string

const (
	// KindPassword is the single password slot of an account.
	KindPassword Kind = "password"

	// KindPasskey is a WebAuthn credential.
	KindPasskey Kind = "passkey"
)

// Valid reports whether the kind is a known mechanism.
func (kind Kind) Valid() bool {
	return kind == KindPassword || kind == KindPasskey
}

// # Factor Entity

// Factor is one registered authentication credential.
//
// CredentialID is the mechanism-level identifier: the raw WebAuthn credential
// ID for passkeys, or the fixed password slot ID. It is unique per account.
type Factor struct {
	ID             string     `json:"id"`
	AccountID      string     `json:"account_id"`
	Kind           Kind       `json:"kind"`
	CredentialID   string     `json:"credential_id"`
	Label          string     `json:"label"`
	SecretHash     string     `json:"-"`
	SignCount      int64      `json:"sign_count,omitempty"`
	BackupEligible *bool      `json:"backup_eligible,omitempty"`
	BackupState    *bool      `json:"backup_state,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
}
