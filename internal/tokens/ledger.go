// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package tokens

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sentrahq/sentra/internal/platform/apperr"
	"github.com/sentrahq/sentra/internal/platform/clock"
	"github.com/sentrahq/sentra/internal/platform/constants"
	"github.com/sentrahq/sentra/internal/platform/sec"
)

// # Ledger Service

// Ledger issues and redeems single-use tokens.
type Ledger struct {
	store  TokenStore
	clock  clock.Clock
	logger *slog.Logger
}

// NewLedger constructs a token [Ledger].
func NewLedger(store TokenStore, clk clock.Clock, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

/*
Issue mints a fresh token for the account and purpose.

Description: Generates a high-entropy opaque value, stamps the issue and
expiry instants from the ledger clock, and persists the token unconsumed.
Issuing never invalidates earlier tokens; several live tokens may exist for
the same account and purpose at once.

Parameters:
  - context: context.Context
  - accountID: string
  - purpose: Purpose
  - ttl: time.Duration (must be positive)

Returns:
  - *AuthToken: The persisted token, including its opaque value
  - error: Validation or persistence failures
*/
func (ledger *Ledger) Issue(context context.Context, accountID string, purpose Purpose, ttl time.Duration) (*AuthToken, error) {

	// Reject unknown purposes before touching storage
	if !purpose.Valid() {
		return nil, fmt.Errorf("token_ledger_unknown_purpose: %q", purpose)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token_ledger_nonpositive_ttl: %s", ttl)
	}

	value, err := sec.GenerateSecureToken(constants.TokenValueLength)
	if err != nil {
		return nil, fmt.Errorf("token_ledger_generate_failed: %w", err)
	}

	now := ledger.clock.Now()
	token := &AuthToken{
		Value:     value,
		AccountID: accountID,
		Purpose:   purpose,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	if err := ledger.store.Insert(context, token); err != nil {
		return nil, fmt.Errorf("token_ledger_insert_failed: %w", err)
	}

	ledger.logger.InfoContext(context, "token_issued",
		slog.String("account_id", accountID),
		slog.String("purpose", string(purpose)),
		slog.Time("expires_at", token.ExpiresAt),
	)

	return token, nil
}

/*
Consume redeems a token for the expected purpose.

Description: Failure checks run in a fixed order so callers always see the
most specific error: unknown value, then purpose mismatch, then expiry, then
prior consumption. An expired token is dead even if no sweep has removed it
yet. Under concurrent redemption of the same value, exactly one caller
succeeds; the rest observe TOKEN_ALREADY_USED.

Parameters:
  - context: context.Context
  - value: string (opaque token value)
  - purpose: Purpose (the workflow attempting redemption)

Returns:
  - *AuthToken: The consumed token, for its AccountID binding
  - error: apperr.TokenNotFound, apperr.PurposeMismatch, apperr.TokenExpired,
    apperr.TokenAlreadyUsed, or persistence failures
*/
func (ledger *Ledger) Consume(context context.Context, value string, purpose Purpose) (*AuthToken, error) {

	token, err := ledger.store.FindByValue(context, value)
	if err != nil {
		return nil, err
	}

	if token.Purpose != purpose {
		return nil, apperr.PurposeMismatch()
	}

	now := ledger.clock.Now()
	if token.Expired(now) {
		return nil, apperr.TokenExpired()
	}

	if token.Consumed() {
		return nil, apperr.TokenAlreadyUsed()
	}

	// The read above raced no one; the write below decides the winner.
	won, err := ledger.store.AtomicConsume(context, value, now)
	if err != nil {
		return nil, fmt.Errorf("token_ledger_consume_failed: %w", err)
	}
	if !won {
		return nil, apperr.TokenAlreadyUsed()
	}

	token.ConsumedAt = &now

	ledger.logger.InfoContext(context, "token_consumed",
		slog.String("account_id", token.AccountID),
		slog.String("purpose", string(purpose)),
	)

	return token, nil
}
