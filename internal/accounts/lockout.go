// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package accounts

import (
	"context"
	"log/slog"
	"time"

	"github.com/sentrahq/sentra/internal/platform/clock"
)

// # Lockout Tracking

// Tracker counts authentication failures and locks accounts at a threshold.
//
// A zero threshold disables tracking entirely. A zero unlock duration means
// locks are permanent until an administrator intervenes.
type Tracker struct {
	store          AccountStore
	clock          clock.Clock
	logger         *slog.Logger
	threshold      int
	unlockDuration time.Duration
}

// NewTracker constructs a lockout [Tracker].
func NewTracker(store AccountStore, clk clock.Clock, logger *slog.Logger, threshold int, unlockDuration time.Duration) *Tracker {
	return &Tracker{
		store:          store,
		clock:          clk,
		logger:         logger,
		threshold:      threshold,
		unlockDuration: unlockDuration,
	}
}

/*
RecordFailure counts one failed authentication attempt.

Description: The counter increments atomically in storage, so concurrent
failures across instances are all observed. Reaching the threshold locks the
account. The counter saturates at the threshold; failures against an already
locked account do not push it further.

Parameters:
  - context: context.Context
  - account: *Account (current snapshot; Status is read, not trusted for the count)

Returns:
  - bool: true when this failure locked the account
  - error: Persistence failures
*/
func (tracker *Tracker) RecordFailure(context context.Context, account *Account) (bool, error) {

	if tracker.threshold <= 0 {
		return false, nil
	}

	now := tracker.clock.Now()
	attempts, err := tracker.store.IncrementFailedAttempts(context, account.ID, now, tracker.threshold)
	if err != nil {
		return false, err
	}

	if attempts < tracker.threshold || account.Status != StatusEnabled {
		return false, nil
	}

	if err := tracker.store.UpdateStatus(context, account.ID, StatusLocked, now); err != nil {
		return false, err
	}

	tracker.logger.WarnContext(context, "account_locked",
		slog.String("account_id", account.ID),
		slog.Int("failed_attempts", attempts),
	)

	return true, nil
}

/*
RecordSuccess clears the failure counter after a successful authentication.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Persistence failures
*/
func (tracker *Tracker) RecordSuccess(context context.Context, accountID string) error {
	return tracker.store.ResetFailedAttempts(context, accountID)
}

/*
MaybeAutoUnlock lifts an expired lock.

Description: When an unlock duration is configured and the lock is older than
that duration, the account returns to enabled with a clean counter. With no
duration configured, locks only clear through the administrative unlock.

Parameters:
  - context: context.Context
  - account: *Account (must be StatusLocked to be considered)

Returns:
  - bool: true when the lock was lifted
  - error: Persistence failures
*/
func (tracker *Tracker) MaybeAutoUnlock(context context.Context, account *Account) (bool, error) {

	if account.Status != StatusLocked || tracker.unlockDuration <= 0 || account.LockedAt == nil {
		return false, nil
	}

	now := tracker.clock.Now()
	if now.Sub(*account.LockedAt) < tracker.unlockDuration {
		return false, nil
	}

	if err := tracker.store.UpdateStatus(context, account.ID, StatusEnabled, now); err != nil {
		return false, err
	}
	if err := tracker.store.ResetFailedAttempts(context, account.ID); err != nil {
		return false, err
	}

	tracker.logger.InfoContext(context, "account_auto_unlocked",
		slog.String("account_id", account.ID),
	)

	return true, nil
}
