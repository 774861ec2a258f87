// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package tokens_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentrahq/sentra/internal/platform/apperr"
	"github.com/sentrahq/sentra/internal/platform/clock"
	"github.com/sentrahq/sentra/internal/tokens"
)

/*
TestSweeper_PurgeExpired verifies that expired tokens are removed across
multiple batches while live ones survive.
*/
func TestSweeper_PurgeExpired(t *testing.T) {
	store := newMemoryTokenStore()
	frozen := clock.NewFrozen(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ledger := tokens.NewLedger(store, frozen, testLogger())
	sweeper := tokens.NewSweeper(store, frozen, testLogger(), 3, time.Hour)
	ctx := context.Background()

	// 7 short-lived tokens and 2 long-lived ones.
	for i := 0; i < 7; i++ {
		_, err := ledger.Issue(ctx, "acct-1", tokens.PurposeVerify, time.Minute)
		require.NoError(t, err)
	}
	longA, err := ledger.Issue(ctx, "acct-1", tokens.PurposeResetPassword, 24*time.Hour)
	require.NoError(t, err)
	longB, err := ledger.Issue(ctx, "acct-2", tokens.PurposeVerify, 24*time.Hour)
	require.NoError(t, err)

	frozen.Advance(2 * time.Minute)

	// 1. Batch size 3 forces three rounds for the 7 expired tokens.
	removed, err := sweeper.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, removed)

	// 2. Live tokens are untouched and still redeemable.
	_, err = ledger.Consume(ctx, longA.Value, tokens.PurposeResetPassword)
	assert.NoError(t, err)
	_, err = ledger.Consume(ctx, longB.Value, tokens.PurposeVerify)
	assert.NoError(t, err)
}

/*
TestSweeper_Idempotent verifies that a second sweep with no new expiries
removes nothing.
*/
func TestSweeper_Idempotent(t *testing.T) {
	store := newMemoryTokenStore()
	frozen := clock.NewFrozen(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ledger := tokens.NewLedger(store, frozen, testLogger())
	sweeper := tokens.NewSweeper(store, frozen, testLogger(), 10, time.Hour)
	ctx := context.Background()

	_, err := ledger.Issue(ctx, "acct-1", tokens.PurposeVerify, time.Minute)
	require.NoError(t, err)
	frozen.Advance(time.Hour)

	removed, err := sweeper.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = sweeper.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

/*
TestSweeper_ConsumedButLiveSurvives verifies that a consumed token stays on
record until its expiry passes.
*/
func TestSweeper_ConsumedButLiveSurvives(t *testing.T) {
	store := newMemoryTokenStore()
	frozen := clock.NewFrozen(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ledger := tokens.NewLedger(store, frozen, testLogger())
	sweeper := tokens.NewSweeper(store, frozen, testLogger(), 10, time.Hour)
	ctx := context.Background()

	token, err := ledger.Issue(ctx, "acct-1", tokens.PurposeVerify, time.Hour)
	require.NoError(t, err)
	_, err = ledger.Consume(ctx, token.Value, tokens.PurposeVerify)
	require.NoError(t, err)

	// 1. Still within its lifetime: the consumed row survives the sweep.
	removed, err := sweeper.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	found, err := store.FindByValue(ctx, token.Value)
	require.NoError(t, err)
	assert.True(t, found.Consumed())

	// 2. Past expiry it is reclaimed like any other token.
	frozen.Advance(2 * time.Hour)
	removed, err = sweeper.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.FindByValue(ctx, token.Value)
	assert.True(t, apperr.IsCode(err, "TOKEN_NOT_FOUND"))
}
