// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package tokens_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentrahq/sentra/internal/platform/apperr"
	"github.com/sentrahq/sentra/internal/platform/clock"
	"github.com/sentrahq/sentra/internal/tokens"
)

// memoryTokenStore is an in-memory TokenStore with the same atomicity
// guarantees as the real backends.
type memoryTokenStore struct {
	mu     sync.Mutex
	byVal  map[string]*tokens.AuthToken
	frozen *clock.Frozen
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{byVal: make(map[string]*tokens.AuthToken)}
}

func (store *memoryTokenStore) Insert(_ context.Context, token *tokens.AuthToken) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	copied := *token
	store.byVal[token.Value] = &copied
	return nil
}

func (store *memoryTokenStore) FindByValue(_ context.Context, value string) (*tokens.AuthToken, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	token, ok := store.byVal[value]
	if !ok {
		return nil, apperr.TokenNotFound()
	}
	copied := *token
	return &copied, nil
}

func (store *memoryTokenStore) AtomicConsume(_ context.Context, value string, now time.Time) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	token, ok := store.byVal[value]
	if !ok || token.ConsumedAt != nil {
		return false, nil
	}
	token.ConsumedAt = &now
	return true, nil
}

func (store *memoryTokenStore) DeleteExpiredBefore(_ context.Context, cutoff time.Time, limit int) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	removed := 0
	for value, token := range store.byVal {
		if removed >= limit {
			break
		}
		if token.ExpiresAt.Before(cutoff) {
			delete(store.byVal, value)
			removed++
		}
	}
	return removed, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestLedger(t *testing.T) (*tokens.Ledger, *memoryTokenStore, *clock.Frozen) {
	t.Helper()
	store := newMemoryTokenStore()
	frozen := clock.NewFrozen(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return tokens.NewLedger(store, frozen, testLogger()), store, frozen
}

/*
TestLedger_IssueAndConsume verifies the happy path: a freshly issued token
redeems once for its bound account.
*/
func TestLedger_IssueAndConsume(t *testing.T) {
	ledger, _, frozen := newTestLedger(t)
	ctx := context.Background()

	token, err := ledger.Issue(ctx, "acct-1", tokens.PurposeVerify, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.Equal(t, frozen.Now().Add(time.Hour), token.ExpiresAt)
	assert.False(t, token.Consumed())

	consumed, err := ledger.Consume(ctx, token.Value, tokens.PurposeVerify)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", consumed.AccountID)
	assert.True(t, consumed.Consumed())
}

/*
TestLedger_IssueRejectsBadInput verifies purpose and TTL validation.
*/
func TestLedger_IssueRejectsBadInput(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.Issue(ctx, "acct-1", tokens.Purpose("bogus"), time.Hour)
	assert.Error(t, err)

	_, err = ledger.Issue(ctx, "acct-1", tokens.PurposeVerify, 0)
	assert.Error(t, err)
}

/*
TestLedger_ConsumeUnknownValue verifies that an unknown value reports
TOKEN_NOT_FOUND before any other check.
*/
func TestLedger_ConsumeUnknownValue(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.Consume(context.Background(), "no-such-token", tokens.PurposeVerify)
	assert.True(t, apperr.IsCode(err, "TOKEN_NOT_FOUND"))
}

/*
TestLedger_ConsumePurposeMismatch verifies that redeeming under the wrong
workflow fails without consuming the token.
*/
func TestLedger_ConsumePurposeMismatch(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	token, err := ledger.Issue(ctx, "acct-1", tokens.PurposeResetPassword, time.Hour)
	require.NoError(t, err)

	_, err = ledger.Consume(ctx, token.Value, tokens.PurposeVerify)
	assert.True(t, apperr.IsCode(err, "PURPOSE_MISMATCH"))

	// The token survives the mismatched attempt and still redeems correctly.
	_, err = ledger.Consume(ctx, token.Value, tokens.PurposeResetPassword)
	assert.NoError(t, err)
}

/*
TestLedger_ConsumeExpired verifies that expiry kills a token even before any
sweep has removed it, and that expiry beats the already-used check.
*/
func TestLedger_ConsumeExpired(t *testing.T) {
	ledger, _, frozen := newTestLedger(t)
	ctx := context.Background()

	token, err := ledger.Issue(ctx, "acct-1", tokens.PurposeVerify, time.Hour)
	require.NoError(t, err)

	// 1. Exactly at expiry the token is still live, so consume it, then
	//    also verify a second attempt past expiry reports expiry first.
	frozen.Advance(time.Hour)
	_, err = ledger.Consume(ctx, token.Value, tokens.PurposeVerify)
	require.NoError(t, err)

	frozen.Advance(time.Second)
	_, err = ledger.Consume(ctx, token.Value, tokens.PurposeVerify)
	assert.True(t, apperr.IsCode(err, "TOKEN_EXPIRED"))
}

/*
TestLedger_ConsumeTwice verifies the single-use guarantee for sequential
redemption attempts.
*/
func TestLedger_ConsumeTwice(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	token, err := ledger.Issue(ctx, "acct-1", tokens.PurposeVerify, time.Hour)
	require.NoError(t, err)

	_, err = ledger.Consume(ctx, token.Value, tokens.PurposeVerify)
	require.NoError(t, err)

	_, err = ledger.Consume(ctx, token.Value, tokens.PurposeVerify)
	assert.True(t, apperr.IsCode(err, "TOKEN_ALREADY_USED"))
}

/*
TestLedger_ConcurrentConsume verifies that under racing redeemers exactly one
wins and the rest observe TOKEN_ALREADY_USED.
*/
func TestLedger_ConcurrentConsume(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	token, err := ledger.Issue(ctx, "acct-1", tokens.PurposeVerify, time.Hour)
	require.NoError(t, err)

	const racers = 32
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = ledger.Consume(ctx, token.Value, tokens.PurposeVerify)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		assert.True(t, apperr.IsCode(err, "TOKEN_ALREADY_USED"))
	}
	assert.Equal(t, 1, winners)
}

/*
TestLedger_MultipleLiveTokens verifies that issuing does not invalidate
earlier tokens for the same account and purpose.
*/
func TestLedger_MultipleLiveTokens(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	ctx := context.Background()

	first, err := ledger.Issue(ctx, "acct-1", tokens.PurposeResetPassword, time.Hour)
	require.NoError(t, err)
	second, err := ledger.Issue(ctx, "acct-1", tokens.PurposeResetPassword, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first.Value, second.Value)

	_, err = ledger.Consume(ctx, first.Value, tokens.PurposeResetPassword)
	assert.NoError(t, err)
	_, err = ledger.Consume(ctx, second.Value, tokens.PurposeResetPassword)
	assert.NoError(t, err)
}
