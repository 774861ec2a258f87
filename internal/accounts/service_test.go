// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package accounts_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentrahq/sentra/internal/accounts"
	"github.com/sentrahq/sentra/internal/platform/apperr"
	"github.com/sentrahq/sentra/internal/platform/clock"
	"github.com/sentrahq/sentra/internal/tokens"
)

// # In-Memory Fixtures

// memoryAccountStore is an in-memory AccountStore with the same atomic
// increment semantics as the PostgreSQL implementation.
type memoryAccountStore struct {
	mu   sync.Mutex
	byID map[string]*accounts.Account
}

func newMemoryAccountStore() *memoryAccountStore {
	return &memoryAccountStore{byID: make(map[string]*accounts.Account)}
}

func (store *memoryAccountStore) Create(_ context.Context, account *accounts.Account) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, existing := range store.byID {
		if existing.Email == account.Email {
			return apperr.Conflict("Email is already registered")
		}
	}
	copied := *account
	store.byID[account.ID] = &copied
	return nil
}

func (store *memoryAccountStore) FindByID(_ context.Context, id string) (*accounts.Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	account, ok := store.byID[id]
	if !ok {
		return nil, apperr.AccountNotFound()
	}
	copied := *account
	return &copied, nil
}

func (store *memoryAccountStore) FindByEmail(_ context.Context, email string) (*accounts.Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, account := range store.byID {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, apperr.AccountNotFound()
}

func (store *memoryAccountStore) UpdateStatus(_ context.Context, id string, status accounts.Status, now time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	account, ok := store.byID[id]
	if !ok {
		return apperr.AccountNotFound()
	}
	account.Status = status
	if status == accounts.StatusLocked {
		lockedAt := now
		account.LockedAt = &lockedAt
	} else {
		account.LockedAt = nil
	}
	account.UpdatedAt = now
	return nil
}

func (store *memoryAccountStore) IncrementFailedAttempts(_ context.Context, id string, now time.Time, cap int) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	account, ok := store.byID[id]
	if !ok {
		return 0, apperr.AccountNotFound()
	}
	if account.FailedAttempts < cap {
		account.FailedAttempts++
	}
	failedAt := now
	account.LastFailedAt = &failedAt
	return account.FailedAttempts, nil
}

func (store *memoryAccountStore) List(_ context.Context, filter accounts.Filter, limit, offset int) ([]*accounts.Account, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	matched := make([]*accounts.Account, 0, len(store.byID))
	for _, account := range store.byID {
		if !matchesFilter(account, filter) {
			continue
		}
		copied := *account
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func matchesFilter(account *accounts.Account, filter accounts.Filter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if account.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Query != "" {
		needle := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(account.Email), needle) &&
			!strings.Contains(strings.ToLower(account.DisplayName), needle) {
			return false
		}
	}
	return true
}

func (store *memoryAccountStore) ResetFailedAttempts(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if account, ok := store.byID[id]; ok {
		account.FailedAttempts = 0
		account.LastFailedAt = nil
	}
	return nil
}

// stubLedger is a minimal TokenLedger with real single-use semantics.
type stubLedger struct {
	mu      sync.Mutex
	frozen  *clock.Frozen
	byValue map[string]*tokens.AuthToken
	serial  int
}

func newStubLedger(frozen *clock.Frozen) *stubLedger {
	return &stubLedger{frozen: frozen, byValue: make(map[string]*tokens.AuthToken)}
}

func (ledger *stubLedger) Issue(_ context.Context, accountID string, purpose tokens.Purpose, ttl time.Duration) (*tokens.AuthToken, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	ledger.serial++
	now := ledger.frozen.Now()
	token := &tokens.AuthToken{
		Value:     fmt.Sprintf("tok-%d", ledger.serial),
		AccountID: accountID,
		Purpose:   purpose,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	ledger.byValue[token.Value] = token
	return token, nil
}

func (ledger *stubLedger) Consume(_ context.Context, value string, purpose tokens.Purpose) (*tokens.AuthToken, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	token, ok := ledger.byValue[value]
	if !ok {
		return nil, apperr.TokenNotFound()
	}
	if token.Purpose != purpose {
		return nil, apperr.PurposeMismatch()
	}
	now := ledger.frozen.Now()
	if token.Expired(now) {
		return nil, apperr.TokenExpired()
	}
	if token.Consumed() {
		return nil, apperr.TokenAlreadyUsed()
	}
	token.ConsumedAt = &now
	copied := *token
	return &copied, nil
}

// lastIssued returns the most recently minted token for an account/purpose.
func (ledger *stubLedger) lastIssued(accountID string, purpose tokens.Purpose) *tokens.AuthToken {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	var latest *tokens.AuthToken
	for _, token := range ledger.byValue {
		if token.AccountID != accountID || token.Purpose != purpose {
			continue
		}
		if latest == nil || token.IssuedAt.After(latest.IssuedAt) {
			latest = token
		}
	}
	return latest
}

// stubVault stores plaintext copies; hashing is covered by the factors tests.
type stubVault struct {
	mu        sync.Mutex
	passwords map[string]string
}

func newStubVault() *stubVault {
	return &stubVault{passwords: make(map[string]string)}
}

func (vault *stubVault) SetPassword(_ context.Context, accountID string, password []byte) error {
	vault.mu.Lock()
	defer vault.mu.Unlock()
	vault.passwords[accountID] = string(password)
	return nil
}

func (vault *stubVault) VerifyPassword(_ context.Context, accountID string, password []byte) (bool, error) {
	vault.mu.Lock()
	defer vault.mu.Unlock()
	stored, ok := vault.passwords[accountID]
	if !ok {
		return false, apperr.FactorNotFound()
	}
	return stored == string(password), nil
}

// stubTokenProvider mints predictable access tokens.
type stubTokenProvider struct{}

func (stubTokenProvider) GenerateAccessToken(userID, _ string, _ []string, _ time.Duration) (string, error) {
	return "jwt-" + userID, nil
}

// testHarness bundles the service with its fixtures.
type testHarness struct {
	service *accounts.Service
	store   *memoryAccountStore
	ledger  *stubLedger
	vault   *stubVault
	tracker *accounts.Tracker
	frozen  *clock.Frozen
}

func newHarness(t *testing.T, threshold int, unlockDuration time.Duration) *testHarness {
	t.Helper()

	frozen := clock.NewFrozen(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := newMemoryAccountStore()
	ledger := newStubLedger(frozen)
	vault := newStubVault()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	tracker := accounts.NewTracker(store, frozen, logger, threshold, unlockDuration)

	service := accounts.NewService(store, ledger, vault, tracker, stubTokenProvider{}, frozen, logger, accounts.TTLConfig{
		Verification: 24 * time.Hour,
		Reset:        time.Hour,
		Access:       15 * time.Minute,
	})

	return &testHarness{
		service: service,
		store:   store,
		ledger:  ledger,
		vault:   vault,
		tracker: tracker,
		frozen:  frozen,
	}
}

// registerEnabled registers an account and walks it through verification.
func (harness *testHarness) registerEnabled(t *testing.T, email, password string) *accounts.Account {
	t.Helper()
	ctx := context.Background()

	account, err := harness.service.Register(ctx, accounts.RegisterInput{
		Email:       email,
		DisplayName: "Test Account",
		Password:    []byte(password),
	})
	require.NoError(t, err)

	token := harness.ledger.lastIssued(account.ID, tokens.PurposeVerify)
	require.NotNil(t, token)

	verified, err := harness.service.VerifyAccount(ctx, token.Value)
	require.NoError(t, err)
	require.Equal(t, accounts.StatusEnabled, verified.Status)

	return verified
}

// # Registration & Verification

/*
TestService_Register verifies enrollment lands in the pending state with a
verification token issued and the password stored.
*/
func TestService_Register(t *testing.T) {
	harness := newHarness(t, 5, 0)
	ctx := context.Background()

	account, err := harness.service.Register(ctx, accounts.RegisterInput{
		Email:       "amara@example.com",
		DisplayName: "Amara",
		Password:    []byte("s3cret-passphrase"),
	})
	require.NoError(t, err)
	assert.Equal(t, accounts.StatusPending, account.Status)
	assert.Equal(t, []string{accounts.DefaultRole}, account.Roles)

	assert.NotNil(t, harness.ledger.lastIssued(account.ID, tokens.PurposeVerify))

	match, err := harness.vault.VerifyPassword(ctx, account.ID, []byte("s3cret-passphrase"))
	require.NoError(t, err)
	assert.True(t, match)

	// Duplicate email is a conflict.
	_, err = harness.service.Register(ctx, accounts.RegisterInput{
		Email:       "amara@example.com",
		DisplayName: "Other",
		Password:    []byte("another-pass"),
	})
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

/*
TestService_VerifyAccount verifies the pending-to-enabled transition and the
token misuse cases around it.
*/
func TestService_VerifyAccount(t *testing.T) {
	harness := newHarness(t, 5, 0)
	ctx := context.Background()

	account, err := harness.service.Register(ctx, accounts.RegisterInput{
		Email:       "amara@example.com",
		DisplayName: "Amara",
		Password:    []byte("s3cret-passphrase"),
	})
	require.NoError(t, err)

	// A reset token cannot verify an account.
	resetToken, err := harness.ledger.Issue(ctx, account.ID, tokens.PurposeResetPassword, time.Hour)
	require.NoError(t, err)
	_, err = harness.service.VerifyAccount(ctx, resetToken.Value)
	assert.True(t, apperr.IsCode(err, "PURPOSE_MISMATCH"))

	token := harness.ledger.lastIssued(account.ID, tokens.PurposeVerify)
	verified, err := harness.service.VerifyAccount(ctx, token.Value)
	require.NoError(t, err)
	assert.Equal(t, accounts.StatusEnabled, verified.Status)

	// The same token again is spent.
	_, err = harness.service.VerifyAccount(ctx, token.Value)
	assert.True(t, apperr.IsCode(err, "TOKEN_ALREADY_USED"))

	// A second live token against an already-enabled account conflicts.
	second, err := harness.ledger.Issue(ctx, account.ID, tokens.PurposeVerify, time.Hour)
	require.NoError(t, err)
	_, err = harness.service.VerifyAccount(ctx, second.Value)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

/*
TestService_ResendVerification verifies resending is enumeration-safe and
scoped to pending accounts.
*/
func TestService_ResendVerification(t *testing.T) {
	harness := newHarness(t, 5, 0)
	ctx := context.Background()

	_, err := harness.service.Register(ctx, accounts.RegisterInput{
		Email:       "amara@example.com",
		DisplayName: "Amara",
		Password:    []byte("s3cret-passphrase"),
	})
	require.NoError(t, err)

	// Unknown email succeeds silently.
	assert.NoError(t, harness.service.ResendVerification(ctx, "ghost@example.com"))

	// Pending account gets a fresh token while the first stays valid.
	require.NoError(t, harness.service.ResendVerification(ctx, "amara@example.com"))

	account, err := harness.store.FindByEmail(ctx, "amara@example.com")
	require.NoError(t, err)
	token := harness.ledger.lastIssued(account.ID, tokens.PurposeVerify)
	_, err = harness.service.VerifyAccount(ctx, token.Value)
	assert.NoError(t, err)

	// Enabled accounts are left alone.
	before := harness.ledger.serial
	require.NoError(t, harness.service.ResendVerification(ctx, "amara@example.com"))
	assert.Equal(t, before, harness.ledger.serial)
}

// # Authentication

/*
TestService_Authenticate verifies the happy path and the enumeration-safe
failure message.
*/
func TestService_Authenticate(t *testing.T) {
	harness := newHarness(t, 5, 0)
	ctx := context.Background()

	account := harness.registerEnabled(t, "amara@example.com", "s3cret-passphrase")

	session, err := harness.service.Authenticate(ctx, accounts.AuthenticateInput{
		Email:    "amara@example.com",
		Password: []byte("s3cret-passphrase"),
	})
	require.NoError(t, err)
	assert.Equal(t, "jwt-"+account.ID, session.AccessToken)
	assert.Equal(t, account.ID, session.Account.ID)

	// Unknown email and wrong password share one message.
	_, unknownErr := harness.service.Authenticate(ctx, accounts.AuthenticateInput{
		Email:    "ghost@example.com",
		Password: []byte("whatever"),
	})
	_, wrongErr := harness.service.Authenticate(ctx, accounts.AuthenticateInput{
		Email:    "amara@example.com",
		Password: []byte("wrong"),
	})
	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

/*
TestService_Authenticate_StateGates verifies pending and disabled accounts
are refused before any password comparison.
*/
func TestService_Authenticate_StateGates(t *testing.T) {
	harness := newHarness(t, 5, 0)
	ctx := context.Background()

	_, err := harness.service.Register(ctx, accounts.RegisterInput{
		Email:       "pending@example.com",
		DisplayName: "Pending",
		Password:    []byte("s3cret-passphrase"),
	})
	require.NoError(t, err)

	_, err = harness.service.Authenticate(ctx, accounts.AuthenticateInput{
		Email:    "pending@example.com",
		Password: []byte("s3cret-passphrase"),
	})
	assert.True(t, apperr.IsCode(err, "ACCOUNT_PENDING_VERIFICATION"))

	// Even the correct password is refused while disabled, and the refusal
	// names the state rather than the credentials.
	enabled := harness.registerEnabled(t, "amara@example.com", "s3cret-passphrase")
	require.NoError(t, harness.service.Disable(ctx, enabled.ID))

	_, err = harness.service.Authenticate(ctx, accounts.AuthenticateInput{
		Email:    "amara@example.com",
		Password: []byte("s3cret-passphrase"),
	})
	assert.True(t, apperr.IsCode(err, "ACCOUNT_DISABLED"))
}

/*
TestService_Authenticate_Lockout verifies the threshold locks the account and
the lock gate fires before the password check.
*/
func TestService_Authenticate_Lockout(t *testing.T) {
	harness := newHarness(t, 3, 0)
	ctx := context.Background()

	harness.registerEnabled(t, "amara@example.com", "s3cret-passphrase")

	for i := 0; i < 3; i++ {
		_, err := harness.service.Authenticate(ctx, accounts.AuthenticateInput{
			Email:    "amara@example.com",
			Password: []byte("wrong"),
		})
		assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"), "attempt %d", i+1)
	}

	// The threshold attempt locked the account; even the right password is
	// now refused with the lock error.
	_, err := harness.service.Authenticate(ctx, accounts.AuthenticateInput{
		Email:    "amara@example.com",
		Password: []byte("s3cret-passphrase"),
	})
	assert.True(t, apperr.IsCode(err, "ACCOUNT_LOCKED"))
}

/*
TestService_Authenticate_AutoUnlock verifies that an expired lock lifts on
the next attempt when a duration is configured.
*/
func TestService_Authenticate_AutoUnlock(t *testing.T) {
	harness := newHarness(t, 2, 10*time.Minute)
	ctx := context.Background()

	harness.registerEnabled(t, "amara@example.com", "s3cret-passphrase")

	for i := 0; i < 2; i++ {
		_, _ = harness.service.Authenticate(ctx, accounts.AuthenticateInput{
			Email:    "amara@example.com",
			Password: []byte("wrong"),
		})
	}

	// Still inside the lock window.
	_, err := harness.service.Authenticate(ctx, accounts.AuthenticateInput{
		Email:    "amara@example.com",
		Password: []byte("s3cret-passphrase"),
	})
	assert.True(t, apperr.IsCode(err, "ACCOUNT_LOCKED"))

	// Past the window the lock lifts and the login proceeds.
	harness.frozen.Advance(11 * time.Minute)
	session, err := harness.service.Authenticate(ctx, accounts.AuthenticateInput{
		Email:    "amara@example.com",
		Password: []byte("s3cret-passphrase"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
}

/*
TestService_RecordLoginOutcome verifies the external outcome entry point
drives the same lockout machinery.
*/
func TestService_RecordLoginOutcome(t *testing.T) {
	harness := newHarness(t, 2, 0)
	ctx := context.Background()

	account := harness.registerEnabled(t, "amara@example.com", "s3cret-passphrase")

	locked, err := harness.service.RecordLoginOutcome(ctx, account.ID, false)
	require.NoError(t, err)
	assert.False(t, locked)

	locked, err = harness.service.RecordLoginOutcome(ctx, account.ID, true)
	require.NoError(t, err)
	assert.False(t, locked)

	// The success above reset the counter, so two more failures are needed.
	locked, err = harness.service.RecordLoginOutcome(ctx, account.ID, false)
	require.NoError(t, err)
	assert.False(t, locked)
	locked, err = harness.service.RecordLoginOutcome(ctx, account.ID, false)
	require.NoError(t, err)
	assert.True(t, locked)

	_, err = harness.service.RecordLoginOutcome(ctx, "no-such-account", false)
	assert.True(t, apperr.IsCode(err, "ACCOUNT_NOT_FOUND"))
}

// # Password Reset

/*
TestService_PasswordReset verifies the request/confirm round trip, including
the lock-lifting side effect.
*/
func TestService_PasswordReset(t *testing.T) {
	harness := newHarness(t, 2, 0)
	ctx := context.Background()

	account := harness.registerEnabled(t, "amara@example.com", "old-passphrase")

	// Unknown email succeeds silently and mints nothing.
	before := harness.ledger.serial
	require.NoError(t, harness.service.RequestPasswordReset(ctx, "ghost@example.com"))
	assert.Equal(t, before, harness.ledger.serial)

	// Lock the account through failures, then reset.
	for i := 0; i < 2; i++ {
		_, _ = harness.service.Authenticate(ctx, accounts.AuthenticateInput{
			Email:    "amara@example.com",
			Password: []byte("wrong"),
		})
	}

	require.NoError(t, harness.service.RequestPasswordReset(ctx, "amara@example.com"))
	token := harness.ledger.lastIssued(account.ID, tokens.PurposeResetPassword)
	require.NotNil(t, token)

	require.NoError(t, harness.service.ConsumePasswordReset(ctx, token.Value, []byte("new-passphrase")))

	// Old password is gone, new one works, and the lock lifted.
	_, err := harness.service.Authenticate(ctx, accounts.AuthenticateInput{
		Email:    "amara@example.com",
		Password: []byte("old-passphrase"),
	})
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))

	session, err := harness.service.Authenticate(ctx, accounts.AuthenticateInput{
		Email:    "amara@example.com",
		Password: []byte("new-passphrase"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)

	// The token is single-use.
	err = harness.service.ConsumePasswordReset(ctx, token.Value, []byte("sneaky-passphrase"))
	assert.True(t, apperr.IsCode(err, "TOKEN_ALREADY_USED"))
}

/*
TestService_PasswordReset_Disabled verifies a disabled account neither
receives nor redeems reset tokens.
*/
func TestService_PasswordReset_Disabled(t *testing.T) {
	harness := newHarness(t, 5, 0)
	ctx := context.Background()

	account := harness.registerEnabled(t, "amara@example.com", "s3cret-passphrase")

	// A token issued before the shutdown cannot be redeemed after it.
	require.NoError(t, harness.service.RequestPasswordReset(ctx, "amara@example.com"))
	token := harness.ledger.lastIssued(account.ID, tokens.PurposeResetPassword)
	require.NotNil(t, token)

	require.NoError(t, harness.service.Disable(ctx, account.ID))

	err := harness.service.ConsumePasswordReset(ctx, token.Value, []byte("new-passphrase"))
	assert.True(t, apperr.IsCode(err, "ACCOUNT_DISABLED"))

	// No new tokens are minted for a disabled account.
	before := harness.ledger.serial
	require.NoError(t, harness.service.RequestPasswordReset(ctx, "amara@example.com"))
	assert.Equal(t, before, harness.ledger.serial)
}

/*
TestService_PasswordReset_Expired verifies an expired reset token is refused
even though it still exists.
*/
func TestService_PasswordReset_Expired(t *testing.T) {
	harness := newHarness(t, 5, 0)
	ctx := context.Background()

	account := harness.registerEnabled(t, "amara@example.com", "s3cret-passphrase")

	require.NoError(t, harness.service.RequestPasswordReset(ctx, "amara@example.com"))
	token := harness.ledger.lastIssued(account.ID, tokens.PurposeResetPassword)

	harness.frozen.Advance(2 * time.Hour)
	err := harness.service.ConsumePasswordReset(ctx, token.Value, []byte("new-passphrase"))
	assert.True(t, apperr.IsCode(err, "TOKEN_EXPIRED"))
}

// # Administrative Transitions

/*
TestService_AdminLockUnlock verifies the administrative transitions and
their state preconditions.
*/
func TestService_AdminLockUnlock(t *testing.T) {
	harness := newHarness(t, 5, 0)
	ctx := context.Background()

	account := harness.registerEnabled(t, "amara@example.com", "s3cret-passphrase")

	// Unlocking an account that is not locked conflicts.
	err := harness.service.Unlock(ctx, account.ID)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))

	require.NoError(t, harness.service.Lock(ctx, account.ID))
	_, err = harness.service.Authenticate(ctx, accounts.AuthenticateInput{
		Email:    "amara@example.com",
		Password: []byte("s3cret-passphrase"),
	})
	assert.True(t, apperr.IsCode(err, "ACCOUNT_LOCKED"))

	// Locking twice conflicts.
	err = harness.service.Lock(ctx, account.ID)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))

	require.NoError(t, harness.service.Unlock(ctx, account.ID))
	_, err = harness.service.Authenticate(ctx, accounts.AuthenticateInput{
		Email:    "amara@example.com",
		Password: []byte("s3cret-passphrase"),
	})
	assert.NoError(t, err)

	// The disabled gate used by the credential inventory.
	disabled, err := harness.service.Disabled(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, disabled)
	require.NoError(t, harness.service.Disable(ctx, account.ID))
	disabled, err = harness.service.Disabled(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, disabled)
}

// # Listing

/*
TestService_ListAccounts verifies filtering, search, and page math of the
administrative listing.
*/
func TestService_ListAccounts(t *testing.T) {
	harness := newHarness(t, 5, 0)
	ctx := context.Background()

	// 1. Seed three accounts created at distinct instants.
	first := harness.registerEnabled(t, "amara@example.com", "s3cret-passphrase")
	harness.frozen.Advance(time.Minute)
	second := harness.registerEnabled(t, "bao@example.com", "s3cret-passphrase")
	harness.frozen.Advance(time.Minute)
	third := harness.registerEnabled(t, "chidi@other.org", "s3cret-passphrase")

	require.NoError(t, harness.service.Disable(ctx, third.ID))

	// 2. An unfiltered listing returns everything, newest first.
	page, total, err := harness.service.ListAccounts(ctx, accounts.Filter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 3)
	assert.Equal(t, third.ID, page[0].ID)
	assert.Equal(t, second.ID, page[1].ID)
	assert.Equal(t, first.ID, page[2].ID)

	// 3. The status filter narrows to matching lifecycle states.
	page, total, err = harness.service.ListAccounts(ctx, accounts.Filter{
		Statuses: []accounts.Status{accounts.StatusDisabled},
	}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, page, 1)
	assert.Equal(t, third.ID, page[0].ID)

	// 4. Search matches email case-insensitively.
	page, total, err = harness.service.ListAccounts(ctx, accounts.Filter{Query: "EXAMPLE.COM"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 2)

	// 5. The second page carries the remainder with the true total.
	page, total, err = harness.service.ListAccounts(ctx, accounts.Filter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)
}
