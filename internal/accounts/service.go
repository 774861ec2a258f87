// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sentrahq/sentra/internal/platform/apperr"
	"github.com/sentrahq/sentra/internal/platform/clock"
	"github.com/sentrahq/sentra/internal/platform/sec"
	"github.com/sentrahq/sentra/internal/tokens"
	"github.com/sentrahq/sentra/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating signed access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given account.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - email: The email of the account.
	//   - roles: The granted role names.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an error if signing fails.
	GenerateAccessToken(userID, email string, roles []string, timeToLive time.Duration) (string, error)
}

// TokenLedger is the slice of the token ledger this service depends on.
type TokenLedger interface {
	Issue(context context.Context, accountID string, purpose tokens.Purpose, ttl time.Duration) (*tokens.AuthToken, error)
	Consume(context context.Context, value string, purpose tokens.Purpose) (*tokens.AuthToken, error)
}

// PasswordVault manages the password slot in the credential inventory.
// Implemented by the factors service.
type PasswordVault interface {
	SetPassword(context context.Context, accountID string, password []byte) error
	VerifyPassword(context context.Context, accountID string, password []byte) (bool, error)
}

// TTLConfig carries the token lifetimes the service issues with.
type TTLConfig struct {
	Verification time.Duration
	Reset        time.Duration
	Access       time.Duration
}

// Service implements the account lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to state transitions,
// lockout handling, or the reset flow must be reviewed by the security team.
type Service struct {
	store         AccountStore
	ledger        TokenLedger
	vault         PasswordVault
	tracker       *Tracker
	tokenProvider TokenProvider
	clock         clock.Clock
	logger        *slog.Logger
	ttl           TTLConfig
}

// NewService constructs a new account [Service] with necessary dependencies.
func NewService(
	store AccountStore,
	ledger TokenLedger,
	vault PasswordVault,
	tracker *Tracker,
	tokenProvider TokenProvider,
	clk clock.Clock,
	logger *slog.Logger,
	ttl TTLConfig,
) *Service {
	return &Service{
		store:         store,
		ledger:        ledger,
		vault:         vault,
		tracker:       tracker,
		tokenProvider: tokenProvider,
		clock:         clk,
		logger:        logger,
		ttl:           ttl,
	}
}

// DefaultRole is granted to every self-registered account.
const DefaultRole = "USER"

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Email       string
	DisplayName string
	Password    []byte
}

/*
Register enrolls a new account in the pending state.

Description: Creates the account, stores the bcrypt password hash in the
credential inventory, and issues an email verification token. The account
cannot authenticate until the token is consumed. The plaintext password
buffer is wiped before returning.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Account: Created entity
  - error: apperr.Conflict (if the email is taken) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Account, error) {
	defer sec.Wipe(input.Password)

	// Verify email uniqueness. Return a client-safe Conflict error.
	_, err := service.store.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Time-sortable ID to prevent PG index fragmentation.
	now := service.clock.Now()
	account := &Account{
		ID:          uuid.New(),
		Email:       input.Email,
		DisplayName: input.DisplayName,
		Roles:       []string{DefaultRole},
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := service.store.Create(context, account); err != nil {
		return nil, err
	}

	if err := service.vault.SetPassword(context, account.ID, input.Password); err != nil {
		return nil, fmt.Errorf("account_service_set_password_failed: %w", err)
	}

	// Issue the verification token as an async-ready side effect.
	if _, err := service.ledger.Issue(context, account.ID, tokens.PurposeVerify, service.ttl.Verification); err != nil {
		service.logger.ErrorContext(context, "verification_token_issue_failed",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}
	// TODO: Trigger email service with the verification link

	service.logger.InfoContext(context, "account_registered",
		slog.String("account_id", account.ID),
	)

	return account, nil
}

/*
VerifyAccount consumes a verification token and enables the account.

Description: The single-use consume decides the winner under concurrent
verification attempts; only the winner flips the account state. Verifying an
account that already left the pending state reports a conflict.

Parameters:
  - context: context.Context
  - tokenValue: string

Returns:
  - *Account: The now-enabled account
  - error: Token errors from the ledger, apperr.Conflict, or storage errors
*/
func (service *Service) VerifyAccount(context context.Context, tokenValue string) (*Account, error) {

	token, err := service.ledger.Consume(context, tokenValue, tokens.PurposeVerify)
	if err != nil {
		return nil, err
	}

	account, err := service.store.FindByID(context, token.AccountID)
	if err != nil {
		return nil, err
	}

	if account.Status != StatusPending {
		return nil, apperr.Conflict("Account is already verified")
	}

	now := service.clock.Now()
	if err := service.store.UpdateStatus(context, account.ID, StatusEnabled, now); err != nil {
		return nil, err
	}
	account.Status = StatusEnabled
	account.UpdatedAt = now

	service.logger.InfoContext(context, "account_verified",
		slog.String("account_id", account.ID),
	)

	return account, nil
}

/*
ResendVerification issues a fresh verification token for a pending account.

Description: Earlier tokens stay valid until they expire; whichever arrives
first wins. The call is enumeration-safe: an unknown email or an account past
the pending state both succeed silently.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Storage failures only
*/
func (service *Service) ResendVerification(context context.Context, email string) error {

	account, err := service.store.FindByEmail(context, email)
	if err != nil {
		if apperr.IsCode(err, "ACCOUNT_NOT_FOUND") {
			return nil
		}
		return err
	}

	if account.Status != StatusPending {
		return nil
	}

	if _, err := service.ledger.Issue(context, account.ID, tokens.PurposeVerify, service.ttl.Verification); err != nil {
		return fmt.Errorf("account_service_resend_verification_failed: %w", err)
	}
	// TODO: Trigger email service with the verification link

	return nil
}

// # Authentication Flow

// AuthenticateInput defines credentials for an authentication attempt.
type AuthenticateInput struct {
	Email    string
	Password []byte
}

// AuthSession represents a successfully established session.
type AuthSession struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Account     *Account  `json:"account"`
}

/*
Authenticate validates credentials and issues an access token.

Description: State gates run before the hash comparison: a locked account is
first given its auto-unlock chance, then locked, disabled, and pending states
are refused without ever touching the password. A wrong password counts
toward the lockout threshold. Unknown emails and wrong passwords share one
generic message to prevent account enumeration. The plaintext buffer is wiped
before returning.

Parameters:
  - context: context.Context
  - input: AuthenticateInput

Returns:
  - *AuthSession: Transport-ready session
  - error: apperr.Unauthorized, apperr.AccountLocked, apperr.AccountDisabled,
    apperr.AccountPending, or internal failures
*/
func (service *Service) Authenticate(context context.Context, input AuthenticateInput) (*AuthSession, error) {
	defer sec.Wipe(input.Password)

	account, err := service.store.FindByEmail(context, input.Email)

	// If (err != nil) the account does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// A lock past its duration lifts itself on the next attempt.
	if account.Status == StatusLocked {
		unlocked, err := service.tracker.MaybeAutoUnlock(context, account)
		if err != nil {
			return nil, err
		}
		if unlocked {
			account.Status = StatusEnabled
			account.FailedAttempts = 0
		}
	}

	switch account.Status {
	case StatusLocked:
		return nil, apperr.AccountLocked()
	case StatusDisabled:
		return nil, apperr.AccountDisabled()
	case StatusPending:
		return nil, apperr.AccountPending()
	}

	match, err := service.vault.VerifyPassword(context, account.ID, input.Password)
	if err != nil {
		// No password slot reads the same as a wrong password.
		if apperr.IsCode(err, "FACTOR_NOT_FOUND") {
			match = false
		} else {
			return nil, err
		}
	}

	if !match {
		if _, err := service.tracker.RecordFailure(context, account); err != nil {
			service.logger.ErrorContext(context, "lockout_record_failed",
				slog.String("account_id", account.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if err := service.tracker.RecordSuccess(context, account.ID); err != nil {
		service.logger.ErrorContext(context, "lockout_reset_failed",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	accessToken, err := service.tokenProvider.GenerateAccessToken(account.ID, account.Email, account.Roles, service.ttl.Access)
	if err != nil {
		return nil, fmt.Errorf("account_service_token_generation_failed: %w", err)
	}

	service.logger.InfoContext(context, "account_authenticated",
		slog.String("account_id", account.ID),
	)

	return &AuthSession{
		AccessToken: accessToken,
		ExpiresAt:   service.clock.Now().Add(service.ttl.Access),
		Account:     account,
	}, nil
}

/*
RecordLoginOutcome reports an externally observed authentication outcome.

Description: Entry point for authentication paths that do not go through
[Service.Authenticate], such as a passkey assertion verified at the edge.
Failures count toward the lockout threshold; successes clear the counter.

Parameters:
  - context: context.Context
  - accountID: string
  - success: bool

Returns:
  - bool: true when this failure locked the account
  - error: apperr.AccountNotFound or persistence failures
*/
func (service *Service) RecordLoginOutcome(context context.Context, accountID string, success bool) (bool, error) {

	if success {
		return false, service.tracker.RecordSuccess(context, accountID)
	}

	account, err := service.store.FindByID(context, accountID)
	if err != nil {
		return false, err
	}

	return service.tracker.RecordFailure(context, account)
}

// # Password Reset Flow

/*
RequestPasswordReset issues a reset token for the account behind an email.

Description: Enumeration-safe: unknown emails succeed silently. Disabled
accounts get no token; a reset must not become a side door around an
administrative shutdown. Locked and pending accounts may reset, since proving
email ownership is exactly what those states are waiting on.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Storage failures only
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {

	account, err := service.store.FindByEmail(context, email)
	if err != nil {
		if apperr.IsCode(err, "ACCOUNT_NOT_FOUND") {
			return nil
		}
		return err
	}

	if account.Status == StatusDisabled {
		return nil
	}

	if _, err := service.ledger.Issue(context, account.ID, tokens.PurposeResetPassword, service.ttl.Reset); err != nil {
		return fmt.Errorf("account_service_reset_request_failed: %w", err)
	}
	// TODO: Trigger email service with the reset link

	service.logger.InfoContext(context, "password_reset_requested",
		slog.String("account_id", account.ID),
	)

	return nil
}

/*
ConsumePasswordReset redeems a reset token and replaces the password.

Description: The single-use consume guarantees one replacement per token. A
successful reset also clears the failure counter and lifts a failure lock,
since the owner just proved control of the email. The plaintext buffer is
wiped before returning.

Parameters:
  - context: context.Context
  - tokenValue: string
  - newPassword: []byte

Returns:
  - error: Token errors from the ledger, apperr.AccountDisabled, or storage
    failures
*/
func (service *Service) ConsumePasswordReset(context context.Context, tokenValue string, newPassword []byte) error {
	defer sec.Wipe(newPassword)

	token, err := service.ledger.Consume(context, tokenValue, tokens.PurposeResetPassword)
	if err != nil {
		return err
	}

	account, err := service.store.FindByID(context, token.AccountID)
	if err != nil {
		return err
	}

	if account.Status == StatusDisabled {
		return apperr.AccountDisabled()
	}

	if err := service.vault.SetPassword(context, account.ID, newPassword); err != nil {
		return fmt.Errorf("account_service_reset_set_password_failed: %w", err)
	}

	if err := service.store.ResetFailedAttempts(context, account.ID); err != nil {
		return err
	}
	if account.Status == StatusLocked {
		if err := service.store.UpdateStatus(context, account.ID, StatusEnabled, service.clock.Now()); err != nil {
			return err
		}
	}

	service.logger.InfoContext(context, "password_reset_completed",
		slog.String("account_id", account.ID),
	)

	return nil
}

// # Administrative Transitions

/*
Unlock returns a locked account to enabled and clears its counter.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: apperr.AccountNotFound, apperr.Conflict when not locked, or
    storage failures
*/
func (service *Service) Unlock(context context.Context, accountID string) error {

	account, err := service.store.FindByID(context, accountID)
	if err != nil {
		return err
	}

	if account.Status != StatusLocked {
		return apperr.Conflict("Account is not locked")
	}

	if err := service.store.UpdateStatus(context, accountID, StatusEnabled, service.clock.Now()); err != nil {
		return err
	}
	if err := service.store.ResetFailedAttempts(context, accountID); err != nil {
		return err
	}

	service.logger.InfoContext(context, "account_unlocked",
		slog.String("account_id", accountID),
	)

	return nil
}

/*
Lock places an enabled account under an administrative lock.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: apperr.AccountNotFound, apperr.Conflict when not enabled, or
    storage failures
*/
func (service *Service) Lock(context context.Context, accountID string) error {

	account, err := service.store.FindByID(context, accountID)
	if err != nil {
		return err
	}

	if account.Status != StatusEnabled {
		return apperr.Conflict("Only enabled accounts can be locked")
	}

	if err := service.store.UpdateStatus(context, accountID, StatusLocked, service.clock.Now()); err != nil {
		return err
	}

	service.logger.WarnContext(context, "account_admin_locked",
		slog.String("account_id", accountID),
	)

	return nil
}

/*
Disable shuts the account down administratively.

Description: A disabled account cannot authenticate, cannot reset its
password, and loses the last-factor protection on its credential inventory.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: apperr.AccountNotFound or storage failures
*/
func (service *Service) Disable(context context.Context, accountID string) error {

	if _, err := service.store.FindByID(context, accountID); err != nil {
		return err
	}

	if err := service.store.UpdateStatus(context, accountID, StatusDisabled, service.clock.Now()); err != nil {
		return err
	}

	service.logger.WarnContext(context, "account_disabled",
		slog.String("account_id", accountID),
	)

	return nil
}

// # Read Paths

// GetAccount returns the account with the given ID.
func (service *Service) GetAccount(context context.Context, accountID string) (*Account, error) {
	return service.store.FindByID(context, accountID)
}

// ListAccounts returns a page of accounts matching the filter, newest first,
// plus the total match count for pagination metadata.
func (service *Service) ListAccounts(context context.Context, filter Filter, limit, offset int) ([]*Account, int, error) {
	return service.store.List(context, filter, limit, offset)
}

// Disabled reports whether the account is administratively disabled. This
// satisfies the credential inventory's account gate.
func (service *Service) Disabled(context context.Context, accountID string) (bool, error) {
	return StoreGate{Store: service.store}.Disabled(context, accountID)
}

// StoreGate adapts an [AccountStore] into the credential inventory's account
// gate. It lets the inventory be wired before the account service exists.
type StoreGate struct {
	Store AccountStore
}

// Disabled reports whether the account is administratively disabled.
func (gate StoreGate) Disabled(context context.Context, accountID string) (bool, error) {
	account, err := gate.Store.FindByID(context, accountID)
	if err != nil {
		return false, err
	}
	return account.Status == StatusDisabled, nil
}
