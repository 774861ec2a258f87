// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package factors

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sentrahq/sentra/internal/platform/apperr"
	"github.com/sentrahq/sentra/internal/platform/clock"
	"github.com/sentrahq/sentra/internal/platform/constants"
	"github.com/sentrahq/sentra/internal/platform/sec"
	"github.com/sentrahq/sentra/internal/platform/validate"
	"github.com/sentrahq/sentra/pkg/uuid"
)

// # Account State Gate

// AccountGate is the narrow view of account state the inventory needs.
// Implemented by the accounts service; kept as an interface so this package
// never depends on account internals.
type AccountGate interface {

	// Disabled reports whether the account is administratively disabled.
	Disabled(context context.Context, accountID string) (bool, error)
}

// # Inventory Service

// Service manages an account's credential inventory.
type Service struct {
	store  FactorStore
	gate   AccountGate
	clock  clock.Clock
	logger *slog.Logger
}

// NewService constructs the factor inventory [Service].
func NewService(store FactorStore, gate AccountGate, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		gate:   gate,
		clock:  clk,
		logger: logger,
	}
}

// AddPasskeyInput carries a verified passkey registration.
type AddPasskeyInput struct {
	CredentialID   string
	Label          string
	PublicKey      string
	SignCount      int64
	BackupEligible *bool
	BackupState    *bool
}

/*
AddPasskey registers a new passkey credential for the account.

Description: Normalizes and validates the label, then inserts the factor. A
credential ID already present on the account surfaces as
DUPLICATE_CREDENTIAL. The password slot is managed separately through
[Service.SetPassword]; this method only grows the passkey inventory.

Parameters:
  - context: context.Context
  - accountID: string
  - input: AddPasskeyInput

Returns:
  - *Factor: The registered factor
  - error: apperr.InvalidLabel, apperr.DuplicateCredential, or persistence
    failures
*/
func (service *Service) AddPasskey(context context.Context, accountID string, input AddPasskeyInput) (*Factor, error) {

	label, err := cleanLabel(input.Label)
	if err != nil {
		return nil, err
	}

	if input.CredentialID == "" {
		return nil, validate.RequiredError("credential_id", "Credential ID is required")
	}

	factor := &Factor{
		ID:             uuid.New(),
		AccountID:      accountID,
		Kind:           KindPasskey,
		CredentialID:   input.CredentialID,
		Label:          label,
		SecretHash:     input.PublicKey,
		SignCount:      input.SignCount,
		BackupEligible: input.BackupEligible,
		BackupState:    input.BackupState,
		CreatedAt:      service.clock.Now(),
	}

	if err := service.store.Insert(context, factor); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "factor_added",
		slog.String("account_id", accountID),
		slog.String("factor_id", factor.ID),
		slog.String("kind", string(KindPasskey)),
	)

	return factor, nil
}

/*
SetPassword creates or replaces the account's password slot.

Description: Hashes the plaintext with bcrypt and upserts the single password
factor. The caller retains ownership of the plaintext buffer and is expected
to wipe it.

Parameters:
  - context: context.Context
  - accountID: string
  - password: []byte (plaintext; not retained)

Returns:
  - error: Hashing or persistence failures
*/
func (service *Service) SetPassword(context context.Context, accountID string, password []byte) error {

	hash, err := sec.HashPassword(password)
	if err != nil {
		return fmt.Errorf("factor_service_hash_failed: %w", err)
	}

	factor := &Factor{
		ID:           uuid.New(),
		AccountID:    accountID,
		Kind:         KindPassword,
		CredentialID: constants.PasswordSlotID,
		Label:        "Password",
		SecretHash:   hash,
		CreatedAt:    service.clock.Now(),
	}

	if err := service.store.UpsertPassword(context, factor); err != nil {
		return err
	}

	service.logger.InfoContext(context, "password_factor_set",
		slog.String("account_id", accountID),
	)

	return nil
}

/*
VerifyPassword checks a plaintext password against the account's slot.

Description: A match also stamps the factor's last-used instant. The caller
retains ownership of the plaintext buffer.

Parameters:
  - context: context.Context
  - accountID: string
  - password: []byte (plaintext; not retained)

Returns:
  - bool: true on a hash match
  - error: apperr.FactorNotFound when no password is set, or retrieval
    failures
*/
func (service *Service) VerifyPassword(context context.Context, accountID string, password []byte) (bool, error) {

	factor, err := service.store.FindPassword(context, accountID)
	if err != nil {
		return false, err
	}

	if !sec.CheckPasswordHash(password, factor.SecretHash) {
		return false, nil
	}

	// Best effort; a failed stamp must not fail the login
	if err := service.store.TouchUsed(context, accountID, factor.ID, service.clock.Now(), 0); err != nil {
		service.logger.WarnContext(context, "factor_touch_failed",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
	}

	return true, nil
}

/*
Remove deletes a factor from the account's inventory.

Description: An enabled account must always keep at least one factor, so the
guarded path refuses to remove the last one. Disabled accounts cannot
authenticate regardless, so their inventory may be emptied freely.

Parameters:
  - context: context.Context
  - accountID: string
  - factorID: string

Returns:
  - error: apperr.FactorNotFound, apperr.LastFactorRemovalDenied, or
    persistence failures
*/
func (service *Service) Remove(context context.Context, accountID, factorID string) error {

	disabled, err := service.gate.Disabled(context, accountID)
	if err != nil {
		return err
	}

	if disabled {
		err = service.store.Delete(context, accountID, factorID)
	} else {
		err = service.store.DeleteGuarded(context, accountID, factorID)
	}
	if err != nil {
		return err
	}

	service.logger.InfoContext(context, "factor_removed",
		slog.String("account_id", accountID),
		slog.String("factor_id", factorID),
	)

	return nil
}

/*
List returns the account's factors in registration order.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - []*Factor: Ordered inventory (empty, never nil)
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, accountID string) ([]*Factor, error) {
	return service.store.ListByAccount(context, accountID)
}

/*
Rename updates a factor's label.

Parameters:
  - context: context.Context
  - accountID: string
  - factorID: string
  - label: string

Returns:
  - error: apperr.InvalidLabel, apperr.FactorNotFound, or persistence
    failures
*/
func (service *Service) Rename(context context.Context, accountID, factorID, label string) error {

	cleaned, err := cleanLabel(label)
	if err != nil {
		return err
	}

	return service.store.UpdateLabel(context, accountID, factorID, cleaned)
}

/*
MarkUsed records a successful authentication with a passkey.

Parameters:
  - context: context.Context
  - accountID: string
  - factorID: string
  - signCount: int64 (authenticator counter after the assertion)

Returns:
  - error: Persistence failures
*/
func (service *Service) MarkUsed(context context.Context, accountID, factorID string, signCount int64) error {
	return service.store.TouchUsed(context, accountID, factorID, service.clock.Now(), signCount)
}

// cleanLabel normalizes a user-supplied label and enforces the length rules.
func cleanLabel(label string) (string, error) {

	cleaned := validate.NormalizeLabel(label)

	if cleaned == "" {
		return "", apperr.InvalidLabel("Label must not be empty")
	}
	if len([]rune(cleaned)) > constants.FactorLabelMaxLen {
		return "", apperr.InvalidLabel(fmt.Sprintf("Label must be at most %d characters", constants.FactorLabelMaxLen))
	}

	return cleaned, nil
}
