// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package factors

import (
	"context"
	"time"
)

// # Factor Data Access

// FactorStore defines the persistence contract for the credential inventory.
type FactorStore interface {

	/*
		Insert persists a new factor.

		Parameters:
		  - context: context.Context
		  - factor: *Factor

		Returns:
		  - error: apperr.DuplicateCredential on a credential ID collision,
		    or persistence failures
	*/
	Insert(context context.Context, factor *Factor) error

	/*
		FindByID returns the factor with the given ID, scoped to an account.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - factorID: string

		Returns:
		  - *Factor: Hydrated entity
		  - error: apperr.FactorNotFound or retrieval failures
	*/
	FindByID(context context.Context, accountID, factorID string) (*Factor, error)

	/*
		FindPassword returns the account's password slot factor.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - *Factor: Hydrated entity
		  - error: apperr.FactorNotFound or retrieval failures
	*/
	FindPassword(context context.Context, accountID string) (*Factor, error)

	/*
		ListByAccount returns all factors of the account in registration order.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - []*Factor: Ordered inventory (empty slice when none)
		  - error: Retrieval failures
	*/
	ListByAccount(context context.Context, accountID string) ([]*Factor, error)

	/*
		DeleteGuarded removes the factor unless it is the account's last one.
		The count check and the delete run in one transaction against a lock
		on the account's inventory, so concurrent removals cannot both pass
		the guard.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - factorID: string

		Returns:
		  - error: apperr.FactorNotFound, apperr.LastFactorRemovalDenied,
		    or persistence failures
	*/
	DeleteGuarded(context context.Context, accountID, factorID string) error

	/*
		Delete removes the factor without the last-factor guard. Used only
		for accounts that can no longer authenticate anyway.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - factorID: string

		Returns:
		  - error: apperr.FactorNotFound or persistence failures
	*/
	Delete(context context.Context, accountID, factorID string) error

	/*
		UpdateLabel renames a factor.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - factorID: string
		  - label: string (already normalized and validated)

		Returns:
		  - error: apperr.FactorNotFound or persistence failures
	*/
	UpdateLabel(context context.Context, accountID, factorID, label string) error

	/*
		TouchUsed records a successful authentication with the factor.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - factorID: string
		  - now: time.Time
		  - signCount: int64 (authenticator counter; ignored for passwords)

		Returns:
		  - error: Persistence failures
	*/
	TouchUsed(context context.Context, accountID, factorID string, now time.Time, signCount int64) error

	/*
		UpsertPassword creates or replaces the account's password slot hash.

		Parameters:
		  - context: context.Context
		  - factor: *Factor (password slot entity with the new hash)

		Returns:
		  - error: Persistence failures
	*/
	UpsertPassword(context context.Context, factor *Factor) error
}
