// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package accounts

import (
	"context"
	"time"
)

// Filter narrows an account listing.
type Filter struct {
	// Statuses restricts results to the given lifecycle states. Empty means
	// all states.
	Statuses []Status

	// Query matches case-insensitively against email and display name.
	Query string
}

// # Account Data Access

// AccountStore defines the persistence contract for accounts.
type AccountStore interface {

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: apperr.Conflict on a duplicate email, or persistence
		    failures
	*/
	Create(context context.Context, account *Account) error

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.AccountNotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.AccountNotFound or retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		UpdateStatus moves the account to a new lifecycle state. A locking
		transition stamps LockedAt; any other transition clears it.

		Parameters:
		  - context: context.Context
		  - id: string
		  - status: Status
		  - now: time.Time

		Returns:
		  - error: apperr.AccountNotFound or persistence failures
	*/
	UpdateStatus(context context.Context, id string, status Status, now time.Time) error

	/*
		IncrementFailedAttempts bumps the failure counter atomically and
		returns the post-increment value. The counter saturates at cap so a
		burst of failures past the threshold cannot overflow it.

		Parameters:
		  - context: context.Context
		  - id: string
		  - now: time.Time
		  - cap: int

		Returns:
		  - int: Counter value after the increment
		  - error: apperr.AccountNotFound or persistence failures
	*/
	IncrementFailedAttempts(context context.Context, id string, now time.Time, cap int) (int, error)

	/*
		List returns a page of accounts matching the filter, newest first,
		together with the total match count.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - limit: int
		  - offset: int

		Returns:
		  - []*Account: One page of matches
		  - int: Total matches across all pages
		  - error: Retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Account, int, error)

	/*
		ResetFailedAttempts zeroes the failure counter.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	ResetFailedAttempts(context context.Context, id string) error
}
