// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package tokens

import (
	"context"
	"time"
)

// # Token Data Access

// TokenStore defines the persistence contract for single-use tokens.
type TokenStore interface {

	/*
		Insert persists a freshly issued token.

		Parameters:
		  - context: context.Context
		  - token: *AuthToken

		Returns:
		  - error: Persistence failures
	*/
	Insert(context context.Context, token *AuthToken) error

	/*
		FindByValue returns the token with the given opaque value, consumed
		or not.

		Parameters:
		  - context: context.Context
		  - value: string

		Returns:
		  - *AuthToken: Hydrated entity
		  - error: apperr.TokenNotFound or retrieval failures
	*/
	FindByValue(context context.Context, value string) (*AuthToken, error)

	/*
		AtomicConsume marks the token consumed if and only if it has not been
		consumed yet. The check and the write are a single atomic operation so
		concurrent redeemers cannot both win.

		Parameters:
		  - context: context.Context
		  - value: string
		  - now: time.Time (consumption timestamp)

		Returns:
		  - bool: true when this caller performed the consumption
		  - error: Persistence failures
	*/
	AtomicConsume(context context.Context, value string, now time.Time) (bool, error)

	/*
		DeleteExpiredBefore physically removes up to limit tokens whose expiry
		is at or before the cutoff.

		Parameters:
		  - context: context.Context
		  - cutoff: time.Time
		  - limit: int

		Returns:
		  - int: Number of tokens removed
		  - error: Deletion failures
	*/
	DeleteExpiredBefore(context context.Context, cutoff time.Time, limit int) (int, error)
}
