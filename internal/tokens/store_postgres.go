// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentrahq/sentra/internal/platform/apperr"
)

// # PostgreSQL Token Store

// PostgresTokenStore implements TokenStore on the iam.auth_token table.
//
// This is the default backend: tokens survive restarts and the single-use
// guarantee rides on a conditional UPDATE, which PostgreSQL serializes per
// row.
type PostgresTokenStore struct {
	pool *pgxpool.Pool
}

// NewPostgresTokenStore creates a PostgreSQL implementation of TokenStore.
func NewPostgresTokenStore(pool *pgxpool.Pool) *PostgresTokenStore {
	return &PostgresTokenStore{pool: pool}
}

/*
Insert persists a new token row.

Parameters:
  - context: context.Context
  - token: *AuthToken

Returns:
  - error: Constraint violations or connectivity errors
*/
func (store *PostgresTokenStore) Insert(context context.Context, token *AuthToken) error {
	const query = `
		INSERT INTO iam.auth_token (
			value, accountid, purpose, issuedat, expiresat, consumedat
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := store.pool.Exec(context, query,
		token.Value,
		token.AccountID,
		token.Purpose,
		token.IssuedAt,
		token.ExpiresAt,
		token.ConsumedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_token_store_insert_failed: %w", err)
	}

	return nil
}

/*
FindByValue retrieves a token by its opaque value.

Description: Consumed tokens are returned too; the ledger decides what a
consumed row means for the caller.

Parameters:
  - context: context.Context
  - value: string

Returns:
  - *AuthToken: Hydrated entity
  - error: apperr.TokenNotFound or execution errors
*/
func (store *PostgresTokenStore) FindByValue(context context.Context, value string) (*AuthToken, error) {
	const query = `
		SELECT value, accountid, purpose, issuedat, expiresat, consumedat
		FROM iam.auth_token
		WHERE value = $1`

	token := &AuthToken{}
	err := store.pool.QueryRow(context, query, value).Scan(
		&token.Value,
		&token.AccountID,
		&token.Purpose,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.ConsumedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.TokenNotFound()
		}
		return nil, fmt.Errorf("postgres_token_store_find_failed: %w", err)
	}

	return token, nil
}

/*
AtomicConsume marks the token consumed if it is still unconsumed.

Description: A conditional UPDATE carries the whole check-and-set; the row
count tells us whether this caller won the race.

Parameters:
  - context: context.Context
  - value: string
  - now: time.Time

Returns:
  - bool: true when this caller consumed the token
  - error: Execution errors
*/
func (store *PostgresTokenStore) AtomicConsume(context context.Context, value string, now time.Time) (bool, error) {
	const query = `
		UPDATE iam.auth_token
		SET consumedat = $2
		WHERE value = $1 AND consumedat IS NULL`

	tag, err := store.pool.Exec(context, query, value, now)
	if err != nil {
		return false, fmt.Errorf("postgres_token_store_consume_failed: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

/*
DeleteExpiredBefore removes up to limit expired token rows.

Description: The subselect bounds each round-trip so a large backlog never
turns into one long-running delete.

Parameters:
  - context: context.Context
  - cutoff: time.Time
  - limit: int

Returns:
  - int: Rows removed
  - error: Execution errors
*/
func (store *PostgresTokenStore) DeleteExpiredBefore(context context.Context, cutoff time.Time, limit int) (int, error) {
	const query = `
		DELETE FROM iam.auth_token
		WHERE value IN (
			SELECT value FROM iam.auth_token
			WHERE expiresat < $1
			LIMIT $2
		)`

	tag, err := store.pool.Exec(context, query, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("postgres_token_store_delete_expired_failed: %w", err)
	}

	return int(tag.RowsAffected()), nil
}
