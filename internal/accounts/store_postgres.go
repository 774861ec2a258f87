// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentrahq/sentra/internal/platform/apperr"
	"github.com/sentrahq/sentra/internal/platform/dberr"
)

// # PostgreSQL Account Store

// PostgresAccountStore implements AccountStore on the iam.account table.
type PostgresAccountStore struct {
	pool *pgxpool.Pool
}

// NewPostgresAccountStore creates a PostgreSQL implementation of AccountStore.
func NewPostgresAccountStore(pool *pgxpool.Pool) *PostgresAccountStore {
	return &PostgresAccountStore{pool: pool}
}

const accountColumns = `
	id, email, displayname, roles, status,
	failedattempts, lastfailedat, lockedat, createdat, updatedat`

// scanAccount hydrates one account row.
func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.DisplayName,
		&account.Roles,
		&account.Status,
		&account.FailedAttempts,
		&account.LastFailedAt,
		&account.LockedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

/*
Create persists a new account row.

Description: The unique index on email is the source of truth for duplicate
registration; a violation maps to a client-safe Conflict.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: apperr.Conflict or connectivity errors
*/
func (store *PostgresAccountStore) Create(context context.Context, account *Account) error {
	const query = `
		INSERT INTO iam.account (
			id, email, displayname, roles, status,
			failedattempts, lastfailedat, lockedat, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := store.pool.Exec(context, query,
		account.ID,
		account.Email,
		account.DisplayName,
		account.Roles,
		account.Status,
		account.FailedAttempts,
		account.LastFailedAt,
		account.LockedAt,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_account_store_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves an account by its primary key.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Account: Hydrated entity
  - error: apperr.AccountNotFound or execution errors
*/
func (store *PostgresAccountStore) FindByID(context context.Context, id string) (*Account, error) {
	query := `
		SELECT` + accountColumns + `
		FROM iam.account
		WHERE id = $1`

	account, err := scanAccount(store.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.AccountNotFound()
		}
		return nil, fmt.Errorf("postgres_account_store_find_by_id_failed: %w", err)
	}

	return account, nil
}

/*
FindByEmail retrieves an account by its unique email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Account: Hydrated entity
  - error: apperr.AccountNotFound or execution errors
*/
func (store *PostgresAccountStore) FindByEmail(context context.Context, email string) (*Account, error) {
	query := `
		SELECT` + accountColumns + `
		FROM iam.account
		WHERE email = $1`

	account, err := scanAccount(store.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.AccountNotFound()
		}
		return nil, fmt.Errorf("postgres_account_store_find_by_email_failed: %w", err)
	}

	return account, nil
}

/*
UpdateStatus moves an account to a new lifecycle state.

Description: A transition into locked stamps lockedat; every other transition
clears it.

Parameters:
  - context: context.Context
  - id: string
  - status: Status
  - now: time.Time

Returns:
  - error: apperr.AccountNotFound or execution errors
*/
func (store *PostgresAccountStore) UpdateStatus(context context.Context, id string, status Status, now time.Time) error {
	const query = `
		UPDATE iam.account
		SET status = $2,
		    lockedat = CASE WHEN $2 = 'locked' THEN $3 ELSE NULL END,
		    updatedat = $3
		WHERE id = $1`

	tag, err := store.pool.Exec(context, query, id, status, now)
	if err != nil {
		return fmt.Errorf("postgres_account_store_update_status_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.AccountNotFound()
	}

	return nil
}

/*
IncrementFailedAttempts bumps the failure counter atomically.

Description: A single UPDATE with RETURNING keeps the read-modify-write on
the server, so concurrent failures across instances all land.

Parameters:
  - context: context.Context
  - id: string
  - now: time.Time
  - cap: int

Returns:
  - int: Post-increment counter value
  - error: apperr.AccountNotFound or execution errors
*/
func (store *PostgresAccountStore) IncrementFailedAttempts(context context.Context, id string, now time.Time, cap int) (int, error) {
	const query = `
		UPDATE iam.account
		SET failedattempts = LEAST(failedattempts + 1, $3),
		    lastfailedat = $2,
		    updatedat = $2
		WHERE id = $1
		RETURNING failedattempts`

	var attempts int
	err := store.pool.QueryRow(context, query, id, now, cap).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.AccountNotFound()
		}
		return 0, fmt.Errorf("postgres_account_store_increment_failed: %w", err)
	}

	return attempts, nil
}

/*
List returns a page of accounts matching the filter, newest first.

Description: The filter clauses are built dynamically; every value travels as
a bind parameter. The total count runs as a second query over the same
predicate so the pagination metadata stays consistent with the page.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Account: One page of matches
  - int: Total matches across all pages
  - error: Execution errors
*/
func (store *PostgresAccountStore) List(context context.Context, filter Filter, limit, offset int) ([]*Account, int, error) {
	where := ""
	args := []any{}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			statuses[i] = string(status)
		}
		args = append(args, statuses)
		where = fmt.Sprintf(" WHERE status = ANY($%d)", len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		clause := fmt.Sprintf("(email ILIKE $%d OR displayname ILIKE $%d)", len(args), len(args))
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM iam.account` + where
	if err := store.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_store_count_failed: %w", err)
	}

	args = append(args, limit, offset)
	pageQuery := fmt.Sprintf(`
		SELECT`+accountColumns+`
		FROM iam.account`+where+`
		ORDER BY createdat DESC, id
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := store.pool.Query(context, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_store_list_failed: %w", err)
	}
	defer rows.Close()

	accounts := make([]*Account, 0, limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_account_store_list_scan_failed: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_store_list_rows_failed: %w", err)
	}

	return accounts, total, nil
}

/*
ResetFailedAttempts zeroes the failure counter.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution errors
*/
func (store *PostgresAccountStore) ResetFailedAttempts(context context.Context, id string) error {
	const query = `
		UPDATE iam.account
		SET failedattempts = 0, lastfailedat = NULL
		WHERE id = $1`

	_, err := store.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_account_store_reset_failed: %w", err)
	}

	return nil
}
