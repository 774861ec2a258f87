// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package factors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentrahq/sentra/internal/platform/apperr"
	"github.com/sentrahq/sentra/internal/platform/constants"
	"github.com/sentrahq/sentra/internal/platform/dberr"
)

// # PostgreSQL Factor Store

// PostgresFactorStore implements FactorStore on the iam.auth_factor table.
type PostgresFactorStore struct {
	pool *pgxpool.Pool
}

// NewPostgresFactorStore creates a PostgreSQL implementation of FactorStore.
func NewPostgresFactorStore(pool *pgxpool.Pool) *PostgresFactorStore {
	return &PostgresFactorStore{pool: pool}
}

const factorColumns = `
	id, accountid, kind, credentialid, label, secrethash,
	signcount, backupeligible, backupstate, createdat, lastusedat`

// scanFactor hydrates one factor row.
func scanFactor(row pgx.Row) (*Factor, error) {
	factor := &Factor{}
	err := row.Scan(
		&factor.ID,
		&factor.AccountID,
		&factor.Kind,
		&factor.CredentialID,
		&factor.Label,
		&factor.SecretHash,
		&factor.SignCount,
		&factor.BackupEligible,
		&factor.BackupState,
		&factor.CreatedAt,
		&factor.LastUsedAt,
	)
	return factor, err
}

/*
Insert persists a new factor row.

Description: The (accountid, credentialid) unique constraint is the source of
truth for duplicate detection; a violation maps to DUPLICATE_CREDENTIAL.

Parameters:
  - context: context.Context
  - factor: *Factor

Returns:
  - error: apperr.DuplicateCredential or connectivity errors
*/
func (store *PostgresFactorStore) Insert(context context.Context, factor *Factor) error {
	const query = `
		INSERT INTO iam.auth_factor (
			id, accountid, kind, credentialid, label, secrethash,
			signcount, backupeligible, backupstate, createdat, lastusedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := store.pool.Exec(context, query,
		factor.ID,
		factor.AccountID,
		factor.Kind,
		factor.CredentialID,
		factor.Label,
		factor.SecretHash,
		factor.SignCount,
		factor.BackupEligible,
		factor.BackupState,
		factor.CreatedAt,
		factor.LastUsedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.DuplicateCredential()
		}
		return fmt.Errorf("postgres_factor_store_insert_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a factor scoped to its account.

Parameters:
  - context: context.Context
  - accountID: string
  - factorID: string

Returns:
  - *Factor: Hydrated entity
  - error: apperr.FactorNotFound or execution errors
*/
func (store *PostgresFactorStore) FindByID(context context.Context, accountID, factorID string) (*Factor, error) {
	query := `
		SELECT` + factorColumns + `
		FROM iam.auth_factor
		WHERE id = $1 AND accountid = $2`

	factor, err := scanFactor(store.pool.QueryRow(context, query, factorID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.FactorNotFound()
		}
		return nil, fmt.Errorf("postgres_factor_store_find_failed: %w", err)
	}

	return factor, nil
}

/*
FindPassword retrieves the account's password slot factor.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Factor: Hydrated entity
  - error: apperr.FactorNotFound or execution errors
*/
func (store *PostgresFactorStore) FindPassword(context context.Context, accountID string) (*Factor, error) {
	query := `
		SELECT` + factorColumns + `
		FROM iam.auth_factor
		WHERE accountid = $1 AND credentialid = $2`

	factor, err := scanFactor(store.pool.QueryRow(context, query, accountID, constants.PasswordSlotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.FactorNotFound()
		}
		return nil, fmt.Errorf("postgres_factor_store_find_password_failed: %w", err)
	}

	return factor, nil
}

/*
ListByAccount retrieves the account's factors in registration order.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - []*Factor: Ordered inventory (empty slice when none)
  - error: Execution errors
*/
func (store *PostgresFactorStore) ListByAccount(context context.Context, accountID string) ([]*Factor, error) {
	query := `
		SELECT` + factorColumns + `
		FROM iam.auth_factor
		WHERE accountid = $1
		ORDER BY createdat, id`

	rows, err := store.pool.Query(context, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("postgres_factor_store_list_failed: %w", err)
	}
	defer rows.Close()

	factors := make([]*Factor, 0)
	for rows.Next() {
		factor, err := scanFactor(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_factor_store_scan_failed: %w", err)
		}
		factors = append(factors, factor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_factor_store_rows_failed: %w", err)
	}

	return factors, nil
}

/*
DeleteGuarded removes a factor unless it is the account's last one.

Description: Locks the account's inventory rows inside a transaction, counts
them, then deletes. The row locks serialize concurrent removals so two racing
callers cannot both observe a count of two and empty an enabled account.

Parameters:
  - context: context.Context
  - accountID: string
  - factorID: string

Returns:
  - error: apperr.FactorNotFound, apperr.LastFactorRemovalDenied, or
    execution errors
*/
func (store *PostgresFactorStore) DeleteGuarded(context context.Context, accountID, factorID string) error {

	transaction, err := store.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_factor_store_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	// Lock every factor row of the account for the duration of the check.
	const lockQuery = `
		SELECT COUNT(*)
		FROM (
			SELECT id FROM iam.auth_factor
			WHERE accountid = $1
			FOR UPDATE
		) locked`

	var total int
	if err := transaction.QueryRow(context, lockQuery, accountID).Scan(&total); err != nil {
		return fmt.Errorf("postgres_factor_store_count_failed: %w", err)
	}

	if total <= 1 {
		// Distinguish "last factor" from "no such factor" for the caller.
		if total == 0 {
			return apperr.FactorNotFound()
		}
		var exists bool
		const existsQuery = `SELECT EXISTS (SELECT 1 FROM iam.auth_factor WHERE id = $1 AND accountid = $2)`
		if err := transaction.QueryRow(context, existsQuery, factorID, accountID).Scan(&exists); err != nil {
			return fmt.Errorf("postgres_factor_store_exists_failed: %w", err)
		}
		if !exists {
			return apperr.FactorNotFound()
		}
		return apperr.LastFactorRemovalDenied()
	}

	const deleteQuery = `DELETE FROM iam.auth_factor WHERE id = $1 AND accountid = $2`
	tag, err := transaction.Exec(context, deleteQuery, factorID, accountID)
	if err != nil {
		return fmt.Errorf("postgres_factor_store_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.FactorNotFound()
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_factor_store_commit_failed: %w", err)
	}

	return nil
}

/*
Delete removes a factor without the last-factor guard.

Parameters:
  - context: context.Context
  - accountID: string
  - factorID: string

Returns:
  - error: apperr.FactorNotFound or execution errors
*/
func (store *PostgresFactorStore) Delete(context context.Context, accountID, factorID string) error {
	const query = `DELETE FROM iam.auth_factor WHERE id = $1 AND accountid = $2`

	tag, err := store.pool.Exec(context, query, factorID, accountID)
	if err != nil {
		return fmt.Errorf("postgres_factor_store_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.FactorNotFound()
	}

	return nil
}

/*
UpdateLabel renames a factor.

Parameters:
  - context: context.Context
  - accountID: string
  - factorID: string
  - label: string

Returns:
  - error: apperr.FactorNotFound or execution errors
*/
func (store *PostgresFactorStore) UpdateLabel(context context.Context, accountID, factorID, label string) error {
	const query = `
		UPDATE iam.auth_factor
		SET label = $3
		WHERE id = $1 AND accountid = $2`

	tag, err := store.pool.Exec(context, query, factorID, accountID, label)
	if err != nil {
		return fmt.Errorf("postgres_factor_store_update_label_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.FactorNotFound()
	}

	return nil
}

/*
TouchUsed stamps a factor's last successful use.

Description: The sign counter only moves forward; a stale assertion can never
rewind it.

Parameters:
  - context: context.Context
  - accountID: string
  - factorID: string
  - now: time.Time
  - signCount: int64

Returns:
  - error: Execution errors
*/
func (store *PostgresFactorStore) TouchUsed(context context.Context, accountID, factorID string, now time.Time, signCount int64) error {
	const query = `
		UPDATE iam.auth_factor
		SET lastusedat = $3, signcount = GREATEST(signcount, $4)
		WHERE id = $1 AND accountid = $2`

	_, err := store.pool.Exec(context, query, factorID, accountID, now, signCount)
	if err != nil {
		return fmt.Errorf("postgres_factor_store_touch_failed: %w", err)
	}

	return nil
}

/*
UpsertPassword creates or replaces the account's password slot.

Description: Rides on the (accountid, credentialid) unique constraint; an
existing slot keeps its row identity and registration instant, only the hash
moves.

Parameters:
  - context: context.Context
  - factor: *Factor

Returns:
  - error: Execution errors
*/
func (store *PostgresFactorStore) UpsertPassword(context context.Context, factor *Factor) error {
	const query = `
		INSERT INTO iam.auth_factor (
			id, accountid, kind, credentialid, label, secrethash,
			signcount, backupeligible, backupstate, createdat, lastusedat
		) VALUES ($1, $2, $3, $4, $5, $6, 0, NULL, NULL, $7, NULL)
		ON CONFLICT (accountid, credentialid)
		DO UPDATE SET secrethash = EXCLUDED.secrethash`

	_, err := store.pool.Exec(context, query,
		factor.ID,
		factor.AccountID,
		factor.Kind,
		factor.CredentialID,
		factor.Label,
		factor.SecretHash,
		factor.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_factor_store_upsert_password_failed: %w", err)
	}

	return nil
}
