// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package tokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sentrahq/sentra/internal/platform/apperr"
	"github.com/sentrahq/sentra/internal/platform/constants"
)

// # Redis Token Store

// Hash field names for a token key.
const (
	fieldAccountID  = "accountid"
	fieldPurpose    = "purpose"
	fieldIssuedAt   = "issuedat"
	fieldExpiresAt  = "expiresat"
	fieldConsumedAt = "consumedat"
)

// consumeScript sets consumedat only if the field is still absent. Running
// as a script makes the check-and-set atomic on the Redis side.
//
// Returns -1 when the key is gone, 0 when already consumed, 1 on success.
var consumeScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -1
	end
	if redis.call('HGET', KEYS[1], 'consumedat') then
		return 0
	end
	redis.call('HSET', KEYS[1], 'consumedat', ARGV[1])
	return 1
`)

// RedisTokenStore implements TokenStore on Redis hashes.
//
// Keys deliberately carry no Redis TTL: an expired token must stay readable
// so the ledger can report TOKEN_EXPIRED instead of TOKEN_NOT_FOUND. Physical
// removal is the sweeper's job, same as the PostgreSQL backend.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a Redis implementation of TokenStore.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

// key builds the Redis key for a token value.
func (store *RedisTokenStore) key(value string) string {
	return constants.RedisPrefixAuthToken + value
}

/*
Insert persists a new token hash.

Parameters:
  - context: context.Context
  - token: *AuthToken

Returns:
  - error: Execution errors
*/
func (store *RedisTokenStore) Insert(context context.Context, token *AuthToken) error {

	fields := map[string]any{
		fieldAccountID: token.AccountID,
		fieldPurpose:   string(token.Purpose),
		fieldIssuedAt:  token.IssuedAt.UnixNano(),
		fieldExpiresAt: token.ExpiresAt.UnixNano(),
	}

	if err := store.client.HSet(context, store.key(token.Value), fields).Err(); err != nil {
		return fmt.Errorf("redis_token_store_insert_failed: %w", err)
	}

	return nil
}

/*
FindByValue retrieves a token hash by its opaque value.

Parameters:
  - context: context.Context
  - value: string

Returns:
  - *AuthToken: Hydrated entity
  - error: apperr.TokenNotFound or execution errors
*/
func (store *RedisTokenStore) FindByValue(context context.Context, value string) (*AuthToken, error) {

	fields, err := store.client.HGetAll(context, store.key(value)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_token_store_find_failed: %w", err)
	}

	// HGetAll returns an empty map, not redis.Nil, for a missing key
	if len(fields) == 0 {
		return nil, apperr.TokenNotFound()
	}

	token := &AuthToken{
		Value:     value,
		AccountID: fields[fieldAccountID],
		Purpose:   Purpose(fields[fieldPurpose]),
	}

	if token.IssuedAt, err = parseNanos(fields[fieldIssuedAt]); err != nil {
		return nil, fmt.Errorf("redis_token_store_corrupt_issuedat: %w", err)
	}
	if token.ExpiresAt, err = parseNanos(fields[fieldExpiresAt]); err != nil {
		return nil, fmt.Errorf("redis_token_store_corrupt_expiresat: %w", err)
	}

	if raw, consumed := fields[fieldConsumedAt]; consumed {
		consumedAt, err := parseNanos(raw)
		if err != nil {
			return nil, fmt.Errorf("redis_token_store_corrupt_consumedat: %w", err)
		}
		token.ConsumedAt = &consumedAt
	}

	return token, nil
}

/*
AtomicConsume marks the token consumed via a server-side script.

Parameters:
  - context: context.Context
  - value: string
  - now: time.Time

Returns:
  - bool: true when this caller consumed the token
  - error: Execution errors
*/
func (store *RedisTokenStore) AtomicConsume(context context.Context, value string, now time.Time) (bool, error) {

	result, err := consumeScript.Run(context, store.client,
		[]string{store.key(value)},
		now.UnixNano(),
	).Int()

	if err != nil {
		return false, fmt.Errorf("redis_token_store_consume_failed: %w", err)
	}

	// A vanished key loses the race the same way a consumed one does
	return result == 1, nil
}

/*
DeleteExpiredBefore scans the token keyspace and removes expired hashes.

Description: Uses cursor-based SCAN so the traversal never blocks the server,
and stops once limit deletions have been performed.

Parameters:
  - context: context.Context
  - cutoff: time.Time
  - limit: int

Returns:
  - int: Keys removed
  - error: Execution errors
*/
func (store *RedisTokenStore) DeleteExpiredBefore(context context.Context, cutoff time.Time, limit int) (int, error) {

	removed := 0
	iterator := store.client.Scan(context, 0, constants.RedisPrefixAuthToken+"*", int64(limit)).Iterator()

	for iterator.Next(context) {
		if removed >= limit {
			break
		}

		key := iterator.Val()

		raw, err := store.client.HGet(context, key, fieldExpiresAt).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return removed, fmt.Errorf("redis_token_store_sweep_read_failed: %w", err)
		}

		expiresAt, err := parseNanos(raw)
		if err != nil {
			return removed, fmt.Errorf("redis_token_store_corrupt_expiresat: %w", err)
		}

		if !expiresAt.Before(cutoff) {
			continue
		}

		if err := store.client.Del(context, key).Err(); err != nil {
			return removed, fmt.Errorf("redis_token_store_sweep_delete_failed: %w", err)
		}
		removed++
	}

	if err := iterator.Err(); err != nil {
		return removed, fmt.Errorf("redis_token_store_scan_failed: %w", err)
	}

	return removed, nil
}

// parseNanos decodes a unix-nanosecond string field into a time.
func parseNanos(raw string) (time.Time, error) {
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, nanos), nil
}
