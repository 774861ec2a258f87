// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package tokens

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sentrahq/sentra/internal/platform/clock"
)

// # Expiration Sweeper

// Sweeper physically removes expired tokens in bounded batches.
//
// Sweeping is a storage-reclamation concern only. Correctness never depends
// on it: the ledger treats expired tokens as dead whether or not they still
// occupy a row.
type Sweeper struct {
	store     TokenStore
	clock     clock.Clock
	logger    *slog.Logger
	batchSize int
	interval  time.Duration
}

// NewSweeper constructs a token [Sweeper].
func NewSweeper(store TokenStore, clk clock.Clock, logger *slog.Logger, batchSize int, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:     store,
		clock:     clk,
		logger:    logger,
		batchSize: batchSize,
		interval:  interval,
	}
}

/*
PurgeExpired removes every token whose expiry has passed.

Description: Deletes in batches of the configured size until a batch comes
back short, keeping any single round-trip bounded. Idempotent: a second call
with no intervening expiries removes nothing and reports zero. Consumed but
unexpired tokens are left in place for audit until their expiry passes.

Parameters:
  - context: context.Context

Returns:
  - int: Total tokens removed across all batches
  - error: Deletion failures (the count reflects batches that did complete)
*/
func (sweeper *Sweeper) PurgeExpired(context context.Context) (int, error) {

	cutoff := sweeper.clock.Now()
	total := 0

	for {
		removed, err := sweeper.store.DeleteExpiredBefore(context, cutoff, sweeper.batchSize)
		total += removed
		if err != nil {
			return total, fmt.Errorf("token_sweeper_purge_failed: %w", err)
		}

		// A short batch means the backlog is drained.
		if removed < sweeper.batchSize {
			break
		}
	}

	if total > 0 {
		sweeper.logger.InfoContext(context, "expired_tokens_purged",
			slog.Int("removed", total),
		)
	}

	return total, nil
}

// Run purges on the configured interval until the context is cancelled.
// Intended to be launched as a background goroutine from main.
func (sweeper *Sweeper) Run(ctx context.Context) {

	ticker := time.NewTicker(sweeper.interval)
	defer ticker.Stop()

	sweeper.logger.Info("token_sweeper_started",
		slog.Duration("interval", sweeper.interval),
		slog.Int("batch_size", sweeper.batchSize),
	)

	for {
		select {
		case <-ctx.Done():
			sweeper.logger.Info("token_sweeper_stopped")
			return
		case <-ticker.C:
			if _, err := sweeper.PurgeExpired(ctx); err != nil {
				sweeper.logger.Error("token_sweep_failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
