// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

// Package clock abstracts the system time source.
//
// # Architecture
//
// Every expiry comparison in the platform (token TTLs, lockout windows) goes
// through the [Clock] interface instead of calling time.Now directly. This
// makes expiry and race semantics fully deterministic under test.
package clock

import "time"

// Clock supplies the current time to components that perform expiry checks.
type Clock interface {
	Now() time.Time
}

// # System Clock

// System is the production [Clock] backed by time.Now.
type System struct{}

// Now returns the current wall-clock time.
func (System) Now() time.Time { return time.Now() }

// # Test Clock

// Frozen is a manually-advanced [Clock] for deterministic tests.
//
// # Concurrency
//
// Frozen is not safe for concurrent mutation. Tests that advance the clock
// from multiple goroutines must synchronize externally.
type Frozen struct {
	current time.Time
}

// NewFrozen creates a [Frozen] clock pinned at the given instant.
func NewFrozen(at time.Time) *Frozen {
	return &Frozen{current: at}
}

// Now returns the pinned instant.
func (frozen *Frozen) Now() time.Time { return frozen.current }

// Advance moves the pinned instant forward by d.
func (frozen *Frozen) Advance(d time.Duration) {
	frozen.current = frozen.current.Add(d)
}

// Set pins the clock to a specific instant.
func (frozen *Frozen) Set(at time.Time) {
	frozen.current = at
}
