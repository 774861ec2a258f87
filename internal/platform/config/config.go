// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Sentra API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Cryptographic keys for identity signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// RolesPath is the filesystem path to the role/privilege hierarchy file.
	// Compilation failures here are fatal at startup: the service never runs
	// with a partially-loaded hierarchy.
	RolesPath string `env:"ROLES_PATH" envDefault:"./data/roles.json"`

	// LockoutThreshold is the number of consecutive failed sign-in attempts
	// before an account is locked. 0 disables failure-based locking entirely.
	LockoutThreshold int `env:"LOCKOUT_THRESHOLD" envDefault:"5"`

	// LockoutDuration is the automatic unlock window. 0 means locked accounts
	// can only be unlocked administratively; a positive value lets an attempt
	// arriving after the window implicitly unlock the account first.
	LockoutDuration time.Duration `env:"LOCKOUT_DURATION" envDefault:"0"`

	// VerificationTokenTTL is how long an email verification token stays
	// usable. Long-lived (24 hours) as users might not check email immediately.
	VerificationTokenTTL time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`

	// ResetTokenTTL is how long a password reset token stays usable.
	// Short-lived (1 hour) for security.
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`

	// AccessTokenTTL is the lifetime of issued JWT access tokens.
	// Kept short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`

	// SweepInterval is how often the expired-token sweeper runs.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`

	// SweepBatchSize bounds a single purge pass so one sweep cannot hold a
	// long-running delete over a large token table.
	SweepBatchSize int `env:"SWEEP_BATCH_SIZE" envDefault:"500"`

	// TokenBackend selects the single-use token store: "postgres" or "redis".
	TokenBackend string `env:"TOKEN_BACKEND" envDefault:"postgres"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects combinations the rest of the platform cannot honor.
func (c *Config) validate() error {
	if c.LockoutThreshold < 0 {
		return fmt.Errorf("config: LOCKOUT_THRESHOLD must be >= 0, got %d", c.LockoutThreshold)
	}
	if c.LockoutDuration < 0 {
		return fmt.Errorf("config: LOCKOUT_DURATION must be >= 0, got %s", c.LockoutDuration)
	}
	if c.SweepBatchSize <= 0 {
		return fmt.Errorf("config: SWEEP_BATCH_SIZE must be > 0, got %d", c.SweepBatchSize)
	}
	if c.TokenBackend != "postgres" && c.TokenBackend != "redis" {
		return fmt.Errorf("config: TOKEN_BACKEND must be \"postgres\" or \"redis\", got %q", c.TokenBackend)
	}
	return nil
}

// AutoUnlockEnabled reports whether time-based lockout expiry is configured.
func (c *Config) AutoUnlockEnabled() bool {
	return c.LockoutDuration > 0
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
