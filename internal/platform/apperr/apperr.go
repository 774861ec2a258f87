// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

/*
Package apperr defines the centralized error handling framework for Sentra.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: Dedicated constructors for every account-security failure kind
    (token lifecycle, lockout, credential inventory, hierarchy configuration).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the Sentra API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "TOKEN_EXPIRED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Account") // Returns "Account not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Account State Errors

// AccountNotFound creates a 404 [AppError] for a missing account.
func AccountNotFound() *AppError {
	return &AppError{
		Code:       "ACCOUNT_NOT_FOUND",
		Message:    "Account not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// AccountLocked creates a 423 [AppError] for an account barred after repeated
// authentication failures. Returned before any credential comparison so the
// response does not reveal whether the supplied credential was correct.
func AccountLocked() *AppError {
	return &AppError{
		Code:       "ACCOUNT_LOCKED",
		Message:    "Account is locked due to repeated failed sign-in attempts",
		HTTPStatus: http.StatusLocked,
	}
}

// AccountDisabled creates a 403 [AppError] for an administratively disabled account.
func AccountDisabled() *AppError {
	return &AppError{
		Code:       "ACCOUNT_DISABLED",
		Message:    "Account is disabled",
		HTTPStatus: http.StatusForbidden,
	}
}

// AccountPending creates a 403 [AppError] for an account that has not completed
// email verification yet.
func AccountPending() *AppError {
	return &AppError{
		Code:       "ACCOUNT_PENDING_VERIFICATION",
		Message:    "Account has not been verified yet",
		HTTPStatus: http.StatusForbidden,
	}
}

// # Token Lifecycle Errors

// TokenNotFound creates a 404 [AppError] for an unknown token value.
func TokenNotFound() *AppError {
	return &AppError{
		Code:       "TOKEN_NOT_FOUND",
		Message:    "Token is invalid",
		HTTPStatus: http.StatusNotFound,
	}
}

// TokenExpired creates a 410 [AppError] for a token past its expiry.
// Distinct from [TokenAlreadyUsed] so callers can tell "link expired"
// apart from "link already used".
func TokenExpired() *AppError {
	return &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "Token has expired",
		HTTPStatus: http.StatusGone,
	}
}

// TokenAlreadyUsed creates a 409 [AppError] for a token that was consumed
// before, including the losing side of a concurrent consumption race.
func TokenAlreadyUsed() *AppError {
	return &AppError{
		Code:       "TOKEN_ALREADY_USED",
		Message:    "Token has already been used",
		HTTPStatus: http.StatusConflict,
	}
}

// PurposeMismatch creates a 400 [AppError] for a token presented against the
// wrong flow (e.g. a reset token on the verification endpoint).
func PurposeMismatch() *AppError {
	return &AppError{
		Code:       "PURPOSE_MISMATCH",
		Message:    "Token cannot be used for this action",
		HTTPStatus: http.StatusBadRequest,
	}
}

// # Credential Inventory Errors

// DuplicateCredential creates a 409 [AppError] for registering a factor whose
// credential ID already exists on the account.
func DuplicateCredential() *AppError {
	return &AppError{
		Code:       "DUPLICATE_CREDENTIAL",
		Message:    "Credential is already registered on this account",
		HTTPStatus: http.StatusConflict,
	}
}

// FactorNotFound creates a 404 [AppError] for an unknown authentication factor.
func FactorNotFound() *AppError {
	return &AppError{
		Code:       "FACTOR_NOT_FOUND",
		Message:    "Authentication factor not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// LastFactorRemovalDenied creates a 409 [AppError] raised when a removal would
// leave the account with no way to authenticate.
func LastFactorRemovalDenied() *AppError {
	return &AppError{
		Code:       "LAST_FACTOR_REMOVAL_DENIED",
		Message:    "Cannot remove the last authentication factor. Add a password or another passkey first.",
		HTTPStatus: http.StatusConflict,
	}
}

// InvalidLabel creates a 400 [AppError] for an empty or oversized factor label.
func InvalidLabel(msg string) *AppError {
	return &AppError{
		Code:       "INVALID_LABEL",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// # Hierarchy Configuration Errors
//
// These are fatal at startup: a role hierarchy must never be used half-compiled.

// CyclicHierarchy creates a 500 [AppError] for a role inheritance cycle.
func CyclicHierarchy(role string) *AppError {
	return &AppError{
		Code:       "CYCLIC_HIERARCHY",
		Message:    fmt.Sprintf("Role hierarchy contains a cycle through %q", role),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// DuplicateRole creates a 500 [AppError] for a role defined more than once.
func DuplicateRole(role string) *AppError {
	return &AppError{
		Code:       "DUPLICATE_ROLE",
		Message:    fmt.Sprintf("Role %q is defined more than once", role),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for maintenance mode.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsCode reports whether err is an [*AppError] carrying the given code.
func IsCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
