package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by stores and
// services to communicate domain-specific error conditions.
// -----------------------------------------------------------------------------

// Profile errors
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoActiveProfile = errors.New("no active profile")
)

// Result errors
var (
	ErrResultNotFound  = errors.New("exercise result not found")
	ErrDuplicateResult = errors.New("exercise already has a correct result")
)

// Session errors
var (
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionComplete = errors.New("session already complete")
)

// General errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
