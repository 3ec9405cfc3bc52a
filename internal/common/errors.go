// Package common defines shared sentinel errors used across the
// repositories, services and transports. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrValidation is always wrapped with a message describing the
	// offending field.
	ErrValidation = errors.New("validation error")

	// Challenge lifecycle errors.
	ErrNoActiveChallenge = errors.New("no active challenge")
	ErrChallengeDone     = errors.New("challenge already completed")
)
