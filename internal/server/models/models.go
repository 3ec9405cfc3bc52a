// Package models defines the persisted entities of the access-control core.
package models

import "time"

// Account is a registered identity with credentials and attempt-count state.
// Email is the unique, case-sensitive lookup key. FailedAttempts is reset to
// zero exactly on a successful authentication or a completed verification
// challenge, and incremented by one on each failed authentication.
type Account struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	FailedAttempts int
	LastAttempt    *time.Time
	CreatedAt      time.Time
}

// AuditEntry is an immutable record of one authentication attempt.
// AccountID is nil when the attempted email did not resolve to an account,
// and keeps pointing at deleted accounts (audit rows are never cascaded).
type AuditEntry struct {
	ID          string
	AccountID   *string
	Email       string
	Success     bool
	AttemptTime time.Time
}

// AccountStats aggregates an account's profile with its audit totals.
type AccountStats struct {
	Name             string
	Email            string
	FailedAttempts   int
	CreatedAt        time.Time
	SuccessfulLogins int
	FailedLogins     int
}
