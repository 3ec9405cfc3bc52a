// Package audit persists the append-only log of authentication attempts.
// Entries are written once and never mutated or deleted; rows survive
// deletion of the account they reference.
package audit

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

type Repository interface {
	// Append writes one attempt record. AccountID is nil when the email
	// did not resolve to an account at attempt time.
	Append(ctx context.Context, entry *models.AuditEntry) (*models.AuditEntry, error)

	// CountByAccount returns the number of successful and failed attempts
	// recorded for the account.
	CountByAccount(ctx context.Context, accountID string) (succeeded int, failed int, err error)

	// ListByEmail returns the most recent attempts for the email, newest
	// first, capped at limit (no cap when limit <= 0).
	ListByEmail(ctx context.Context, email string, limit int) ([]models.AuditEntry, error)
}
