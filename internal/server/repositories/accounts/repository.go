// Package accounts persists Account rows. Two implementations exist, one
// per storage backend, both speaking through dbx.DBTX so they can join an
// enclosing transaction.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

type Repository interface {
	// Create inserts a new account. A clash on the unique email column is
	// reported as common.ErrDuplicateEmail; uniqueness is enforced by the
	// storage layer, not by a prior existence check.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByEmail returns common.ErrNotFound when no account has the email.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// Exists reports whether an account with the email exists.
	Exists(ctx context.Context, email string) (bool, error)

	// FailedAttempts returns the account's counter, or 0 for unknown emails.
	FailedAttempts(ctx context.Context, email string) (int, error)

	// RecordOutcome resets the counter to zero on success or increments it
	// by one on failure, updating last_attempt either way. The arithmetic
	// happens inside the UPDATE so concurrent attempts against the same
	// email cannot lose updates. Unknown emails are a silent no-op.
	RecordOutcome(ctx context.Context, email string, success bool) error

	// GetAll lists accounts ordered by creation time, newest first.
	GetAll(ctx context.Context) ([]models.Account, error)

	// DeleteByEmail removes the account and reports whether a row was
	// affected. Audit rows referencing the account are retained.
	DeleteByEmail(ctx context.Context, email string) (bool, error)
}
