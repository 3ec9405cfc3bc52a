// Package governor enforces the attempt-count lockout policy for login
// requests. It is a three-state machine per account, driven entirely by the
// persisted failed-attempt counter compared against a fixed threshold:
// below the threshold attempts are evaluated normally, at or above it they
// are rejected outright until the counter is reset. The counter survives
// process restarts and never decays on its own; a successful login or a
// completed verification challenge are the only reset paths.
package governor

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// DefaultMaxAttempts is the lockout threshold used when none is configured.
const DefaultMaxAttempts = 3

// CredentialStore is the subset of the credential store the governor needs.
type CredentialStore interface {
	Exists(ctx context.Context, email string) (bool, error)
	FailedAttempts(ctx context.Context, email string) (int, error)
	Authenticate(ctx context.Context, email, pw string) (*models.Account, error)
	RecordOutcome(ctx context.Context, email string, success bool) error
}

type OutcomeKind int

const (
	// OutcomeSuccess carries the authenticated account.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeFailed carries the number of attempts remaining.
	OutcomeFailed
	// OutcomeLockedOut signals the caller to start a verification challenge.
	OutcomeLockedOut
	// OutcomeNotFound means the email has no account. Unknown emails are
	// not throttled and have no lockout path.
	OutcomeNotFound
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeLockedOut:
		return "locked_out"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Outcome is the discriminated result of one login attempt.
type Outcome struct {
	Kind      OutcomeKind
	Account   *models.Account // set when Kind == OutcomeSuccess
	Remaining int             // set when Kind == OutcomeFailed
}

type Governor struct {
	store       CredentialStore
	maxAttempts int
	logger      logging.Logger
}

func New(store CredentialStore, maxAttempts int, logger logging.Logger) *Governor {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Governor{
		store:       store,
		maxAttempts: maxAttempts,
		logger:      logger.With("module", "governor"),
	}
}

// MaxAttempts returns the configured lockout threshold.
func (g *Governor) MaxAttempts() int {
	return g.maxAttempts
}

// Attempt evaluates one login request. Locked accounts are rejected before
// the credential digest is consulted and without touching the counter, so
// lockout is idempotent.
func (g *Governor) Attempt(ctx context.Context, email, pw string) (Outcome, error) {
	exists, err := g.store.Exists(ctx, email)
	if err != nil {
		return Outcome{}, fmt.Errorf("attempt: %w", err)
	}
	if !exists {
		return Outcome{Kind: OutcomeNotFound}, nil
	}

	attempts, err := g.store.FailedAttempts(ctx, email)
	if err != nil {
		return Outcome{}, fmt.Errorf("attempt: %w", err)
	}
	if attempts >= g.maxAttempts {
		g.logger.Info(ctx, "login rejected, account locked", "email", email, "attempts", attempts)
		return Outcome{Kind: OutcomeLockedOut}, nil
	}

	account, err := g.store.Authenticate(ctx, email, pw)
	if err != nil {
		return Outcome{}, fmt.Errorf("attempt: %w", err)
	}

	if account != nil {
		if err := g.store.RecordOutcome(ctx, email, true); err != nil {
			return Outcome{}, fmt.Errorf("attempt: %w", err)
		}
		g.logger.Info(ctx, "login succeeded", "email", email)
		return Outcome{Kind: OutcomeSuccess, Account: account}, nil
	}

	if err := g.store.RecordOutcome(ctx, email, false); err != nil {
		return Outcome{}, fmt.Errorf("attempt: %w", err)
	}

	attempts, err = g.store.FailedAttempts(ctx, email)
	if err != nil {
		return Outcome{}, fmt.Errorf("attempt: %w", err)
	}
	if attempts >= g.maxAttempts {
		g.logger.Warn(ctx, "account locked out", "email", email, "attempts", attempts)
		return Outcome{Kind: OutcomeLockedOut}, nil
	}

	return Outcome{Kind: OutcomeFailed, Remaining: g.maxAttempts - attempts}, nil
}

// Locked reports whether the account is at or above the lockout threshold.
func (g *Governor) Locked(ctx context.Context, email string) (bool, error) {
	attempts, err := g.store.FailedAttempts(ctx, email)
	if err != nil {
		return false, fmt.Errorf("locked: %w", err)
	}
	return attempts >= g.maxAttempts, nil
}

// Reset clears the account's attempt counter. It is the hook invoked when a
// verification challenge completes.
func (g *Governor) Reset(ctx context.Context, email string) error {
	if err := g.store.RecordOutcome(ctx, email, true); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	g.logger.Info(ctx, "attempt counter reset", "email", email)
	return nil
}
