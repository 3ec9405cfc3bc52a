// Package store implements the credential store: the single owner of
// persisted accounts and the append-only audit log.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/password"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
)

type Store struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	hasher password.Hasher
	logger logging.Logger
}

func New(db *sql.DB, repos repomanager.RepositoryManager, hasher password.Hasher, logger logging.Logger) *Store {
	return &Store{
		db:     db,
		repos:  repos,
		hasher: hasher,
		logger: logger.With("module", "store"),
	}
}

// Exists reports whether an account with the email exists.
func (s *Store) Exists(ctx context.Context, email string) (bool, error) {
	return s.repos.Accounts(s.db).Exists(ctx, email)
}

// FailedAttempts returns the account's counter, or 0 for unknown emails.
func (s *Store) FailedAttempts(ctx context.Context, email string) (int, error) {
	return s.repos.Accounts(s.db).FailedAttempts(ctx, email)
}

// Authenticate verifies the password digest for the email and returns the
// account on a match, or nil without error on a mismatch or unknown email.
//
// Every call appends exactly one audit entry mirroring the result; this is
// the single source of audit truth and must not be bypassed. The entry is
// written in its own statement, separate from any counter update: the audit
// log has at-least-once semantics relative to the attempt counter.
func (s *Store) Authenticate(ctx context.Context, email, pw string) (*models.Account, error) {
	account, err := s.repos.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	matched := false
	var accountID *string
	if account != nil {
		matched = s.hasher.Verify(account.PasswordHash, pw)
		accountID = &account.ID
	}

	entry := &models.AuditEntry{AccountID: accountID, Email: email, Success: matched}
	if _, err := s.repos.Audit(s.db).Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !matched {
		return nil, nil
	}
	return account, nil
}

// RecordOutcome resets the counter on success or increments it on failure,
// updating the last-attempt time either way. Unknown emails are a no-op.
func (s *Store) RecordOutcome(ctx context.Context, email string, success bool) error {
	return s.repos.Accounts(s.db).RecordOutcome(ctx, email, success)
}

// Register creates an account with a zero attempt counter. It returns false
// without error when the email is already taken; uniqueness is enforced by
// the storage layer, so a concurrent duplicate insert cannot slip through.
func (s *Store) Register(ctx context.Context, name, email, pw string) (bool, error) {
	digest, err := s.hasher.Hash(pw)
	if err != nil {
		return false, fmt.Errorf("register: %w", err)
	}

	account := &models.Account{Name: name, Email: email, PasswordHash: digest}
	if _, err := s.repos.Accounts(s.db).Create(ctx, account); err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return false, nil
		}
		return false, fmt.Errorf("register: %w", err)
	}

	s.logger.Info(ctx, "account registered", "email", email)
	return true, nil
}

// Stats returns the account's profile together with its audit totals, read
// in one transaction. Unknown emails yield common.ErrNotFound.
func (s *Store) Stats(ctx context.Context, email string) (*models.AccountStats, error) {
	var stats *models.AccountStats

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		account, err := s.repos.Accounts(tx).GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		succeeded, failed, err := s.repos.Audit(tx).CountByAccount(ctx, account.ID)
		if err != nil {
			return err
		}
		stats = &models.AccountStats{
			Name:             account.Name,
			Email:            account.Email,
			FailedAttempts:   account.FailedAttempts,
			CreatedAt:        account.CreatedAt,
			SuccessfulLogins: succeeded,
			FailedLogins:     failed,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("stats: %w", err)
	}

	return stats, nil
}

// Delete removes the account and reports whether a row was affected.
// Audit entries referencing the account are retained. Storage failures are
// returned alongside the boolean, never collapsed into it.
func (s *Store) Delete(ctx context.Context, email string) (bool, error) {
	affected, err := s.repos.Accounts(s.db).DeleteByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}
	if affected {
		s.logger.Info(ctx, "account deleted", "email", email)
	}
	return affected, nil
}

// GetAllAccounts lists accounts, newest first.
func (s *Store) GetAllAccounts(ctx context.Context) ([]models.Account, error) {
	return s.repos.Accounts(s.db).GetAll(ctx)
}

// History returns the most recent audit entries for the email, newest first.
func (s *Store) History(ctx context.Context, email string, limit int) ([]models.AuditEntry, error) {
	return s.repos.Audit(s.db).ListByEmail(ctx, email, limit)
}
