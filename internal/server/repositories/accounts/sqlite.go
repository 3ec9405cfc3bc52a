package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/google/uuid"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func (r *SQLiteRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO accounts (id, name, email, password_hash, failed_attempts, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Name, account.Email, account.PasswordHash,
		account.FailedAttempts, account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	return account, nil
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT id, name, email, password_hash, failed_attempts, last_attempt, created_at
	          FROM accounts WHERE email = ?`

	account := &models.Account{}
	var lastAttempt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID, &account.Name, &account.Email, &account.PasswordHash,
		&account.FailedAttempts, &lastAttempt, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select account: %w", err)
	}
	if lastAttempt.Valid {
		account.LastAttempt = &lastAttempt.Time
	}

	return account, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, email string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM accounts WHERE email = ?`, email).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) FailedAttempts(ctx context.Context, email string) (int, error) {
	var attempts int
	err := r.db.QueryRowContext(ctx, `SELECT failed_attempts FROM accounts WHERE email = ?`, email).Scan(&attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to select failed attempts: %w", err)
	}
	return attempts, nil
}

func (r *SQLiteRepository) RecordOutcome(ctx context.Context, email string, success bool) error {
	query := `UPDATE accounts
	          SET failed_attempts = CASE WHEN ? THEN 0 ELSE failed_attempts + 1 END,
	              last_attempt = ?
	          WHERE email = ?`

	if _, err := r.db.ExecContext(ctx, query, success, time.Now().UTC(), email); err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Account, error) {
	query := `SELECT id, name, email, password_hash, failed_attempts, last_attempt, created_at
	          FROM accounts ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select accounts: %w", err)
	}
	defer rows.Close()

	var result []models.Account
	for rows.Next() {
		var item models.Account
		var lastAttempt sql.NullTime
		if err := rows.Scan(&item.ID, &item.Name, &item.Email, &item.PasswordHash,
			&item.FailedAttempts, &lastAttempt, &item.CreatedAt); err != nil {
			return nil, err
		}
		if lastAttempt.Valid {
			item.LastAttempt = &lastAttempt.Time
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE email = ?`, email)
	if err != nil {
		return false, fmt.Errorf("failed to delete account: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}
