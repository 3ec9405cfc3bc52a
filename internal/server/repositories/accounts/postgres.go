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
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// 23505 is unique_violation.
func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO accounts (id, name, email, password_hash, failed_attempts, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Name, account.Email, account.PasswordHash,
		account.FailedAttempts, account.CreatedAt)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT id, name, email, password_hash, failed_attempts, last_attempt, created_at
	          FROM accounts WHERE email = $1`

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

func (r *PostgresRepository) Exists(ctx context.Context, email string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM accounts WHERE email = $1`, email).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return true, nil
}

func (r *PostgresRepository) FailedAttempts(ctx context.Context, email string) (int, error) {
	var attempts int
	err := r.db.QueryRowContext(ctx, `SELECT failed_attempts FROM accounts WHERE email = $1`, email).Scan(&attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to select failed attempts: %w", err)
	}
	return attempts, nil
}

func (r *PostgresRepository) RecordOutcome(ctx context.Context, email string, success bool) error {
	query := `UPDATE accounts
	          SET failed_attempts = CASE WHEN $1 THEN 0 ELSE failed_attempts + 1 END,
	              last_attempt = $2
	          WHERE email = $3`

	if _, err := r.db.ExecContext(ctx, query, success, time.Now().UTC(), email); err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]models.Account, error) {
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

func (r *PostgresRepository) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE email = $1`, email)
	if err != nil {
		return false, fmt.Errorf("failed to delete account: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}
