package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, entry *models.AuditEntry) (*models.AuditEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.AttemptTime.IsZero() {
		entry.AttemptTime = time.Now().UTC()
	}

	var accountID sql.NullString
	if entry.AccountID != nil {
		accountID = sql.NullString{String: *entry.AccountID, Valid: true}
	}

	query := `INSERT INTO audit_log (id, account_id, email, success, attempt_time)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, accountID, entry.Email, entry.Success, entry.AttemptTime)
	if err != nil {
		return nil, fmt.Errorf("failed to append audit entry: %w", err)
	}

	return entry, nil
}

func (r *PostgresRepository) CountByAccount(ctx context.Context, accountID string) (int, int, error) {
	query := `SELECT
	            COUNT(CASE WHEN success THEN 1 END),
	            COUNT(CASE WHEN NOT success THEN 1 END)
	          FROM audit_log WHERE account_id = $1`

	var succeeded, failed int
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&succeeded, &failed); err != nil {
		return 0, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return succeeded, failed, nil
}

func (r *PostgresRepository) ListByEmail(ctx context.Context, email string, limit int) ([]models.AuditEntry, error) {
	query := `SELECT id, account_id, email, success, attempt_time
	          FROM audit_log WHERE email = $1
	          ORDER BY attempt_time DESC`
	args := []any{email}

	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select audit entries: %w", err)
	}
	defer rows.Close()

	var result []models.AuditEntry
	for rows.Next() {
		var item models.AuditEntry
		var accountID sql.NullString
		if err := rows.Scan(&item.ID, &accountID, &item.Email, &item.Success, &item.AttemptTime); err != nil {
			return nil, err
		}
		if accountID.Valid {
			item.AccountID = &accountID.String
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
