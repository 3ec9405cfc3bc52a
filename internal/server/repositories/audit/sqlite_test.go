package audit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE audit_log (
  id TEXT PRIMARY KEY,
  account_id TEXT,
  email TEXT NOT NULL,
  success INTEGER NOT NULL,
  attempt_time TIMESTAMP NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestAppend_WithAndWithoutAccount(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	accountID := "acc-1"
	e1, err := r.Append(ctx, &models.AuditEntry{AccountID: &accountID, Email: "a@b.com", Success: true})
	require.NoError(t, err)
	assert.NotEmpty(t, e1.ID)
	assert.False(t, e1.AttemptTime.IsZero())

	// unknown email at attempt time: no account reference
	_, err = r.Append(ctx, &models.AuditEntry{Email: "ghost@x.com", Success: false})
	require.NoError(t, err)

	entries, err := r.ListByEmail(ctx, "ghost@x.com", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].AccountID)
	assert.False(t, entries[0].Success)
}

func TestCountByAccount(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	accountID := "acc-1"
	for _, success := range []bool{true, false, false, true, false} {
		_, err := r.Append(ctx, &models.AuditEntry{AccountID: &accountID, Email: "a@b.com", Success: success})
		require.NoError(t, err)
	}
	otherID := "acc-2"
	_, err := r.Append(ctx, &models.AuditEntry{AccountID: &otherID, Email: "o@b.com", Success: true})
	require.NoError(t, err)

	succeeded, failed, err := r.CountByAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 3, failed)
}

func TestListByEmail_NewestFirstAndLimit(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := r.Append(ctx, &models.AuditEntry{
			Email:       "a@b.com",
			Success:     i%2 == 0,
			AttemptTime: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, err := r.ListByEmail(ctx, "a@b.com", 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].AttemptTime.After(entries[1].AttemptTime))
	assert.True(t, entries[1].AttemptTime.After(entries[2].AttemptTime))

	all, err := r.ListByEmail(ctx, "a@b.com", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
