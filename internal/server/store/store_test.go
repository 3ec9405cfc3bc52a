package store

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/password"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, rm.RunMigrations(context.Background(), db))

	return New(db, rm, password.SHA256{}, testLogger())
}

func TestRegisterThenExists(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	ok, err := s.Register(ctx, "Bob", "bob@x.com", "abcdef")
	require.NoError(t, err)
	assert.True(t, ok)

	exists, err := s.Exists(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	ok, err := s.Register(ctx, "Bob", "bob@x.com", "abcdef")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Register(ctx, "Bob2", "bob@x.com", "ghijkl")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthenticate_AppendsExactlyOneAuditEntryPerCall(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "A", "a@b.com", "right-password")
	require.NoError(t, err)

	// match
	account, err := s.Authenticate(ctx, "a@b.com", "right-password")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "A", account.Name)

	// mismatch
	account, err = s.Authenticate(ctx, "a@b.com", "wrong")
	require.NoError(t, err)
	assert.Nil(t, account)

	entries, err := s.History(ctx, "a@b.com", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.NotNil(t, e.AccountID)
	}

	// unknown email: audited with no account reference
	account, err = s.Authenticate(ctx, "ghost@x.com", "whatever")
	require.NoError(t, err)
	assert.Nil(t, account)

	entries, err = s.History(ctx, "ghost@x.com", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].AccountID)
	assert.False(t, entries[0].Success)
}

func TestRecordOutcome_CounterLifecycle(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "A", "a@b.com", "pw-123")
	require.NoError(t, err)

	require.NoError(t, s.RecordOutcome(ctx, "a@b.com", false))
	require.NoError(t, s.RecordOutcome(ctx, "a@b.com", false))

	n, err := s.FailedAttempts(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.RecordOutcome(ctx, "a@b.com", true))
	n, err = s.FailedAttempts(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// unknown email: silently ignored
	require.NoError(t, s.RecordOutcome(ctx, "ghost@x.com", false))
	n, err = s.FailedAttempts(ctx, "ghost@x.com")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStats(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "A", "a@b.com", "pw-123")
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, "a@b.com", "pw-123")
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, "a@b.com", "bad")
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, "a@b.com", "bad")
	require.NoError(t, err)

	stats, err := s.Stats(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "A", stats.Name)
	assert.Equal(t, 1, stats.SuccessfulLogins)
	assert.Equal(t, 2, stats.FailedLogins)

	_, err = s.Stats(ctx, "nobody@x.com")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_RetainsAuditEntries(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "A", "a@b.com", "pw-123")
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, "a@b.com", "pw-123")
	require.NoError(t, err)

	affected, err := s.Delete(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, affected)

	affected, err = s.Delete(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, affected)

	entries, err := s.History(ctx, "a@b.com", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGetAllAccounts(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com"} {
		_, err := s.Register(ctx, "u", email, "pw-123")
		require.NoError(t, err)
	}

	all, err := s.GetAllAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
