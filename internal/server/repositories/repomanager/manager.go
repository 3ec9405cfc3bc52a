// Package repomanager vends backend-specific repository implementations and
// owns schema migrations, so the services above it stay backend-agnostic.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/audit"
)

// RepositoryManager builds repositories bound to the provided DBTX, which
// may be a *sql.DB or a transaction handle.
type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Audit(db dbx.DBTX) audit.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
