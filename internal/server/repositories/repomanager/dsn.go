package repomanager

import "strings"

// ForDSN maps a DSN to a database/sql driver name and the matching
// repository manager. Anything that is not a postgres URL is treated as a
// SQLite file path.
func ForDSN(dsn string) (string, RepositoryManager) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", NewPostgresRepositoryManager()
	}
	return "sqlite", NewSQLiteRepositoryManager()
}
