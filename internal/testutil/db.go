// Package testutil builds command history databases for tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/deskctl/internal/history"
)

// NewTestDB creates a migrated history database in a temp directory and
// returns it with its path. The database is closed when the test ends.
func NewTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := history.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}
