package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/studycards/internal/db"
	"github.com/vytor/studycards/internal/repository"
	"github.com/vytor/studycards/internal/repository/blobstore"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// It is closed when the test finishes.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// NewBackupStore creates a backup bucket in a temporary directory.
func NewBackupStore(t *testing.T) repository.BackupStore {
	t.Helper()
	return blobstore.NewBackupStore(t.TempDir())
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
