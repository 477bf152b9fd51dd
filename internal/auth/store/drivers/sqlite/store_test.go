package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/ccauth/internal/auth/store"
	"github.com/aussiebroadwan/ccauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/ccauth/internal/auth/store/storetest"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func openFile(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreInMemory(t *testing.T) {
	storetest.Run(t, openMemory)
}

func TestSQLiteStoreOnDisk(t *testing.T) {
	storetest.Run(t, openFile)
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.db")

	first, err := sqlite.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, first.ApplyMigrations())
	require.NoError(t, first.Clients().CreateClient(context.Background(), storetest.Client("c1")))
	require.NoError(t, first.Close())

	second, err := sqlite.NewStore(path)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.ApplyMigrations())

	_, err = second.Clients().GetClientByID(context.Background(), "c1")
	require.NoError(t, err)
}

func TestDSN(t *testing.T) {
	require.Contains(t, sqlite.DSN(":memory:"), "file::memory:?")
	require.Contains(t, sqlite.DSN("auth.db"), "_pragma=foreign_keys(1)")
	require.Contains(t, sqlite.DSN("auth.db"), "journal_mode(WAL)")
}
