// File: internal/database/dbtest/dbtest.go

// Package dbtest provides migrated throwaway databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/go-taskmate/internal/database"
)

// NewSQLite opens a fresh, fully migrated SQLite database in a temp dir.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()
	return OpenSQLite(t, filepath.Join(t.TempDir(), "taskmate_test.db"))
}

// OpenSQLite opens (and migrates) the SQLite database at path. Opening the
// same path twice simulates a process restart.
func OpenSQLite(t testing.TB, path string) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Options{Driver: database.DriverSQLite, DSN: path})
	require.NoError(t, err)

	_, err = database.Migrate(context.Background(), db, database.DriverSQLite)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
