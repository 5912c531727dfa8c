package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"coswig/internal/config"
	"coswig/internal/infrastructure/sqlite"
)

// SetupTestDB opens a throwaway single-file store under t.TempDir with the
// schema applied. The file is removed with the temp dir when the test ends.
func SetupTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "coswig_test.db")
	db, err := sqlite.NewConnection(config.DatabaseConfig{
		Path:            path,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db, path
}
