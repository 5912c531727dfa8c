package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"coswig/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	cn TEXT NOT NULL,
	character TEXT NOT NULL,
	contact TEXT NOT NULL,
	needed_date TEXT NOT NULL,
	order_date TEXT NOT NULL,
	created_at TEXT NOT NULL,
	deposit_paid INTEGER NOT NULL DEFAULT 0,
	final_amount REAL NOT NULL,
	shipping_included INTEGER NOT NULL DEFAULT 0,
	blank_purchased INTEGER NOT NULL DEFAULT 0,
	cake_box TEXT NOT NULL DEFAULT '不需要',
	status TEXT NOT NULL DEFAULT '待制作'
);
CREATE INDEX IF NOT EXISTS idx_orders_needed_date ON orders(needed_date);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_contact ON orders(contact);
`

// NewConnection opens the single-file order store, creating the file and its
// parent directory on first run, and applies the schema.
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	// Rollback journal mode (the default) keeps the store a single file, which
	// the whole-file backup/restore path depends on. WAL would leave -wal/-shm
	// side files a plain copy could miss.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", cfg.Path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return db, nil
}
