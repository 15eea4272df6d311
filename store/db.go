// Package store persists quiz history in SQLite
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/lixenwraith/eduvoice/store/migrations"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// DB owns the history connection
type DB struct {
	conn *sql.DB
	path string
	log  *slog.Logger
}

// Open opens the database at path, creating parent dirs, and applies migrations
// An existing file is snapshotted to path.bak before migrations run
func Open(path string, log *slog.Logger) (*DB, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	target := ":memory:"
	existed := false
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		if _, err := os.Stat(path); err == nil {
			existed = true
		}
		target = path
	}
	// Pragmas in the DSN apply to every pooled connection
	dsn := "file:" + target + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == MemoryPath {
		// Each connection to :memory: is a separate database
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// journal_mode persists in the file, once is enough
	if path != MemoryPath {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	if existed {
		if err := backup(conn, path+".bak"); err != nil {
			log.Warn("database backup failed", "component", "store", "path", path, "error", err)
		}
	}

	if err := migrations.Up(conn); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info("database ready", "component", "store", "path", path)
	return &DB{conn: conn, path: path, log: log}, nil
}

// Conn returns the underlying connection
func (d *DB) Conn() *sql.DB {
	return d.conn
}

// Path returns the file path, or MemoryPath
func (d *DB) Path() string {
	return d.path
}

// Close closes the connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// backup writes a snapshot of conn to dst, replacing any older copy
// The snapshot includes pages still in the WAL
func backup(conn *sql.DB, dst string) error {
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	if _, err := conn.Exec("VACUUM INTO ?", dst); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dst, err)
	}
	return nil
}
