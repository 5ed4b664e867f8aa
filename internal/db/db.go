// Package db provides database connection management and table-level
// repositories over the Trac-compatible schema.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	// DefaultDBPath is the default location of the frack database.
	DefaultDBPath = "~/.frack/frack.db"
	// DefaultDBDir is the directory containing the database.
	DefaultDBDir = "~/.frack"
)

// DB wraps a sql.DB connection with frack-specific functionality.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates a frack database at the specified path.
// If path is empty, it uses the default path (~/.frack/frack.db).
func Open(path string) (*DB, error) {
	if path == "" {
		path = expandPath(DefaultDBPath)
	} else {
		path = expandPath(path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time. The single-connection
	// pool also serializes the comment-numbering scan against the insert
	// that follows it (see ticket service).
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: db, path: path}, nil
}

// Path returns the file path of the database.
func (d *DB) Path() string {
	return d.path
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// Exists checks if the database file exists at the given path.
// If path is empty, it checks the default path.
func Exists(path string) bool {
	if path == "" {
		path = expandPath(DefaultDBPath)
	} else {
		path = expandPath(path)
	}

	_, err := os.Stat(path)
	return err == nil
}

// Delete removes the database file and its WAL sidecars. If path is
// empty, it deletes the default database.
func Delete(path string) error {
	if path == "" {
		path = expandPath(DefaultDBPath)
	} else {
		path = expandPath(path)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete database sidecar: %w", err)
		}
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}

	return path
}

// Helper functions for nullable columns. Optional text columns store NULL
// rather than the empty string, matching the Trac schema the database is
// compatible with.

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(n int64) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}
