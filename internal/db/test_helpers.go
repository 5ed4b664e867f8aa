package db

import (
	"database/sql"
	"testing"
)

// NewTestDB creates an in-memory SQLite database for testing.
//
// The pool is limited to a single connection: with ":memory:" every new
// connection would otherwise open its own empty database.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    db := NewTestDB(t)
//	    defer db.Close()
//
//	    // Use db for testing...
//	}
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := Migrate(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return &DB{DB: sqlDB, path: ":memory:"}
}
