package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// DSN builds the connection string for an on-disk SQLite database.
//
// Transactions begin with BEGIN IMMEDIATE so that a read-modify-write takes
// the write lock before it reads; concurrent writers queue on busy_timeout
// instead of failing with SQLITE_BUSY halfway through.
func DSN(path string) string {
	params := url.Values{}
	params.Set("_txlock", "immediate")
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "on")
	params.Set("_journal_mode", "WAL")
	return "file:" + path + "?" + params.Encode()
}

// Open opens the database at path, verifies the connection and applies
// pending migrations
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return conn, nil
}

// InitializeDatabase opens the shared database connection and runs migrations
func InitializeDatabase(path string) error {
	conn, err := Open(path)
	if err != nil {
		return err
	}
	db = conn

	slog.Info("database initialized", "path", path)
	return nil
}

// GetDB returns the shared database connection
func GetDB() *sql.DB {
	return db
}

// CloseDB closes the shared database connection
func CloseDB() error {
	if db != nil {
		return db.Close()
	}
	return nil
}
