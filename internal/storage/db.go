// Package storage persists users and their expense ledgers in SQLite.
package storage

import (
	"database/sql"
	"errors"

	// SQLite driver
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound covers both "row absent" and "row owned by someone else";
	// callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUser is returned when registering an existing username.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrEmptyDescription rejects expenses without a description.
	ErrEmptyDescription = errors.New("description must not be empty")
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations. The schema is in
// place before NewDB returns, so the caller can start serving immediately.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// A single connection keeps ":memory:" databases coherent and makes the
	// foreign_keys pragma stick for the life of the process.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
