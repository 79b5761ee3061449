// Package sqlitestore keeps the todo collection as a single JSON document in
// a SQLite database.
//
// The document is stored whole in the collections table, one row per
// collection name, so Load and Save keep the same contract as the file
// backend: full read, full replace, "[]" on first open.
package sqlitestore

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

const collection = "todos"

const schemaSQL = `CREATE TABLE IF NOT EXISTS collections (
	name    TEXT NOT NULL PRIMARY KEY,
	content TEXT NOT NULL
)`

// Store is a SQLite-backed todo store.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path and makes sure the todos row
// exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, openError(path, fmt.Errorf("open database: %w", err))
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, openError(path, fmt.Errorf("connect: %w", err))
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initialize(db); err != nil {
		db.Close()
		return nil, openError(path, err)
	}
	return &Store{db: db, path: path}, nil
}

func initialize(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.Exec(
		`INSERT OR IGNORE INTO collections (name, content) VALUES (?, ?)`,
		collection, store.EmptyDocument,
	); err != nil {
		return fmt.Errorf("bootstrap %s: %w", collection, err)
	}
	return nil
}

func openError(path string, err error) error {
	return &store.StorageError{Kind: store.IOFailure, Op: "open", Path: path, Err: err}
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Load() ([]model.Todo, error) {
	var content string
	err := s.db.QueryRow(`SELECT content FROM collections WHERE name = ?`, collection).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.StorageError{Kind: store.IOFailure, Op: "load", Path: s.path, Err: fmt.Errorf("collection %q missing", collection)}
	}
	if err != nil {
		return nil, &store.StorageError{Kind: store.IOFailure, Op: "load", Path: s.path, Err: fmt.Errorf("query: %w", err)}
	}
	todos, err := store.Decode([]byte(content))
	if err != nil {
		return nil, &store.StorageError{Kind: store.ParseFailure, Op: "load", Path: s.path, Err: err}
	}
	return todos, nil
}

func (s *Store) Save(todos []model.Todo) error {
	b, err := store.Encode(todos)
	if err != nil {
		return &store.StorageError{Kind: store.IOFailure, Op: "save", Path: s.path, Err: err}
	}
	if _, err := s.db.Exec(
		`INSERT INTO collections (name, content) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET content = excluded.content`,
		collection, string(b),
	); err != nil {
		return &store.StorageError{Kind: store.IOFailure, Op: "save", Path: s.path, Err: fmt.Errorf("exec: %w", err)}
	}
	return nil
}
