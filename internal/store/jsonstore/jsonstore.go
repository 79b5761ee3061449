package jsonstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// No locking; the todo service serializes writers.

// DefaultFileName is used when no path is configured.
const DefaultFileName = "todos.json"

// Store keeps the collection in one file.
type Store struct {
	path string
}

// Open returns a store for path, creating the file with an empty array when
// it does not exist yet.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultFileName
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &store.StorageError{Kind: store.IOFailure, Op: "open", Path: path, Err: err}
	}
	s := &Store{path: abs}
	if err := s.bootstrap(); err != nil {
		return nil, &store.StorageError{Kind: store.IOFailure, Op: "open", Path: abs, Err: err}
	}
	return s, nil
}

// Path is the absolute location of the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) bootstrap() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := f.WriteString(store.EmptyDocument); err != nil {
		f.Close()
		return fmt.Errorf("write file: %w", err)
	}
	return f.Close()
}

func (s *Store) Load() ([]model.Todo, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &store.StorageError{Kind: store.IOFailure, Op: "load", Path: s.path, Err: fmt.Errorf("read file: %w", err)}
	}
	todos, err := store.Decode(b)
	if err != nil {
		return nil, &store.StorageError{Kind: store.ParseFailure, Op: "load", Path: s.path, Err: err}
	}
	return todos, nil
}

// Save replaces the backing file through a temp file and rename, so a
// concurrent Load sees either the old or the new collection.
func (s *Store) Save(todos []model.Todo) error {
	b, err := store.Encode(todos)
	if err != nil {
		return &store.StorageError{Kind: store.IOFailure, Op: "save", Path: s.path, Err: err}
	}
	if err := writeFile(s.path, b); err != nil {
		return &store.StorageError{Kind: store.IOFailure, Op: "save", Path: s.path, Err: err}
	}
	return nil
}

func writeFile(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
