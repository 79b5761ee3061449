package store

import (
	"errors"
	"fmt"
)

// Kind categorizes storage failures.
type Kind string

const (
	// IOFailure means the document could not be read or written.
	IOFailure Kind = "io"

	// ParseFailure means the document is not a JSON array of todos.
	ParseFailure Kind = "parse"
)

// StorageError is returned by every backend operation that fails.
type StorageError struct {
	Kind Kind
	Op   string // "load" | "save" | "open"
	Path string // file or database the backend points at
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a StorageError of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Kind == kind
}
