package store

import (
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
)

// Memory keeps the encoded document in memory.
// It round-trips through Encode/Decode so callers never share slices with it.
type Memory struct {
	mu  sync.Mutex
	doc []byte

	// LoadErr and SaveErr, when set, are returned instead of touching the document.
	LoadErr error
	SaveErr error
}

// NewMemory returns a backend seeded with todos.
func NewMemory(todos ...model.Todo) *Memory {
	m := &Memory{doc: []byte(EmptyDocument)}
	if len(todos) > 0 {
		b, err := Encode(todos)
		if err != nil {
			panic(err)
		}
		m.doc = b
	}
	return m
}

func (m *Memory) Load() ([]model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, &StorageError{Kind: IOFailure, Op: "load", Err: m.LoadErr}
	}
	todos, err := Decode(m.doc)
	if err != nil {
		return nil, &StorageError{Kind: ParseFailure, Op: "load", Err: err}
	}
	return todos, nil
}

func (m *Memory) Save(todos []model.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return &StorageError{Kind: IOFailure, Op: "save", Err: m.SaveErr}
	}
	b, err := Encode(todos)
	if err != nil {
		return &StorageError{Kind: IOFailure, Op: "save", Err: err}
	}
	m.doc = b
	return nil
}

// Document returns a copy of the stored bytes.
func (m *Memory) Document() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.doc...)
}

// SetDocument replaces the stored bytes verbatim.
func (m *Memory) SetDocument(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = append([]byte(nil), b...)
}
