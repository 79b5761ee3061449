// Package todo implements the read-modify-write operations on the todo
// collection.
package todo

import (
	"fmt"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
)

// Store loads and replaces the whole collection.
type Store interface {
	Load() ([]model.Todo, error)
	Save([]model.Todo) error
}

// Service runs every operation against a fresh Load; nothing is cached.
// Mutations hold mu for their whole cycle so two writers never interleave.
// Reads do not take it.
type Service struct {
	store Store
	mu    sync.Mutex
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

func (s *Service) List() ([]model.Todo, error) {
	todos, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return todos, nil
}

func (s *Service) Get(id int) (model.Todo, error) {
	todos, err := s.store.Load()
	if err != nil {
		return model.Todo{}, fmt.Errorf("get %d: %w", id, err)
	}
	i := model.Find(todos, id)
	if i < 0 {
		return model.Todo{}, ErrNotFound
	}
	return todos[i], nil
}

// Create appends a todo with the next free id.
func (s *Service) Create(title string, completed bool) (model.Todo, error) {
	if title == "" {
		return model.Todo{}, errTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	todos, err := s.store.Load()
	if err != nil {
		return model.Todo{}, fmt.Errorf("create: %w", err)
	}
	t := model.Todo{ID: model.NextID(todos), Title: title, Completed: completed}
	if err := s.store.Save(append(todos, t)); err != nil {
		return model.Todo{}, fmt.Errorf("create: %w", err)
	}
	return t, nil
}

// ValidatePatch reports the validation error Update would return for p.
func ValidatePatch(p model.Patch) error {
	if p.Title != nil && *p.Title == "" {
		return errTitleRequired
	}
	return nil
}

// Update applies the present fields of p to the todo with id.
func (s *Service) Update(id int, p model.Patch) (model.Todo, error) {
	if err := ValidatePatch(p); err != nil {
		return model.Todo{}, err
	}
	return s.mutate(id, "update", func(t *model.Todo) { p.Apply(t) })
}

// Toggle flips completed on the todo with id.
func (s *Service) Toggle(id int) (model.Todo, error) {
	return s.mutate(id, "toggle", func(t *model.Todo) { t.Completed = !t.Completed })
}

func (s *Service) Delete(id int) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos, err := s.store.Load()
	if err != nil {
		return model.Todo{}, fmt.Errorf("delete %d: %w", id, err)
	}
	i := model.Find(todos, id)
	if i < 0 {
		return model.Todo{}, ErrNotFound
	}
	deleted := todos[i]
	todos = append(todos[:i], todos[i+1:]...)
	if err := s.store.Save(todos); err != nil {
		return model.Todo{}, fmt.Errorf("delete %d: %w", id, err)
	}
	return deleted, nil
}

func (s *Service) mutate(id int, op string, fn func(*model.Todo)) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos, err := s.store.Load()
	if err != nil {
		return model.Todo{}, fmt.Errorf("%s %d: %w", op, id, err)
	}
	i := model.Find(todos, id)
	if i < 0 {
		return model.Todo{}, ErrNotFound
	}
	fn(&todos[i])
	if err := s.store.Save(todos); err != nil {
		return model.Todo{}, fmt.Errorf("%s %d: %w", op, id, err)
	}
	return todos[i], nil
}
