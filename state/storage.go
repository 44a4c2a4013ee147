// Package state provides the storage port for process state such as the
// cached TMDB image configuration.
package state

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by operations on a closed storage
var ErrClosed = errors.New("state storage is closed")

// Storage persists a single state value. Store must be atomic: after a failed
// Store the previously stored value is still returned by Load.
type Storage[T any] interface {
	Load(ctx context.Context) (T, error)
	Store(ctx context.Context, value T) error
	Close() error
}

// Memory is a process-lifetime Storage
type Memory[T any] struct {
	mu     sync.RWMutex
	value  T
	closed bool
}

// NewMemory creates an in-memory storage holding the initial value
func NewMemory[T any](initial T) *Memory[T] {
	return &Memory[T]{value: initial}
}

// Load returns the stored value
func (m *Memory[T]) Load(ctx context.Context) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if m.closed {
		return zero, ErrClosed
	}
	return m.value, nil
}

// Store replaces the stored value
func (m *Memory[T]) Store(ctx context.Context, value T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if m.closed {
		return ErrClosed
	}
	m.value = value
	return nil
}

// Close releases the storage. Further Load and Store calls fail.
func (m *Memory[T]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
