package storage

import (
	"context"
	"errors"
	"sync"
)

var errInjected = errors.New("injected failure")

// MemoryStorage is an in-process KeyValueStore used by tests and dry runs.
type MemoryStorage struct {
	items    map[string]string
	failGets int
	failSets int
	gets     int
	mu       sync.Mutex
}

// NewMemoryStorage returns an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

// FailNextGets makes the next n GetItem calls fail.
func (m *MemoryStorage) FailNextGets(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failGets = n
}

// FailNextSets makes the next n SetItem or RemoveItem calls fail.
func (m *MemoryStorage) FailNextSets(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSets = n
}

// Gets reports how many GetItem calls reached the store.
func (m *MemoryStorage) Gets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

// GetItem implements KeyValueStore.
func (m *MemoryStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := validateContext(ctx); err != nil {
		return "", false, err
	}
	if err := validateString(key, "key"); err != nil {
		return "", false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failGets > 0 {
		m.failGets--
		return "", false, unavailable("get", key, errInjected)
	}
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem implements KeyValueStore.
func (m *MemoryStorage) SetItem(ctx context.Context, key, value string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSets > 0 {
		m.failSets--
		return unavailable("set", key, errInjected)
	}
	m.items[key] = value
	return nil
}

// RemoveItem implements KeyValueStore.
func (m *MemoryStorage) RemoveItem(ctx context.Context, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSets > 0 {
		m.failSets--
		return unavailable("remove", key, errInjected)
	}
	delete(m.items, key)
	return nil
}
