package core

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of the Store interface.
// It backs tests and short-lived sessions where nothing should survive
// process exit.
type MemoryStore struct {
	mu     sync.RWMutex
	store  map[string]string
	logger Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		store:  make(map[string]string),
		logger: &NoOpLogger{},
	}
}

// SetLogger configures the logger for this store
func (m *MemoryStore) SetLogger(logger Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Get retrieves a value; missing keys yield ("", nil)
func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.store[key]
	if !exists {
		if m.logger != nil {
			m.logger.Debug("Store lookup", map[string]interface{}{
				"operation": "store_get",
				"key":       key,
				"result":    "miss",
			})
		}
		return "", nil
	}

	if m.logger != nil {
		m.logger.Debug("Store lookup", map[string]interface{}{
			"operation": "store_get",
			"key":       key,
			"result":    "hit",
		})
	}

	return value, nil
}

// Set stores a value under a key
func (m *MemoryStore) Set(ctx context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.logger != nil {
		m.logger.Debug("Store set", map[string]interface{}{
			"operation":  "store_set",
			"key":        key,
			"value_size": len(value),
		})
	}

	m.store[key] = value
	return nil
}

// Delete removes a value
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, existed := m.store[key]
	delete(m.store, key)

	if m.logger != nil {
		m.logger.Debug("Store delete", map[string]interface{}{
			"operation": "store_delete",
			"key":       key,
			"existed":   existed,
		})
	}

	return nil
}

// Exists checks if a key is present
func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.store[key]
	return exists, nil
}
