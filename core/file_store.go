package core

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a Store backed by a single JSON file on disk. It plays the
// role browser local storage plays for the web client: the session token,
// cached user record and cart snapshot all survive process restarts.
//
// Writes go through a temp file followed by rename so a crash mid-write
// never leaves a truncated state file behind.
type FileStore struct {
	mu     sync.Mutex
	path   string
	data   map[string]string
	loaded bool
	logger Logger
}

// NewFileStore creates a file-backed store at the given path.
// The file and its parent directory are created lazily on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is required: %w", ErrInvalidConfiguration)
	}
	return &FileStore{
		path:   path,
		data:   make(map[string]string),
		logger: &NoOpLogger{},
	}, nil
}

// SetLogger configures the logger for this store
func (f *FileStore) SetLogger(logger Logger) {
	if logger != nil {
		f.logger = logger
	}
}

// load reads the state file into memory. Caller must hold f.mu.
func (f *FileStore) load() error {
	if f.loaded {
		return nil
	}

	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		f.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read state file %s: %w", f.path, err)
	}

	if err := json.Unmarshal(raw, &f.data); err != nil {
		// A corrupted state file behaves like cleared storage rather
		// than wedging every subsequent operation.
		if f.logger != nil {
			f.logger.Warn("State file corrupted, starting empty", map[string]interface{}{
				"operation": "store_load",
				"path":      f.path,
				"error":     err.Error(),
			})
		}
		f.data = make(map[string]string)
	}

	f.loaded = true
	return nil
}

// flush writes the in-memory map back to disk. Caller must hold f.mu.
func (f *FileStore) flush() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close state file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

// Get retrieves a value; missing keys yield ("", nil)
func (f *FileStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(); err != nil {
		return "", err
	}
	return f.data[key], nil
}

// Set stores a value and flushes the whole state file
func (f *FileStore) Set(ctx context.Context, key string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(); err != nil {
		return err
	}

	f.data[key] = value
	if err := f.flush(); err != nil {
		return err
	}

	if f.logger != nil {
		f.logger.Debug("Store set", map[string]interface{}{
			"operation":  "store_set",
			"key":        key,
			"value_size": len(value),
			"path":       f.path,
		})
	}
	return nil
}

// Delete removes a value and flushes
func (f *FileStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(); err != nil {
		return err
	}

	if _, existed := f.data[key]; !existed {
		return nil
	}

	delete(f.data, key)
	return f.flush()
}

// Exists checks if a key is present
func (f *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(); err != nil {
		return false, err
	}
	_, exists := f.data[key]
	return exists, nil
}
