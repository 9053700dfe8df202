package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if store == nil {
		t.Fatal("NewMemoryStore() returned nil")
	}

	if store.store == nil {
		t.Error("MemoryStore map should be initialized")
	}
}

func TestMemoryStore_Get(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// Missing key yields ("", nil)
	value, err := store.Get(ctx, "non-existent")
	if err != nil {
		t.Errorf("Get() returned unexpected error: %v", err)
	}
	if value != "" {
		t.Errorf("Get() for missing key = %v, want empty string", value)
	}

	err = store.Set(ctx, "token", "abc123")
	if err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	value, err = store.Get(ctx, "token")
	if err != nil {
		t.Errorf("Get() returned unexpected error: %v", err)
	}
	if value != "abc123" {
		t.Errorf("Get() = %v, want abc123", value)
	}
}

func TestMemoryStore_Set(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{
			name:  "set simple value",
			key:   "token",
			value: "abc",
		},
		{
			name:  "overwrite existing",
			key:   "token",
			value: "new_value",
		},
		{
			name:  "empty key",
			key:   "",
			value: "value",
		},
		{
			name:  "empty value",
			key:   "empty_val",
			value: "",
		},
		{
			name:  "json payload",
			key:   "cart-storage",
			value: `{"items":[],"total":"0"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Set(ctx, tt.key, tt.value)
			if err != nil {
				t.Errorf("Set() error = %v", err)
			}

			gotValue, err := store.Get(ctx, tt.key)
			if err != nil {
				t.Errorf("Get() after Set() error = %v", err)
			}
			if gotValue != tt.value {
				t.Errorf("After Set(), Get() = %v, want %v", gotValue, tt.value)
			}
		})
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "user", `{"id":1}`); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	if err := store.Delete(ctx, "user"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	value, err := store.Get(ctx, "user")
	if err != nil {
		t.Errorf("Get() after Delete() error = %v", err)
	}
	if value != "" {
		t.Errorf("Get() after Delete() = %v, want empty string", value)
	}

	// Deleting a missing key is a no-op, not an error
	if err := store.Delete(ctx, "user"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestMemoryStore_Exists(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	exists, err := store.Exists(ctx, "token")
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() for missing key = true, want false")
	}

	// An empty value still exists; Exists is how callers tell the
	// difference from a missing key
	if err := store.Set(ctx, "token", ""); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	exists, err = store.Exists(ctx, "token")
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("Exists() for empty value = false, want true")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%5)
			_ = store.Set(ctx, key, fmt.Sprintf("value-%d", n))
			_, _ = store.Get(ctx, key)
			_, _ = store.Exists(ctx, key)
		}(i)
	}
	wg.Wait()
}
