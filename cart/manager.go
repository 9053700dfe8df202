// Package cart implements the client-side cart state manager: an ordered
// collection of product lines with a cached monetary total.
//
// Two invariants hold after every public operation:
//   - at most one line exists per product; adding an existing product
//     increments its quantity instead of appending a duplicate
//   - the cached total equals the sum of snapshot price times quantity
//     over all lines; it is recomputed inside every mutation, never lazily
//
// Every mutation also persists the full cart snapshot, so a restart
// restores exact state via Load.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/verdemarket/storefront/catalog"
	"github.com/verdemarket/storefront/core"
)

// Manager owns the cart. The view layer reads through the accessors and
// mutates only through the operations here; it never touches lines
// directly.
type Manager struct {
	mu     sync.Mutex
	store  core.Store
	logger core.Logger

	lines []Line
	total decimal.Decimal
}

// NewManager creates a cart manager over the given persisted store
func NewManager(store core.Store, logger core.Logger) *Manager {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Manager{
		store:  store,
		logger: logger,
		total:  decimal.Zero,
	}
}

// Load restores the persisted cart snapshot, if any. Called once at
// startup. The total is recomputed from the lines rather than trusted
// from disk so the consistency invariant holds even for hand-edited or
// stale snapshots.
func (m *Manager) Load(ctx context.Context) error {
	raw, err := m.store.Get(ctx, core.KeyCart)
	if err != nil {
		return fmt.Errorf("failed to read cart snapshot: %w", err)
	}
	if raw == "" {
		return nil
	}

	var snapshot Cart
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		m.logger.Warn("Cart snapshot unreadable, starting empty", map[string]interface{}{
			"operation": "cart_load",
			"error":     err.Error(),
		})
		return nil
	}

	m.mu.Lock()
	m.lines = snapshot.Lines
	m.recompute()
	m.mu.Unlock()

	m.logger.Debug("Cart restored", map[string]interface{}{
		"operation": "cart_load",
		"lines":     len(snapshot.Lines),
	})

	return nil
}

// AddItem adds quantity units of the product. If a line for the product
// already exists its quantity is incremented and its snapshot refreshed;
// otherwise a new line is appended, so line order is arrival order.
//
// Quantity is not validated here; callers are expected to pass >= 1.
// This matches the web client, where the quantity picker enforces the
// bound upstream.
func (m *Manager) AddItem(ctx context.Context, product catalog.Product, quantity int) error {
	m.mu.Lock()

	merged := false
	for i := range m.lines {
		if m.lines[i].ProductID == product.ID {
			m.lines[i].Quantity += quantity
			p := product
			m.lines[i].Product = &p
			merged = true
			break
		}
	}
	if !merged {
		p := product
		m.lines = append(m.lines, Line{
			ProductID: product.ID,
			Quantity:  quantity,
			Product:   &p,
		})
	}

	m.recompute()
	m.mu.Unlock()

	m.logger.Debug("Cart item added", map[string]interface{}{
		"operation":  "cart_add",
		"product_id": product.ID,
		"quantity":   quantity,
		"merged":     merged,
	})

	return m.persist(ctx)
}

// RemoveItem deletes the line for the product; no-op if absent
func (m *Manager) RemoveItem(ctx context.Context, productID int) error {
	m.mu.Lock()

	filtered := m.lines[:0]
	removed := false
	for _, line := range m.lines {
		if line.ProductID == productID {
			removed = true
			continue
		}
		filtered = append(filtered, line)
	}
	m.lines = filtered

	m.recompute()
	m.mu.Unlock()

	if removed {
		m.logger.Debug("Cart item removed", map[string]interface{}{
			"operation":  "cart_remove",
			"product_id": productID,
		})
	}

	return m.persist(ctx)
}

// UpdateQuantity overwrites the line's quantity. A quantity of zero or
// below removes the line entirely.
func (m *Manager) UpdateQuantity(ctx context.Context, productID int, quantity int) error {
	if quantity <= 0 {
		return m.RemoveItem(ctx, productID)
	}

	m.mu.Lock()
	for i := range m.lines {
		if m.lines[i].ProductID == productID {
			m.lines[i].Quantity = quantity
			break
		}
	}
	m.recompute()
	m.mu.Unlock()

	return m.persist(ctx)
}

// Clear empties the cart and resets the total to zero
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.lines = nil
	m.total = decimal.Zero
	m.mu.Unlock()

	m.logger.Debug("Cart cleared", map[string]interface{}{
		"operation": "cart_clear",
	})

	return m.persist(ctx)
}

// Total returns the cached total. It is always consistent with the
// current lines because every mutator recomputes it before returning.
func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// Lines returns a copy of the current line sequence in arrival order
func (m *Manager) Lines() []Line {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines := make([]Line, len(m.lines))
	copy(lines, m.lines)
	return lines
}

// Count returns the total number of units across all lines
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, line := range m.lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart holds no lines
func (m *Manager) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lines) == 0
}

// recompute recalculates the cached total from the lines. A line whose
// snapshot is missing contributes zero, same as the web client. Caller
// must hold m.mu.
func (m *Manager) recompute() {
	total := decimal.Zero
	for _, line := range m.lines {
		if line.Product == nil {
			continue
		}
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	m.total = total
}

// persist writes the full snapshot to storage. The in-memory mutation has
// already been applied; a storage failure is reported to the caller but
// does not roll the cart back.
func (m *Manager) persist(ctx context.Context) error {
	m.mu.Lock()
	snapshot := Cart{Lines: m.lines, Total: m.total}
	raw, err := json.Marshal(snapshot)
	m.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}

	if err := m.store.Set(ctx, core.KeyCart, string(raw)); err != nil {
		m.logger.Error("Failed to persist cart", map[string]interface{}{
			"operation": "cart_persist",
			"error":     err.Error(),
		})
		return fmt.Errorf("failed to persist cart snapshot: %w", err)
	}

	return nil
}
