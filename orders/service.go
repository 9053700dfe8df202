// Package orders is the order domain service over the /ventas endpoints:
// order history, checkout, and the admin status transitions.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/verdemarket/storefront/cart"
	"github.com/verdemarket/storefront/core"
	"github.com/verdemarket/storefront/transport"
)

// cartSource is the slice of the cart manager Checkout depends on
type cartSource interface {
	Lines() []cart.Line
	IsEmpty() bool
	Clear(ctx context.Context) error
}

// Service shapes order requests against the backend
type Service struct {
	client *transport.Client
	logger core.Logger
}

// NewService creates an order service over the given pipeline
func NewService(client *transport.Client, logger core.Logger) *Service {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Service{client: client, logger: logger}
}

// List fetches the current user's orders (all orders for admins)
func (s *Service) List(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := s.client.Get(ctx, "/ventas", &orders); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ByDate lists orders placed on the given date, YYYY-MM-DD (admin only)
func (s *Service) ByDate(ctx context.Context, date string) ([]Order, error) {
	var orders []Order
	if err := s.client.Get(ctx, "/ventas/"+url.PathEscape(date), &orders); err != nil {
		return nil, fmt.Errorf("failed to list orders for %s: %w", date, err)
	}
	return orders, nil
}

// DailySummary fetches the admin sales summary. The payload shape is
// owned by the backend's reporting layer, so it is returned raw.
func (s *Service) DailySummary(ctx context.Context, date string) (json.RawMessage, error) {
	path := "/ventas/resumen/diario"
	if date != "" {
		path += "?fecha=" + url.QueryEscape(date)
	}

	var summary json.RawMessage
	if err := s.client.Get(ctx, path, &summary); err != nil {
		return nil, fmt.Errorf("failed to fetch daily summary: %w", err)
	}
	return summary, nil
}

// Create submits a new order
func (s *Service) Create(ctx context.Context, in CreateOrder) (*Order, error) {
	var order Order
	if err := s.client.Post(ctx, "/ventas", in, &order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("Order created", map[string]interface{}{
		"operation":      "order_create",
		"order_id":       order.ID,
		"payment_method": string(in.PaymentMethod),
		"items":          len(in.Items),
	})

	return &order, nil
}

// Complete marks an order completed
func (s *Service) Complete(ctx context.Context, id int) (*Order, error) {
	var order Order
	if err := s.client.Put(ctx, fmt.Sprintf("/ventas/%d/completar", id), nil, &order); err != nil {
		return nil, fmt.Errorf("failed to complete order %d: %w", id, err)
	}
	return &order, nil
}

// Cancel marks an order cancelled
func (s *Service) Cancel(ctx context.Context, id int) (*Order, error) {
	var order Order
	if err := s.client.Put(ctx, fmt.Sprintf("/ventas/%d/cancelar", id), nil, &order); err != nil {
		return nil, fmt.Errorf("failed to cancel order %d: %w", id, err)
	}
	return &order, nil
}

// Get fetches one order by ID. The backend has no GET-by-id endpoint,
// so the user's order list is scanned instead.
func (s *Service) Get(ctx context.Context, id int) (*Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}

	return nil, fmt.Errorf("order %d: %w", id, core.ErrNotFound)
}

// UpdateStatus dispatches to the matching status transition endpoint
func (s *Service) UpdateStatus(ctx context.Context, id int, status Status) (*Order, error) {
	switch status {
	case StatusCompleted:
		return s.Complete(ctx, id)
	case StatusCancelled:
		return s.Cancel(ctx, id)
	default:
		return nil, fmt.Errorf("unsupported status transition to %q: %w", status, core.ErrRequestFailed)
	}
}

// Checkout submits the current cart as a new order. The cart is cleared
// only after the backend confirms creation; a rejected checkout leaves
// the cart exactly as it was.
func (s *Service) Checkout(ctx context.Context, c cartSource, method PaymentMethod, reference string) (*Order, error) {
	if c.IsEmpty() {
		return nil, fmt.Errorf("checkout: %w", core.ErrEmptyCart)
	}

	lines := c.Lines()
	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	order, err := s.Create(ctx, CreateOrder{
		Items:            items,
		PaymentMethod:    method,
		PaymentReference: reference,
	})
	if err != nil {
		return nil, err
	}

	if err := c.Clear(ctx); err != nil {
		// The order exists on the backend; a cart persistence hiccup
		// must not look like a failed checkout.
		s.logger.Warn("Order placed but cart could not be cleared", map[string]interface{}{
			"operation": "checkout",
			"order_id":  order.ID,
			"error":     err.Error(),
		})
	}

	return order, nil
}
