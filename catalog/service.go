// Package catalog is the stateless product domain service: a thin
// request-shaping wrapper over the transport pipeline for the /productos
// endpoints. Category and search filtering happen client-side because the
// backend exposes no filtered listing.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/verdemarket/storefront/core"
	"github.com/verdemarket/storefront/transport"
)

// Service shapes product requests against the backend
type Service struct {
	client *transport.Client
	logger core.Logger
}

// NewService creates a catalog service over the given pipeline
func NewService(client *transport.Client, logger core.Logger) *Service {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Service{client: client, logger: logger}
}

// List fetches the full product catalog
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := s.client.Get(ctx, "/productos", &products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Get fetches a single product by ID
func (s *Service) Get(ctx context.Context, id int) (*Product, error) {
	var product Product
	if err := s.client.Get(ctx, fmt.Sprintf("/productos/%d", id), &product); err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &product, nil
}

// ByCategory lists products in the given category. The backend has no
// category filter, so the full list is fetched and filtered here.
func (s *Service) ByCategory(ctx context.Context, category string) ([]Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Search returns products whose name or description contains the query,
// case-insensitively. Same client-side filtering caveat as ByCategory.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			matched = append(matched, p)
		}
	}

	s.logger.Debug("Product search", map[string]interface{}{
		"operation": "product_search",
		"query":     query,
		"matches":   len(matched),
	})

	return matched, nil
}

// Create adds a new product to the catalog (admin only)
func (s *Service) Create(ctx context.Context, in CreateProduct) (*Product, error) {
	var product Product
	if err := s.client.Post(ctx, "/productos", in, &product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created", map[string]interface{}{
		"operation":  "product_create",
		"product_id": product.ID,
		"name":       product.Name,
	})

	return &product, nil
}

// Update modifies an existing product (admin only)
func (s *Service) Update(ctx context.Context, id int, in UpdateProduct) (*Product, error) {
	var product Product
	if err := s.client.Put(ctx, fmt.Sprintf("/productos/%d", id), in, &product); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return &product, nil
}

// Delete removes a product from the catalog (admin only)
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.client.Delete(ctx, fmt.Sprintf("/productos/%d", id)); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}
