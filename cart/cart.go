package cart

import (
	"github.com/shopspring/decimal"

	"github.com/verdemarket/storefront/catalog"
)

// Line is one product-quantity pairing within the cart. The product
// snapshot is the client's possibly stale copy of the catalog entry; its
// price is what the cached total is computed from.
type Line struct {
	ProductID int              `json:"producto_id"`
	Quantity  int              `json:"cantidad"`
	Product   *catalog.Product `json:"product,omitempty"`
}

// Cart is the persisted snapshot shape: the ordered line sequence plus
// the cached total. This is exactly what goes to storage under the
// cart-storage key.
type Cart struct {
	Lines []Line          `json:"items"`
	Total decimal.Decimal `json:"total"`
}
