package orders

import (
	"github.com/shopspring/decimal"

	"github.com/verdemarket/storefront/catalog"
)

// Status is the lifecycle state of a submitted order.
// Wire values are the backend's Spanish states.
type Status string

const (
	StatusPending   Status = "pendiente"
	StatusCompleted Status = "completada"
	StatusCancelled Status = "cancelada"
)

// PaymentMethod selects how an order is paid
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "efectivo"
	PaymentCard     PaymentMethod = "tarjeta"
	PaymentTransfer PaymentMethod = "transferencia"
)

// OrderItem is one line of a checkout request. Only the product reference
// and quantity travel to the backend; prices are resolved server-side
// against the live catalog.
type OrderItem struct {
	ProductID int `json:"producto_id"`
	Quantity  int `json:"cantidad"`
}

// CreateOrder is the payload for POST /ventas
type CreateOrder struct {
	Items            []OrderItem   `json:"items"`
	PaymentMethod    PaymentMethod `json:"metodo_pago"`
	PaymentReference string        `json:"referencia_pago,omitempty"`
}

// OrderDetail is one priced line of a submitted order
type OrderDetail struct {
	ID        int              `json:"id"`
	ProductID int              `json:"producto_id"`
	Quantity  int              `json:"cantidad"`
	UnitPrice decimal.Decimal  `json:"precio_unitario"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	Product   *catalog.Product `json:"producto,omitempty"`
}

// Order is a submitted cart as the backend records it ("venta").
// The backend assigns the ID, status and all monetary fields.
type Order struct {
	ID               int             `json:"id"`
	VendorID         int             `json:"vendedor_id"`
	Total            decimal.Decimal `json:"total"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Tax              decimal.Decimal `json:"impuesto"`
	Status           Status          `json:"estado"`
	PaymentMethod    PaymentMethod   `json:"metodo_pago"`
	PaymentStatus    string          `json:"estado_pago"`
	PaymentReference string          `json:"referencia_pago,omitempty"`
	Details          []OrderDetail   `json:"detalles"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
}
