package catalog

import "github.com/shopspring/decimal"

// Product is a catalog entity owned by the backend. The client only ever
// holds read-only, possibly stale copies. Wire field names follow the
// backend's Spanish API surface.
type Product struct {
	ID                   int             `json:"id"`
	Name                 string          `json:"nombre"`
	Description          string          `json:"descripcion"`
	Price                decimal.Decimal `json:"precio"`
	Category             string          `json:"categoria"`
	Image                string          `json:"imagen,omitempty"`
	Stock                int             `json:"stock"`
	VendorID             int             `json:"vendedor_id"`
	Origin               string          `json:"origen,omitempty"`
	SustainablePractices string          `json:"practicas_sostenibles,omitempty"`
	SuggestedRecipes     string          `json:"recetas_sugeridas,omitempty"`
}

// CreateProduct is the payload for creating a catalog entry (admin)
type CreateProduct struct {
	Name                 string          `json:"nombre"`
	Description          string          `json:"descripcion"`
	Price                decimal.Decimal `json:"precio"`
	Category             string          `json:"categoria"`
	Image                string          `json:"imagen,omitempty"`
	Stock                *int            `json:"stock,omitempty"`
	Origin               string          `json:"origen,omitempty"`
	SustainablePractices string          `json:"practicas_sostenibles,omitempty"`
	SuggestedRecipes     string          `json:"recetas_sugeridas,omitempty"`
}

// UpdateProduct is the payload for partially updating a catalog entry
// (admin). Nil fields are left untouched by the backend.
type UpdateProduct struct {
	Name                 *string          `json:"nombre,omitempty"`
	Description          *string          `json:"descripcion,omitempty"`
	Price                *decimal.Decimal `json:"precio,omitempty"`
	Category             *string          `json:"categoria,omitempty"`
	Image                *string          `json:"imagen,omitempty"`
	Stock                *int             `json:"stock,omitempty"`
	Origin               *string          `json:"origen,omitempty"`
	SustainablePractices *string          `json:"practicas_sostenibles,omitempty"`
	SuggestedRecipes     *string          `json:"recetas_sugeridas,omitempty"`
}
