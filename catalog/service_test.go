package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdemarket/storefront/core"
	"github.com/verdemarket/storefront/transport"
)

var testCatalog = []Product{
	{ID: 1, Name: "Tomate", Description: "Tomate de invernadero", Price: decimal.NewFromFloat(2.5), Category: "verduras", Stock: 40},
	{ID: 2, Name: "Manzana", Description: "Manzana roja", Price: decimal.NewFromFloat(1.8), Category: "frutas", Stock: 25},
	{ID: 3, Name: "Lechuga", Description: "Lechuga fresca de temporada", Price: decimal.NewFromFloat(1.2), Category: "verduras", Stock: 12},
}

func catalogTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := core.DefaultConfig()
	cfg.API.BaseURL = server.URL
	return NewService(transport.New(cfg), nil)
}

func listHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/productos", r.URL.Path)
		json.NewEncoder(w).Encode(testCatalog)
	})
}

func TestList(t *testing.T) {
	svc := catalogTestService(t, listHandler(t))

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Tomate", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.NewFromFloat(2.5)))
}

func TestGet(t *testing.T) {
	svc := catalogTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/productos/2", r.URL.Path)
		json.NewEncoder(w).Encode(testCatalog[1])
	}))

	product, err := svc.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Manzana", product.Name)
}

func TestGet_NotFound(t *testing.T) {
	svc := catalogTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Producto no encontrado"}`))
	}))

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
}

func TestByCategory(t *testing.T) {
	svc := catalogTestService(t, listHandler(t))

	products, err := svc.ByCategory(context.Background(), "verduras")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 1, products[0].ID)
	assert.Equal(t, 3, products[1].ID)

	none, err := svc.ByCategory(context.Background(), "lacteos")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearch(t *testing.T) {
	svc := catalogTestService(t, listHandler(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		query   string
		wantIDs []int
	}{
		{"matches name case-insensitively", "TOMATE", []int{1}},
		{"matches description", "temporada", []int{3}},
		{"substring across products", "man", []int{2}},
		{"no matches", "platano", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := svc.Search(ctx, tt.query)
			require.NoError(t, err)

			var ids []int
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCreate(t *testing.T) {
	var gotBody map[string]interface{}
	svc := catalogTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/productos", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Product{ID: 10, Name: "Pepino", Price: decimal.NewFromFloat(0.9)})
	}))

	stock := 15
	product, err := svc.Create(context.Background(), CreateProduct{
		Name:     "Pepino",
		Price:    decimal.NewFromFloat(0.9),
		Category: "verduras",
		Stock:    &stock,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, product.ID)
	assert.Equal(t, "Pepino", gotBody["nombre"])
	assert.Equal(t, float64(15), gotBody["stock"])
}

func TestUpdate_PartialPayload(t *testing.T) {
	var gotBody map[string]interface{}
	svc := catalogTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/productos/1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(testCatalog[0])
	}))

	price := decimal.NewFromFloat(3.1)
	_, err := svc.Update(context.Background(), 1, UpdateProduct{Price: &price})
	require.NoError(t, err)

	// Only the set field travels on the wire
	assert.Contains(t, gotBody, "precio")
	assert.NotContains(t, gotBody, "nombre")
	assert.NotContains(t, gotBody, "stock")
}

func TestDelete(t *testing.T) {
	var gotPath, gotMethod string
	svc := catalogTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, svc.Delete(context.Background(), 4))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/productos/4", gotPath)
}
