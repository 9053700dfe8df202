package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdemarket/storefront/catalog"
	"github.com/verdemarket/storefront/core"
	"github.com/verdemarket/storefront/orders"
	"github.com/verdemarket/storefront/session"
)

// backendStub is a minimal in-process rendering of the marketplace API
type backendStub struct {
	products []catalog.Product
	nextSale int
	sales    []orders.Order
}

func newBackendStub() *backendStub {
	return &backendStub{
		products: []catalog.Product{
			{ID: 1, Name: "Tomate", Price: decimal.NewFromFloat(2.5), Category: "verduras", Stock: 40},
			{ID: 2, Name: "Manzana", Price: decimal.NewFromFloat(1.8), Category: "frutas", Stock: 25},
		},
		nextSale: 100,
	}
}

func (b *backendStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Credenciales invalidas"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"mensaje": "bienvenido",
			"token":   "jwt-token",
			"usuario": map[string]interface{}{"id": 7, "nombre": "Ana", "email": req.Email},
		})
	})

	mux.HandleFunc("/productos", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(b.products)
	})

	mux.HandleFunc("/ventas", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			if r.Header.Get("Authorization") != "Bearer jwt-token" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"No autorizado"}`))
				return
			}
			var req orders.CreateOrder
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			order := orders.Order{
				ID:            b.nextSale,
				Status:        orders.StatusPending,
				PaymentMethod: req.PaymentMethod,
			}
			b.nextSale++
			b.sales = append(b.sales, order)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(order)
		default:
			json.NewEncoder(w).Encode(b.sales)
		}
	})

	return mux
}

func testApp(t *testing.T) (*App, *backendStub) {
	t.Helper()
	stub := newBackendStub()
	server := httptest.NewServer(stub.handler(t))
	t.Cleanup(server.Close)

	cfg := core.DefaultConfig()
	cfg.API.BaseURL = server.URL

	app, err := New(cfg, WithStore(core.NewMemoryStore()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	require.NoError(t, app.Start(context.Background()))
	return app, stub
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	app, err := New(nil, WithStore(core.NewMemoryStore()))
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Session)
	assert.NotNil(t, app.Cart)
	assert.NotNil(t, app.Catalog)
	assert.NotNil(t, app.Orders)
	assert.NotNil(t, app.Client)
	assert.Equal(t, "http://localhost:3000/api", app.Config.API.BaseURL)
}

func TestNew_UnknownStorageProvider(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Storage.Provider = "etcd"

	_, err := New(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestApp_IsolatedInstances(t *testing.T) {
	a, err := New(core.DefaultConfig(), WithStore(core.NewMemoryStore()))
	require.NoError(t, err)
	b, err := New(core.DefaultConfig(), WithStore(core.NewMemoryStore()))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Cart.AddItem(ctx, catalog.Product{ID: 1, Price: decimal.NewFromFloat(2.5)}, 1))

	assert.Equal(t, 1, a.Cart.Count())
	assert.Equal(t, 0, b.Cart.Count(), "apps must not share state")
}

func TestApp_LoginBrowseCheckout(t *testing.T) {
	app, stub := testApp(t)
	ctx := context.Background()

	// Anonymous browsing works
	products, err := app.Catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	// Checkout without items is rejected locally
	_, err = app.Orders.Checkout(ctx, app.Cart, orders.PaymentCash, "")
	assert.ErrorIs(t, err, core.ErrEmptyCart)

	// Log in, fill the cart, check out
	user, err := app.Session.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.True(t, app.Session.Authenticated())

	require.NoError(t, app.Cart.AddItem(ctx, products[0], 2))
	require.NoError(t, app.Cart.AddItem(ctx, products[1], 1))
	assert.True(t, app.Cart.Total().Equal(decimal.NewFromFloat(6.8)))

	order, err := app.Orders.Checkout(ctx, app.Cart, orders.PaymentCash, "")
	require.NoError(t, err)
	assert.Equal(t, 100, order.ID)
	assert.Equal(t, orders.StatusPending, order.Status)

	assert.True(t, app.Cart.IsEmpty())
	require.Len(t, stub.sales, 1)
}

func TestApp_LoginFailure(t *testing.T) {
	app, _ := testApp(t)

	_, err := app.Session.Login(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	assert.False(t, app.Session.Authenticated())
}

func TestApp_StatePersistsAcrossRestart(t *testing.T) {
	stub := newBackendStub()
	server := httptest.NewServer(stub.handler(t))
	t.Cleanup(server.Close)

	cfg := core.DefaultConfig()
	cfg.API.BaseURL = server.URL
	store := core.NewMemoryStore()
	ctx := context.Background()

	first, err := New(cfg, WithStore(store))
	require.NoError(t, err)
	require.NoError(t, first.Start(ctx))

	_, err = first.Session.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, first.Cart.AddItem(ctx, catalog.Product{ID: 1, Price: decimal.NewFromFloat(2.5)}, 3))

	// A second app over the same store restores session and cart on Start
	second, err := New(cfg, WithStore(store))
	require.NoError(t, err)
	require.NoError(t, second.Start(ctx))

	assert.True(t, second.Session.Authenticated())
	require.NotNil(t, second.Session.User())
	assert.Equal(t, "Ana", second.Session.User().Name)
	assert.Equal(t, 3, second.Cart.Count())
	assert.True(t, second.Cart.Total().Equal(decimal.NewFromFloat(7.5)))
}

func TestApp_AuthFailureHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token invalido"}`))
	}))
	t.Cleanup(server.Close)

	cfg := core.DefaultConfig()
	cfg.API.BaseURL = server.URL

	notified := false
	store := core.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, core.KeyToken, "expired-token"))
	require.NoError(t, store.Set(ctx, core.KeyUser, `{"id":7,"nombre":"Ana"}`))

	app, err := New(cfg, WithStore(store), WithAuthFailureHandler(func() { notified = true }))
	require.NoError(t, err)
	require.NoError(t, app.Start(ctx))
	require.True(t, app.Session.Authenticated())

	_, err = app.Catalog.List(ctx)
	require.Error(t, err)
	assert.True(t, core.IsAuthError(err))

	// The refresh path cannot succeed against this backend, so the
	// pipeline tears the session down and fires the hook.
	assert.True(t, notified)
	assert.False(t, app.Session.Authenticated())

	exists, err := store.Exists(ctx, core.KeyToken)
	require.NoError(t, err)
	assert.False(t, exists, "stored token cleared on teardown")
}

func TestApp_SessionSnapshot(t *testing.T) {
	app, _ := testApp(t)
	ctx := context.Background()

	_, err := app.Session.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)

	s := app.Session.Session()
	assert.True(t, s.Authenticated)
	assert.Equal(t, "jwt-token", s.Token)
	require.NotNil(t, s.User)
	assert.IsType(t, &session.User{}, s.User)
}
