// Package storefront wires the full client for the VerdeMarket
// fresh-produce marketplace: persisted storage, session and cart state
// managers, the authenticated request pipeline, and the product/order
// domain services.
//
// Most programs only need App:
//
//	cfg, err := core.NewConfig(
//	    core.WithBaseURL("https://api.verdemarket.example/api"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app, err := storefront.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Close()
//
//	if err := app.Start(ctx); err != nil { ... }
//	products, err := app.Catalog.List(ctx)
//
// Everything App bundles can also be constructed piecemeal from the
// subpackages when a program needs to swap a component, most commonly the
// storage backend in tests.
package storefront

import (
	"context"
	"fmt"

	"github.com/verdemarket/storefront/cart"
	"github.com/verdemarket/storefront/catalog"
	"github.com/verdemarket/storefront/core"
	"github.com/verdemarket/storefront/orders"
	"github.com/verdemarket/storefront/pkg/logger"
	"github.com/verdemarket/storefront/session"
	"github.com/verdemarket/storefront/transport"
)

// Re-export commonly used core types so simple programs import one package
type (
	Config = core.Config
	Option = core.Option
	Logger = core.Logger
	Store  = core.Store
)

// Re-export core configuration helpers
var (
	NewConfig          = core.NewConfig
	DefaultConfig      = core.DefaultConfig
	WithBaseURL        = core.WithBaseURL
	WithRequestTimeout = core.WithRequestTimeout
	WithStateFile      = core.WithStateFile
	WithRedisURL       = core.WithRedisURL
	WithLogLevel       = core.WithLogLevel
	WithConfigFile     = core.WithConfigFile
)

// App is the assembled storefront client. State lives in the exported
// managers; the services are stateless request shapers. There are no
// package-level singletons: each App owns its own state and two Apps
// never share anything, which keeps tests hermetic.
type App struct {
	Config  *core.Config
	Session *session.Manager
	Cart    *cart.Manager
	Catalog *catalog.Service
	Orders  *orders.Service
	Client  *transport.Client

	store  core.Store
	logger core.Logger
}

// AppOption customizes App assembly
type AppOption func(*appOptions)

type appOptions struct {
	store       core.Store
	logger      core.Logger
	authFailure func()
}

// WithStore substitutes the persisted storage backend, bypassing the
// provider selection in the configuration
func WithStore(store core.Store) AppOption {
	return func(o *appOptions) {
		o.store = store
	}
}

// WithLogger substitutes the logger for every component
func WithLogger(l core.Logger) AppOption {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithAuthFailureHandler sets the hook invoked when the pipeline tears
// the session down after a persistent authentication failure
func WithAuthFailureHandler(fn func()) AppOption {
	return func(o *appOptions) {
		o.authFailure = fn
	}
}

// New assembles a storefront client from the given configuration.
// A nil config gets defaults plus environment variables.
func New(cfg *core.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		var err error
		cfg, err = core.NewConfig()
		if err != nil {
			return nil, err
		}
	}

	appOpts := &appOptions{}
	for _, opt := range opts {
		opt(appOpts)
	}

	log := appOpts.logger
	if log == nil {
		log = logger.FromConfig(cfg.Logging.Level, cfg.Logging.Format)
	}

	store := appOpts.store
	if store == nil {
		var err error
		store, err = newStore(cfg, log)
		if err != nil {
			return nil, err
		}
	}

	sessionMgr := session.NewManager(store, log)
	cartMgr := cart.NewManager(store, log)

	client := transport.New(cfg,
		transport.WithLogger(log),
		transport.WithAuthFailureHandler(appOpts.authFailure),
	)

	// Session manager and pipeline reference each other, so the last
	// pieces are bound after construction.
	authSvc := session.NewAuthService(client, log)
	sessionMgr.SetAuthService(authSvc)
	client.SetCredentials(sessionMgr)
	client.SetRefresher(authSvc)

	return &App{
		Config:  cfg,
		Session: sessionMgr,
		Cart:    cartMgr,
		Catalog: catalog.NewService(client, log),
		Orders:  orders.NewService(client, log),
		Client:  client,
		store:   store,
		logger:  log,
	}, nil
}

// newStore builds the persisted store named by the configuration
func newStore(cfg *core.Config, log core.Logger) (core.Store, error) {
	switch cfg.Storage.Provider {
	case "inmemory":
		s := core.NewMemoryStore()
		s.SetLogger(log)
		return s, nil
	case "file":
		s, err := core.NewFileStore(cfg.Storage.FilePath)
		if err != nil {
			return nil, err
		}
		s.SetLogger(log)
		return s, nil
	case "redis":
		return core.NewRedisStore(core.RedisStoreOptions{
			RedisURL:  cfg.Storage.RedisURL,
			Namespace: cfg.Storage.Namespace,
			Logger:    log,
		})
	default:
		return nil, fmt.Errorf("unknown storage provider %q: %w", cfg.Storage.Provider, core.ErrInvalidConfiguration)
	}
}

// Start restores persisted session and cart state. Call once before
// issuing requests.
func (a *App) Start(ctx context.Context) error {
	if err := a.Session.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}
	if err := a.Cart.Load(ctx); err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	a.logger.Info("Storefront client ready", map[string]interface{}{
		"operation":     "app_start",
		"base_url":      a.Config.API.BaseURL,
		"authenticated": a.Session.Authenticated(),
		"cart_items":    a.Cart.Count(),
	})

	return nil
}

// Close releases resources held by the storage backend
func (a *App) Close() error {
	if closer, ok := a.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
