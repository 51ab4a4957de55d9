// Package app is the composition root: it constructs the stores, the cart
// builder and the HTTP surface with process-wide lifetime.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"ventas/internal/cart"
	"ventas/internal/config"
	"ventas/internal/metrics"
	"ventas/internal/storage"
	"ventas/internal/store"
	"ventas/internal/transport/rest"
	"ventas/pkg/server"

	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Clients  *store.ClientStore
	Products *store.ProductStore
	Orders   *store.OrderStore
	Session  *store.SessionStore
	Cart     *cart.Builder
	Logger   *slog.Logger
}

// SetupDependencies constructs the stores over the given KV storage. Stores
// load their persisted state here; the product store seeds its catalog when
// none exists.
func SetupDependencies(ctx context.Context, kv storage.KV, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		Clients:  store.NewClientStore(ctx, kv, logger),
		Products: store.NewProductStore(ctx, kv, logger),
		Orders:   store.NewOrderStore(ctx, kv, logger),
		Session:  store.NewSessionStore(ctx, kv, logger),
		Cart:     cart.New(),
		Logger:   logger,
	}
}

// SetupHttpHandler initializes the router and routes. Also used by handler
// tests to exercise the full middleware chain.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	mux.Use(metrics.HTTPMiddleware)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	handler := rest.NewHandler(deps.Clients, deps.Products, deps.Orders, deps.Session, deps.Cart, deps.Logger)
	handler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
