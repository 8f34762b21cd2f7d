// Package app contains the application setup for the ProductService.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/product/service"
	"github.com/abgdnv/productcatalog/internal/product/store"
	"github.com/abgdnv/productcatalog/internal/product/transport/rest"
	"github.com/abgdnv/productcatalog/pkg/metrics"
	"github.com/abgdnv/productcatalog/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	ProductService service.ProductService
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

// SetupDependencies builds the in-memory catalogue and the service on top of it.
func SetupDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	var seed []store.Fields
	if cfg.Store.Seed {
		seed = store.SeedProducts()
	}
	productStore := store.NewInMemoryStore(seed...)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
		m.TrackCatalogueSize(func() int {
			products, err := productStore.FindAll(context.Background())
			if err != nil {
				logger.Warn("Failed to read catalogue size", "error", err)
				return 0
			}
			return len(products)
		})
	}

	return &Dependencies{
		ProductService: service.NewService(productStore),
		Metrics:        m,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the router and routes for the ProductService application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger, deps.Metrics)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the ProductService application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger, deps.Metrics)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the ProductService application.
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
