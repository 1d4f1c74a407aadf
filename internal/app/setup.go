// Package app contains the application setup for the catalog service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/internal/transport/rest"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Store          store.ProductStore
	ProductService service.ProductService
	Logger         *slog.Logger
	// Metrics, when set, is served at MetricsPath.
	Metrics     http.Handler
	MetricsPath string
}

// SetupDependencies builds the snapshot backend selected by cfg, loads the catalog from it
// and wires the service. The returned cleanup releases the backend resources.
// A catalog that cannot be loaded is logged and the service starts empty.
func SetupDependencies(ctx context.Context, cfg pkgconfig.StorageConfig, logger *slog.Logger) (*Dependencies, func(), error) {
	snapshot, cleanup, err := setupSnapshot(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	catalog := store.NewCatalogStore(snapshot, logger)
	if err := catalog.Load(ctx); err != nil {
		logger.WarnContext(ctx, "Starting with an empty catalog", "error", err)
	}

	return &Dependencies{
		Store:          catalog,
		ProductService: service.NewService(catalog),
		Logger:         logger,
	}, cleanup, nil
}

func setupSnapshot(ctx context.Context, cfg pkgconfig.StorageConfig, logger *slog.Logger) (store.Snapshot, func(), error) {
	switch cfg.Driver {
	case pkgconfig.StorageDriverFile:
		logger.InfoContext(ctx, "Using file storage", "path", cfg.File.Path)
		return store.NewFileSnapshot(cfg.File.Path), func() {}, nil
	case pkgconfig.StorageDriverPostgres:
		if err := bootstrap.Migrate(store.Migrations, store.MigrationsDir, cfg.Database.URL); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create database connection pool: %w", err)
		}
		logger.InfoContext(ctx, "Successfully connected to the database!")
		return store.NewPgSnapshot(dbPool), dbPool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}

// SetupHttpHandler builds the router with middleware and the catalog routes.
// Used by tests to exercise the full HTTP stack.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.Metrics)
	}
	return mux
}

// wireRoutes sets up the HTTP routes for the catalog.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the catalog.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}
