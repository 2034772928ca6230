// Package app contains the application setup for the ProductService.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/internal/product/config"
	"github.com/abgdnv/catalog/internal/product/migrations"
	"github.com/abgdnv/catalog/internal/product/service"
	"github.com/abgdnv/catalog/internal/product/store"
	grpcImpl "github.com/abgdnv/catalog/internal/product/transport/grpc"
	"github.com/abgdnv/catalog/internal/product/transport/rest"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/nats"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
	// Metrics, when set, is served at MetricsPath.
	Metrics     http.Handler
	MetricsPath string
}

func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	pService := service.NewService(productStore, publisher, logger)

	return &Dependencies{
		ProductService: pService,
		Logger:         logger,
	}
}

// NewStore opens the configured product store. The returned func releases its resources.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, func(), error) {
	if !cfg.UsesPostgres() {
		logger.Warn("Using in-memory product store, data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}

	if cfg.Database.Migrate {
		if err := bootstrap.Migrate(cfg.Database.URL, migrations.FS, logger); err != nil {
			return nil, nil, err
		}
	}
	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	logger.Info("Successfully connected to the database!")
	return store.NewPgStore(dbPool), dbPool.Close, nil
}

// NewPublisher connects to NATS and makes sure the product stream exists.
// With NATS disabled events are dropped.
func NewPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Nats.Enabled {
		logger.Info("NATS is disabled, product events will not be published")
		return messaging.NopPublisher{}, func() {}, nil
	}

	natsConn, err := nats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout, logger)
	if err != nil {
		return nil, nil, err
	}
	js, err := nats.NewJetStreamContext(natsConn)
	if err != nil {
		return nil, nil, err
	}
	if err := nats.EnsureStream(ctx, js, cfg.Nats.Stream, messaging.ProductsWildcardSubject); err != nil {
		natsConn.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", slog.String("url", natsConn.ConnectedUrlRedacted()), slog.String("stream", cfg.Nats.Stream))

	var publisher messaging.Publisher = messaging.NewBreakerPublisher(nats.NewNatsPublisher(js), cfg.Publisher)
	if scope := eventScope(cfg); scope != "" {
		publisher = messaging.NewScopedPublisher(publisher, scope)
	}
	return publisher, func() {
		if err := natsConn.Drain(); err != nil {
			logger.Warn("Failed to drain NATS connection", "error", err)
		}
	}, nil
}

// eventScope returns a per-boot prefix for event IDs when the store does not survive restarts,
// so the stream's duplicate window cannot drop events of a fresh in-memory store.
func eventScope(cfg *config.Config) string {
	if cfg.UsesPostgres() {
		return ""
	}
	return uuid.NewString()
}

// SetupHttpHandler initializes the HTTP server and routes for the ProductService application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the ProductService application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.Metrics)
	}
}

// SetupHttpServer creates and configures an HTTP server for the ProductService application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupGrpcServer initializes the gRPC server for the ProductService application.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) (*grpc.Server, *health.Server) {
	productRegisterFunc := func(s *grpc.Server) {
		grpcImpl.RegisterProductServiceServer(s, grpcImpl.NewServer(deps.ProductService, deps.Logger))
	}
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, productRegisterFunc)
}
