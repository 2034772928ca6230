// Package main runs the product catalog service: REST and gRPC APIs over a product store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/abgdnv/catalog/internal/product/app"
	"github.com/abgdnv/catalog/internal/product/config"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	"github.com/abgdnv/catalog/pkg/config/configloader"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/abgdnv/catalog/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "product"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, opens the product store and event publisher,
// and serves HTTP, gRPC and optionally pprof until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, err := configloader.Load[*config.Config](serviceName)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	g, gCtx := errgroup.WithContext(ctx)
	// flush runs a shutdown hook once the group is cancelled.
	flush := func(name string, shutdown func(context.Context) error) {
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down " + name)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return shutdown(shutdownCtx)
		})
	}

	if cfg.Telemetry.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		flush("tracer provider", tracerProvider.Shutdown)
	}

	productStore, closeStore, err := app.NewStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher, err := app.NewPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	deps := app.SetupDependencies(productStore, publisher, logger)
	if cfg.Telemetry.Metrics.Enabled {
		meterProvider, metricsHandler, err := telemetry.NewMeterProvider(serviceName)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		deps.Metrics = metricsHandler
		deps.MetricsPath = cfg.Telemetry.Metrics.Path
		flush("meter provider", meterProvider.Shutdown)
	}

	grpcListener, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}
	grpcServer, grpcHealth := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
	httpServer := app.SetupHttpServer(deps, cfg)

	g.Go(func() error {
		return server.RunHTTP(gCtx, httpServer, cfg.Shutdown.Timeout, logger)
	})
	g.Go(func() error {
		return server.RunGRPC(gCtx, grpcServer, grpcHealth, grpcListener, cfg.Shutdown.Timeout, logger)
	})
	if cfg.PProf.Enabled {
		// the default mux carries the pprof handlers
		pprofServer := &http.Server{Addr: cfg.PProf.Addr}
		g.Go(func() error {
			return server.RunHTTP(gCtx, pprofServer, cfg.Shutdown.Timeout, logger)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}
