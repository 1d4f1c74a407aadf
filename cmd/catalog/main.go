// Package main runs the product catalog HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/catalog/internal/app"
	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	"github.com/abgdnv/catalog/pkg/config/configloader"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/abgdnv/catalog/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "catalog"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration and the catalog, then serves HTTP (and pprof when enabled) until ctx is done.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName, config.Defaults())
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	// create tracer provider
	if cfg.Telemetry.Traces.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry.Traces)
		if err != nil {
			logger.Error("error creating tracer provider", slog.Any("error", err))
			return err
		}
		defer shutdownWithTimeout(logger, "tracer provider", cfg.Shutdown.Timeout, tracerProvider.Shutdown)
	}
	// create meter provider before the service registers its instruments
	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		meterProvider, handler, err := telemetry.NewMeterProvider(serviceName)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer shutdownWithTimeout(logger, "meter provider", cfg.Shutdown.Timeout, meterProvider.Shutdown)
		metricsHandler = handler
	}

	deps, cleanup, err := app.SetupDependencies(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to set up dependencies: %w", err)
	}
	defer cleanup()
	if metricsHandler != nil {
		deps.Metrics = metricsHandler
		deps.MetricsPath = cfg.Telemetry.Metrics.Path
	}

	httpServer := app.SetupHttpServer(deps, cfg)
	pprofServer := server.NewPprofServer(cfg.PProf)

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("Servidor escuchando", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// shutdownWithTimeout flushes a telemetry provider, logging instead of failing the exit path.
func shutdownWithTimeout(logger *slog.Logger, name string, timeout time.Duration, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("failed to shut down "+name, slog.Any("error", err))
	}
}
