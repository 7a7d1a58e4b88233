// Package main runs the product catalog: REST API, gRPC health and optional pprof.
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
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/gocatalog/internal/app"
	"github.com/abgdnv/gocatalog/internal/config"
	"github.com/abgdnv/gocatalog/internal/store"
	"github.com/abgdnv/gocatalog/pkg/bootstrap"
	"github.com/abgdnv/gocatalog/pkg/config/configloader"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	natsclient "github.com/abgdnv/gocatalog/pkg/nats"
	"github.com/abgdnv/gocatalog/pkg/telemetry"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, builds the storage chain and runs the HTTP, gRPC and pprof servers until ctx is done.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](config.ServiceName, configloader.WithDefaults(config.Defaults()))
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.Telemetry.Traces.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, config.ServiceName, cfg.Telemetry.Traces.OtlpHttp)
		if err != nil {
			return err
		}
		defer shutdownWithTimeout(logger, "tracer provider", cfg.Shutdown.Timeout, tp.Shutdown)
	}

	registry := app.NewRegistry()
	if cfg.Telemetry.Metrics.Enabled {
		mp, err := telemetry.NewMeterProvider(config.ServiceName, registry)
		if err != nil {
			return err
		}
		defer shutdownWithTimeout(logger, "meter provider", cfg.Shutdown.Timeout, mp.Shutdown)
	}

	baseStore, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var cache redis.UniversalClient
	if cfg.Cache.Enabled {
		client, err := bootstrap.NewRedisClient(ctx, cfg.Cache)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = client.Close() }()
		cache = client
		logger.Info("Product cache enabled", slog.String("addr", cfg.Cache.Addr))
	}

	var publisher messaging.Publisher
	if cfg.Events.Enabled {
		nc, err := natsclient.NewClient(cfg.NATS)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Close()
		js, err := natsclient.NewJetStreamContext(nc)
		if err != nil {
			return err
		}
		if _, err := natsclient.EnsureStream(ctx, js, cfg.Events.Stream, []string{messaging.ProductsSubjects}, cfg.Events.MaxAge); err != nil {
			return err
		}
		publisher = natsclient.NewNatsPublisher(js)
		logger.Info("Product events enabled", slog.String("stream", cfg.Events.Stream))
	}

	deps, err := app.SetupDependencies(app.BuildStore(baseStore, cfg, cache, logger), publisher, registry, logger)
	if err != nil {
		return fmt.Errorf("failed to set up dependencies: %w", err)
	}

	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer := app.SetupGrpcServer(deps, cfg)
	pprofServer := &http.Server{
		Addr:              cfg.PProf.Addr,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
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

	if cfg.GRPC.Enabled {
		// Start the gRPC server
		g.Go(func() error {
			grpcAddr := ":" + cfg.GRPC.Port
			lis, err := net.Listen("tcp", grpcAddr)
			if err != nil {
				return fmt.Errorf("failed to listen on gRPC port: %w", err)
			}
			logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
			return grpcServer.Serve(lis)
		})
		// gracefully shutdown gRPC server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down gRPC server...")
			deps.Health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			stopped := make(chan struct{})
			go func() {
				grpcServer.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
				logger.Info("gRPC server stopped gracefully.")
				return nil
			case <-time.After(cfg.Shutdown.Timeout):
				logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
				grpcServer.Stop()
				return fmt.Errorf("grpc server graceful stop timed out")
			}
		})
	}

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
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

// openStore returns the configured base store and a function releasing its resources.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, func(), error) {
	if cfg.Database.UsesMemory() {
		logger.Warn("Using in-memory product store, data is lost on restart")
		return store.NewInMemoryStore(), func() {}, nil
	}

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database, cfg.Resilience.Retry, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	logger.Info("Successfully connected to the database!")

	if cfg.Database.MigrateOnStart {
		if err := bootstrap.Migrate(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			dbPool.Close()
			return nil, nil, err
		}
		logger.Info("Database migrations applied", slog.String("path", cfg.Database.MigrationsPath))
	}
	return store.NewPgStore(dbPool), dbPool.Close, nil
}

func shutdownWithTimeout(logger *slog.Logger, name string, timeout time.Duration, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", slog.String("component", name), slog.Any("error", err))
	}
}
