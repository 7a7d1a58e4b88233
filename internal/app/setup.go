// Package app wires the catalog: storage chain, service, observers and servers.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/gocatalog/internal/config"
	"github.com/abgdnv/gocatalog/internal/events"
	"github.com/abgdnv/gocatalog/internal/service"
	"github.com/abgdnv/gocatalog/internal/store"
	"github.com/abgdnv/gocatalog/internal/transport/rest"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/abgdnv/gocatalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

type Dependencies struct {
	ProductService service.ProductService
	Store          store.ProductStore
	Registry       *prometheus.Registry
	Health         *health.Server
	Logger         *slog.Logger
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// BuildStore decorates base with the circuit breaker and then the Redis cache, each only when enabled.
func BuildStore(base store.ProductStore, cfg *config.Config, cache redis.UniversalClient, logger *slog.Logger) store.ProductStore {
	s := base
	if cfg.Resilience.CircuitBreaker.Enabled {
		s = store.NewBreakerStore(s, cfg.Resilience.CircuitBreaker)
	}
	if cfg.Cache.Enabled && cache != nil {
		s = store.NewCachedStore(s, cache, cfg.Cache.TTL, logger)
	}
	return s
}

// SetupDependencies builds the service on top of productStore. publisher may be nil when events are disabled.
func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, reg *prometheus.Registry, logger *slog.Logger) (*Dependencies, error) {
	metrics, err := events.NewMetricsObserver(reg)
	if err != nil {
		return nil, err
	}
	observers := events.Multi{events.NewLogObserver(logger), metrics}
	if publisher != nil {
		observers = append(observers, events.NewPublishingObserver(publisher, logger))
	}

	return &Dependencies{
		ProductService: service.NewService(productStore, service.WithObserver(observers)),
		Store:          productStore,
		Registry:       reg,
		Health:         health.NewServer(),
		Logger:         logger,
	}, nil
}

// SetupHttpHandler initializes the routes and middleware of the catalog.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, "catalog-http")
}

// wireRoutes sets up the HTTP routes of the catalog.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Store, deps.Logger)
	productHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))
}

// SetupHttpServer creates and configures the HTTP server of the catalog.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, cfg *config.Config) *grpc.Server {
	return server.NewGRPCServer(server.GRPCOptions{
		Reflection:     cfg.GRPC.ReflectionEnabled,
		RequestTimeout: cfg.GRPC.RequestTimeout,
		Logger:         deps.Logger,
	}, server.RegisterHealth(deps.Health))
}
