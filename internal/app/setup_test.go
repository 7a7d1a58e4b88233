package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/gocatalog/internal/config"
	"github.com/abgdnv/gocatalog/internal/store"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	subjects []string
}

func (p *capturingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.subjects = append(p.subjects, event.Subject())
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func Test_BuildStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })

	testCases := []struct {
		name     string
		breaker  bool
		cache    bool
		expected any
	}{
		{name: "plain", expected: &store.InMemoryStore{}},
		{name: "breaker", breaker: true, expected: &store.BreakerStore{}},
		{name: "cache", cache: true, expected: &store.CachedStore{}},
		{name: "cache over breaker", breaker: true, cache: true, expected: &store.CachedStore{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			cfg := &config.Config{}
			cfg.Resilience.CircuitBreaker.Enabled = tc.breaker
			cfg.Resilience.CircuitBreaker.ConsecutiveFailures = 3
			cfg.Cache.Enabled = tc.cache

			// when
			s := BuildStore(store.NewInMemoryStore(), cfg, client, discardLogger())

			// then
			assert.IsType(t, tc.expected, s)
		})
	}
}

func Test_HttpHandler_EndToEnd(t *testing.T) {
	// given
	publisher := &capturingPublisher{}
	deps, err := SetupDependencies(store.NewInMemoryStore(), publisher, NewRegistry(), discardLogger())
	require.NoError(t, err)
	srv := httptest.NewServer(SetupHttpHandler(deps))
	t.Cleanup(srv.Close)

	// when
	resp, err := http.Post(srv.URL+"/api/v1/products", "application/json",
		strings.NewReader(`{"name":"Desk Lamp","price":19.99,"category":"Home","stock":4}`))
	require.NoError(t, err)
	_ = resp.Body.Close()

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = health.Body.Close()

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(metrics.Body)
	_ = metrics.Body.Close()
	require.NoError(t, err)

	// then
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	assert.Equal(t, http.StatusOK, health.StatusCode)
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
	assert.Contains(t, string(body), `catalog_product_events_total{type="created"} 1`)
	assert.Equal(t, []string{"catalog.products.created"}, publisher.subjects)
}

func Test_SetupDependencies_WithoutPublisher(t *testing.T) {
	// given
	deps, err := SetupDependencies(store.NewInMemoryStore(), nil, NewRegistry(), discardLogger())
	require.NoError(t, err)
	cfg := &config.Config{}

	// when
	grpcServer := SetupGrpcServer(deps, cfg)
	t.Cleanup(grpcServer.Stop)

	// then
	assert.Contains(t, grpcServer.GetServiceInfo(), "grpc.health.v1.Health")
}
