package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/gocatalog/internal/model"
	"github.com/abgdnv/gocatalog/internal/service"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	msgevents "github.com/abgdnv/gocatalog/pkg/messaging/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPublisher records published events and fails with err when set.
type mockPublisher struct {
	published []messaging.Event
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	m.published = append(m.published, event)
	return m.err
}

func testEvent(t service.EventType) service.Event {
	at := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	return service.Event{
		Type: t,
		Product: model.Product{
			ID: 1, Name: "Laptop Gaming", Category: "Electronics",
			Price: decimal.RequireFromString("2999.99"), Stock: 5, Active: true,
			CreatedAt: at, UpdatedAt: at,
		},
		OccurredAt: at,
	}
}

func Test_LogObserver(t *testing.T) {
	// given
	var buf bytes.Buffer
	observer := NewLogObserver(slog.New(slog.NewJSONHandler(&buf, nil)))

	// when
	observer.Observe(context.Background(), testEvent(service.EventStockUpdated))

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "product stock_updated", record["msg"])
	assert.EqualValues(t, 1, record["product_id"])
	assert.EqualValues(t, 5, record["stock"])
}

func Test_MetricsObserver(t *testing.T) {
	// given
	reg := prometheus.NewRegistry()
	observer, err := NewMetricsObserver(reg)
	require.NoError(t, err)

	// when
	observer.Observe(context.Background(), testEvent(service.EventCreated))
	observer.Observe(context.Background(), testEvent(service.EventCreated))
	observer.Observe(context.Background(), testEvent(service.EventDeleted))

	// then
	expected := `
# HELP catalog_product_events_total Number of successful product mutations by type.
# TYPE catalog_product_events_total counter
catalog_product_events_total{type="created"} 2
catalog_product_events_total{type="deleted"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "catalog_product_events_total"))

	_, err = NewMetricsObserver(reg)
	assert.Error(t, err, "registering twice must fail")
}

func Test_PublishingObserver(t *testing.T) {
	testCases := []struct {
		name      string
		publisher *mockPublisher
		expectLog bool
	}{
		{name: "Success - event published", publisher: &mockPublisher{}},
		{name: "Error - publish failure is logged", publisher: &mockPublisher{err: errors.New("nats down")}, expectLog: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			observer := NewPublishingObserver(tc.publisher, slog.New(slog.NewJSONHandler(&buf, nil)))

			// when
			observer.Observe(context.Background(), testEvent(service.EventUpdated))

			// then
			require.Len(t, tc.publisher.published, 1)
			published, ok := tc.publisher.published[0].(msgevents.ProductEvent)
			require.True(t, ok)
			assert.Equal(t, "catalog.products.updated", published.Subject())
			assert.Equal(t, int64(1), published.ProductID)
			assert.NotEmpty(t, published.ID())
			assert.Equal(t, tc.expectLog, strings.Contains(buf.String(), "failed to publish product event"))
		})
	}
}

func Test_Multi(t *testing.T) {
	// given
	var calls []string
	m := Multi{
		service.ObserverFunc(func(context.Context, service.Event) { calls = append(calls, "first") }),
		service.ObserverFunc(func(context.Context, service.Event) { calls = append(calls, "second") }),
	}

	// when
	m.Observe(context.Background(), testEvent(service.EventCreated))

	// then
	assert.Equal(t, []string{"first", "second"}, calls)
}
