// Package events contains the service.Observer implementations wired by the application:
// structured logging, Prometheus counters and JetStream publishing.
package events

import (
	"context"
	"log/slog"

	"github.com/abgdnv/gocatalog/internal/service"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	msgevents "github.com/abgdnv/gocatalog/pkg/messaging/events"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// LogObserver writes one log record per mutation.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) Observe(ctx context.Context, e service.Event) {
	o.logger.InfoContext(ctx, "product "+string(e.Type),
		"product_id", e.Product.ID,
		"name", e.Product.Name,
		"active", e.Product.Active,
		"stock", e.Product.Stock,
	)
}

// MetricsObserver counts mutations by event type.
type MetricsObserver struct {
	counter *prometheus.CounterVec
}

// NewMetricsObserver registers catalog_product_events_total with reg.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "product_events_total",
		Help:      "Number of successful product mutations by type.",
	}, []string{"type"})
	if err := reg.Register(counter); err != nil {
		return nil, err
	}
	return &MetricsObserver{counter: counter}, nil
}

func (o *MetricsObserver) Observe(_ context.Context, e service.Event) {
	o.counter.WithLabelValues(string(e.Type)).Inc()
}

// PublishingObserver forwards mutations to a message broker.
// A failed publish is logged; the mutation it describes has already been committed.
type PublishingObserver struct {
	publisher messaging.Publisher
	logger    *slog.Logger
}

func NewPublishingObserver(publisher messaging.Publisher, logger *slog.Logger) *PublishingObserver {
	return &PublishingObserver{publisher: publisher, logger: logger}
}

func (o *PublishingObserver) Observe(ctx context.Context, e service.Event) {
	event := ToProductEvent(e)
	if err := o.publisher.Publish(ctx, event); err != nil {
		o.logger.ErrorContext(ctx, "failed to publish product event",
			"subject", event.Subject(),
			"product_id", event.ProductID,
			"error", err,
		)
	}
}

// ToProductEvent converts a service event to its wire representation.
func ToProductEvent(e service.Event) msgevents.ProductEvent {
	return msgevents.ProductEvent{
		EventID:    uuid.New(),
		Type:       string(e.Type),
		ProductID:  e.Product.ID,
		Name:       e.Product.Name,
		Category:   e.Product.Category,
		Price:      e.Product.Price,
		Stock:      e.Product.Stock,
		Active:     e.Product.Active,
		OccurredAt: e.OccurredAt,
	}
}

// Multi fans an event out to every observer in order.
type Multi []service.Observer

func (m Multi) Observe(ctx context.Context, e service.Event) {
	for _, o := range m {
		o.Observe(ctx, e)
	}
}
