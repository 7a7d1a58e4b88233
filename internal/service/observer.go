package service

import (
	"context"
	"time"

	"github.com/abgdnv/gocatalog/internal/model"
)

// EventType names a successful product mutation.
type EventType string

const (
	EventCreated      EventType = "created"
	EventUpdated      EventType = "updated"
	EventDeleted      EventType = "deleted"
	EventStockUpdated EventType = "stock_updated"
)

// Event describes a mutation after it has been persisted.
type Event struct {
	Type       EventType
	Product    model.Product
	OccurredAt time.Time
}

// Observer is notified after every successful mutation.
// Implementations must not block for long and must not fail the operation.
type Observer interface {
	Observe(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) Observe(ctx context.Context, event Event) {
	f(ctx, event)
}

type noopObserver struct{}

func (noopObserver) Observe(context.Context, Event) {}
