// Package messaging defines the transport-neutral contract for publishing domain events.
package messaging

import (
	"context"
)

const (
	// ProductsSubjectPrefix prefixes the subject of every product event.
	ProductsSubjectPrefix = "catalog.products"
	// ProductsSubjects matches every product event subject.
	ProductsSubjects = ProductsSubjectPrefix + ".>"
)

type Event interface {
	// Subject is the routing key of the event.
	Subject() string
	// Payload is the encoded event body.
	Payload() ([]byte, error)
	// ID identifies the event for broker-side deduplication. Empty disables it.
	ID() string
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
