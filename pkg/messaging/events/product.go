package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductEvent is published after a product has been created, updated, deleted or restocked.
type ProductEvent struct {
	EventID    uuid.UUID       `json:"event_id"`
	Type       string          `json:"type"`
	ProductID  int64           `json:"product_id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Price      decimal.Decimal `json:"price"`
	Stock      int32           `json:"stock"`
	Active     bool            `json:"active"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Subject routes the event by type, e.g. catalog.products.stock_updated.
func (e ProductEvent) Subject() string {
	return messaging.ProductsSubjectPrefix + "." + e.Type
}

func (e ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

func (e ProductEvent) ID() string {
	if e.EventID == uuid.Nil {
		return ""
	}
	return e.EventID.String()
}
