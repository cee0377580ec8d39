package stockevent

import (
	"time"

	"github.com/google/uuid"
)

// TypeStockUpdate is the message type pushed to live observers.
const TypeStockUpdate = "STOCK_UPDATE"

// Event is the transient stock-change message produced once per committed
// line decrement. It is never persisted; it only drives the broadcast hub
// and the outbox consumer.
//
// Version is the ordering key: it carries the product's version stamp
// after the decrement, which grows by exactly one per committed mutation.
// Live delivery through the hub may interleave events from commits that
// raced each other, so observers must reconcile by Version; the outbox
// path replays in commit order.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ProductID int64     `json:"product_id"`
	NewStock  int       `json:"new_stock"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// Supersedes reports whether e carries newer state than other for the
// same product. Observers keep the superseding event and discard the
// stale one regardless of arrival order.
func (e Event) Supersedes(other Event) bool {
	return e.ProductID == other.ProductID && e.Version > other.Version
}

// New creates a stock update event for a committed decrement.
func New(productID int64, newStock int, version int64, at time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      TypeStockUpdate,
		ProductID: productID,
		NewStock:  newStock,
		Version:   version,
		Timestamp: at,
	}
}
