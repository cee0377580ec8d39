package orderline

import (
	"time"

	"github.com/appareldesk/storefront/internal/service/models/currency"
)

// OrderLine represents a single requested item within an order. The unit
// price is captured from the product at order time and is decoupled from
// any later price change.
type OrderLine struct {
	ID                int64             `json:"id"`
	OrderID           int64             `json:"orderId"`
	ProductID         int64             `json:"productId"`
	Quantity          int               `json:"quantity"`
	UnitPriceCents    int64             `json:"unitPriceCents"`
	UnitPriceCurrency currency.Currency `json:"unitPriceCurrency"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// SubtotalCents returns the line contribution to the order total.
func (l *OrderLine) SubtotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}
