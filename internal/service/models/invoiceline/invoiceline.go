package invoiceline

import (
	"time"

	"github.com/appareldesk/storefront/internal/service/models/currency"
)

// InvoiceLine mirrors an order line at the moment of invoicing.
type InvoiceLine struct {
	ID                int64             `json:"id"`
	InvoiceID         int64             `json:"invoiceId"`
	ProductID         int64             `json:"productId"`
	Quantity          int               `json:"quantity"`
	UnitPriceCents    int64             `json:"unitPriceCents"`
	UnitPriceCurrency currency.Currency `json:"unitPriceCurrency"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// SubtotalCents returns the line total in cents.
func (l *InvoiceLine) SubtotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}
