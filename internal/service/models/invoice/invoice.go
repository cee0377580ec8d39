package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/appareldesk/storefront/internal/service/models/currency"
	"github.com/appareldesk/storefront/internal/service/models/invoiceline"
	"github.com/appareldesk/storefront/internal/service/models/order"
)

// ErrNotFound is returned when a requested invoice does not exist.
var ErrNotFound = errors.New("invoice not found")

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Invoice represents an invoice derived from a sale order. An invoice is
// only ever created in the same atomic unit as its order.
type Invoice struct {
	ID              int64                     `json:"id"`
	InvoiceNumber   string                    `json:"invoiceNumber"`
	OrderID         int64                     `json:"orderId"`
	CustomerID      int64                     `json:"customerId"`
	TotalCents      int64                     `json:"totalCents"`
	TaxCents        int64                     `json:"taxCents"`
	AmountPaidCents int64                     `json:"amountPaidCents"`
	Currency        currency.Currency         `json:"currency"`
	Status          Status                    `json:"status"`
	CreatedAt       time.Time                 `json:"createdAt"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
	Lines           []invoiceline.InvoiceLine `json:"lines"`
}

// FromOrder derives a fully paid invoice from a committed order, copying
// totals from the order header and quantity plus captured unit price from
// each order line. It performs no validation of its own.
func FromOrder(o *order.Order, now time.Time) *Invoice {
	inv := &Invoice{
		InvoiceNumber:   fmt.Sprintf("INV-%s", o.OrderNumber),
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
		TotalCents:      o.TotalPriceCents,
		TaxCents:        0,
		AmountPaidCents: o.TotalPriceCents,
		Currency:        o.TotalPriceCurrency,
		Status:          StatusPaid,
		CreatedAt:       now,
		UpdatedAt:       now,
		Lines:           make([]invoiceline.InvoiceLine, 0, len(o.Lines)),
	}

	for _, line := range o.Lines {
		inv.Lines = append(inv.Lines, invoiceline.InvoiceLine{
			ProductID:         line.ProductID,
			Quantity:          line.Quantity,
			UnitPriceCents:    line.UnitPriceCents,
			UnitPriceCurrency: line.UnitPriceCurrency,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	return inv
}
