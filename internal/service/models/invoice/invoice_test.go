package invoice

import (
	"testing"
	"time"

	"github.com/appareldesk/storefront/internal/service/models/currency"
	"github.com/appareldesk/storefront/internal/service/models/order"
	"github.com/appareldesk/storefront/internal/service/models/orderline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromOrder(t *testing.T) {
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	o := &order.Order{
		ID:                 42,
		OrderNumber:        "SO-1700000000000000000",
		CustomerID:         7,
		TotalPriceCents:    4000,
		TotalPriceCurrency: currency.CurrencyUSD,
		Status:             order.StatusConfirmed,
		Lines: []orderline.OrderLine{
			{ProductID: 10, Quantity: 2, UnitPriceCents: 1000, UnitPriceCurrency: currency.CurrencyUSD},
			{ProductID: 20, Quantity: 1, UnitPriceCents: 2000, UnitPriceCurrency: currency.CurrencyUSD},
		},
	}

	inv := FromOrder(o, now)

	assert.Equal(t, "INV-SO-1700000000000000000", inv.InvoiceNumber)
	assert.EqualValues(t, 42, inv.OrderID)
	assert.EqualValues(t, 7, inv.CustomerID)
	assert.EqualValues(t, 4000, inv.TotalCents)
	assert.EqualValues(t, 0, inv.TaxCents)
	assert.EqualValues(t, 4000, inv.AmountPaidCents)
	assert.Equal(t, currency.CurrencyUSD, inv.Currency)
	assert.Equal(t, StatusPaid, inv.Status)
	assert.Equal(t, now, inv.CreatedAt)

	require.Len(t, inv.Lines, 2)
	var lineTotal int64
	for i, line := range inv.Lines {
		assert.Equal(t, o.Lines[i].ProductID, line.ProductID)
		assert.Equal(t, o.Lines[i].Quantity, line.Quantity)
		assert.Equal(t, o.Lines[i].UnitPriceCents, line.UnitPriceCents)
		lineTotal += line.SubtotalCents()
	}
	assert.Equal(t, inv.TotalCents, lineTotal)
}

func TestFromOrderWithoutLines(t *testing.T) {
	inv := FromOrder(&order.Order{OrderNumber: "SO-1", TotalPriceCents: 0}, time.Now())

	assert.Equal(t, "INV-SO-1", inv.InvoiceNumber)
	assert.Empty(t, inv.Lines)
	assert.Equal(t, StatusPaid, inv.Status)
}
