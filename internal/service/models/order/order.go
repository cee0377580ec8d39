package order

import (
	"errors"
	"time"

	"github.com/appareldesk/storefront/internal/service/models/currency"
	"github.com/appareldesk/storefront/internal/service/models/orderline"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Status is the lifecycle state of a sale order.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Order represents a sale order in the system. TotalPriceCents is always
// computed from the lines, never entered independently.
type Order struct {
	ID                 int64                 `json:"id"`
	OrderNumber        string                `json:"orderNumber"`
	CustomerID         int64                 `json:"customerId"`
	TotalPriceCents    int64                 `json:"totalPriceCents"`
	TotalPriceCurrency currency.Currency     `json:"totalPriceCurrency"`
	Status             Status                `json:"status"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
	Lines              []orderline.OrderLine `json:"lines"`
}
