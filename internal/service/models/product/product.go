package product

import (
	"errors"
	"fmt"
	"time"

	"github.com/appareldesk/storefront/internal/service/models/currency"
)

// Product represents a catalog product with its stock ledger entry.
// AvailableQty is never negative; Version increases by exactly one on
// every committed stock mutation.
type Product struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	PriceCents    int64             `json:"priceCents"`
	PriceCurrency currency.Currency `json:"priceCurrency"`
	AvailableQty  int               `json:"availableQty"`
	Version       int64             `json:"version"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

var (
	// ErrNotFound is returned when a referenced product does not exist.
	ErrNotFound = errors.New("product not found")

	// ErrVersionConflict is returned when the version stamp a caller read
	// no longer matches the stored version. The whole attempt must be
	// retried from a fresh snapshot.
	ErrVersionConflict = errors.New("product version conflict")
)

// InsufficientStockError reports a requested quantity that exceeds the
// currently available stock.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available,
	)
}
