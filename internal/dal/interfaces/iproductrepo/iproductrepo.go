package iproductrepo

import (
	"context"

	"github.com/appareldesk/storefront/internal/service/models/product"
)

// PostgresRepository is an interface for the product postgres repository.
type PostgresRepository interface {
	Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)

	// ReserveAndDecrement conditionally subtracts quantity from the product
	// stock if the stored version still matches expectedVersion and enough
	// stock is available, bumping the version by exactly one. It returns the
	// resulting quantity and version, or product.ErrNotFound,
	// product.ErrVersionConflict or *product.InsufficientStockError with no
	// side effect.
	ReserveAndDecrement(
		ctx context.Context,
		productID int64,
		quantity int,
		expectedVersion int64,
	) (newQty int, newVersion int64, err error)
}
