package icustomerrepo

import (
	"context"

	"github.com/appareldesk/storefront/internal/service/models/customer"
)

// PostgresRepository is an interface for the customer postgres repository.
type PostgresRepository interface {
	// GetByID returns the customer profile or customer.ErrInvalidCustomer
	// when no profile exists for the id.
	GetByID(ctx context.Context, id int64) (*customer.Customer, error)
}
