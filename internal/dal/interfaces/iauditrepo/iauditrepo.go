package iauditrepo

import (
	"context"

	"github.com/appareldesk/storefront/internal/service/models/order"
)

// IAuditRepository publishes order lifecycle audit messages.
type IAuditRepository interface {
	LogOrderCreated(ctx context.Context, orders []order.Order) error
}
