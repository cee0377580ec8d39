package iorderlinerepo

import (
	"context"

	"github.com/appareldesk/storefront/internal/service/models/orderline"
)

// PostgresRepository is an interface for the order line postgres repository.
type PostgresRepository interface {
	BulkInsert(ctx context.Context, lines []orderline.OrderLine) ([]orderline.OrderLine, error)
	Query(ctx context.Context, filter *orderline.QueryOrderLinesModel) ([]orderline.OrderLine, error)
}
