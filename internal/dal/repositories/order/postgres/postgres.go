package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/appareldesk/storefront/internal/dal/postgres"
	"github.com/appareldesk/storefront/internal/service/models/currency"
	"github.com/appareldesk/storefront/internal/service/models/order"
	"github.com/appareldesk/storefront/internal/service/models/orderline"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id                 int64     `db:"id"`
	OrderNumber        string    `db:"order_number"`
	CustomerId         int64     `db:"customer_id"`
	TotalPriceCents    int64     `db:"total_price_cents"`
	TotalPriceCurrency string    `db:"total_price_currency"`
	Status             string    `db:"status"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.TotalPriceCurrency)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:                 o.Id,
		OrderNumber:        o.OrderNumber,
		CustomerID:         o.CustomerId,
		TotalPriceCents:    o.TotalPriceCents,
		TotalPriceCurrency: cur,
		Status:             order.Status(o.Status),
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
		Lines:              []orderline.OrderLine{},
	}, nil
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.Conn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert persists an order header and returns it with the assigned id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (*order.Order, error) {
	const query = `
		INSERT INTO orders (
			order_number,
			customer_id,
			total_price_cents,
			total_price_currency,
			status,
			created_at,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	inserted := o
	err := r.conn.QueryRow(ctx, query,
		o.OrderNumber,
		o.CustomerID,
		o.TotalPriceCents,
		o.TotalPriceCurrency.String(),
		string(o.Status),
		o.CreatedAt,
		o.UpdatedAt,
	).Scan(&inserted.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return &inserted, nil
}

// Query retrieves orders based on filter criteria.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	builder := r.sb.Select(
		"id",
		"order_number",
		"customer_id",
		"total_price_cents",
		"total_price_currency",
		"status",
		"created_at",
		"updated_at",
	).From("orders")

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.CustomerIds) > 0 {
		builder = builder.Where(sq.Eq{"customer_id": filter.CustomerIds})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.OrderBy("id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderNumber,
			&dal.CustomerId,
			&dal.TotalPriceCents,
			&dal.TotalPriceCurrency,
			&dal.Status,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
