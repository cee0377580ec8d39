package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/appareldesk/storefront/internal/dal/postgres"
	"github.com/appareldesk/storefront/internal/service/models/currency"
	"github.com/appareldesk/storefront/internal/service/models/orderline"
)

// OrderLineDal represents order line data access layer model.
type OrderLineDal struct {
	Id                int64     `db:"id"`
	OrderId           int64     `db:"order_id"`
	ProductId         int64     `db:"product_id"`
	Quantity          int       `db:"quantity"`
	UnitPriceCents    int64     `db:"unit_price_cents"`
	UnitPriceCurrency string    `db:"unit_price_currency"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// ToModel converts OrderLineDal to service layer OrderLine model.
func (l *OrderLineDal) ToModel() (*orderline.OrderLine, error) {
	cur, err := currency.ParseCurrency(l.UnitPriceCurrency)
	if err != nil {
		return nil, err
	}

	return &orderline.OrderLine{
		ID:                l.Id,
		OrderID:           l.OrderId,
		ProductID:         l.ProductId,
		Quantity:          l.Quantity,
		UnitPriceCents:    l.UnitPriceCents,
		UnitPriceCurrency: cur,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}, nil
}

// PostgresOrderLineRepository represents a Postgres order line repository.
type PostgresOrderLineRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderLineRepository creates a new Postgres order line repository.
func NewPostgresOrderLineRepository(conn postgres.Conn) *PostgresOrderLineRepository {
	return &PostgresOrderLineRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts multiple order lines and returns them with ids.
func (r *PostgresOrderLineRepository) BulkInsert(
	ctx context.Context,
	lines []orderline.OrderLine,
) ([]orderline.OrderLine, error) {
	if len(lines) == 0 {
		return []orderline.OrderLine{}, nil
	}

	builder := r.sb.Insert("order_lines").
		Columns(
			"order_id",
			"product_id",
			"quantity",
			"unit_price_cents",
			"unit_price_currency",
			"created_at",
			"updated_at",
		).
		Suffix("RETURNING id")

	for _, l := range lines {
		builder = builder.Values(
			l.OrderID,
			l.ProductID,
			l.Quantity,
			l.UnitPriceCents,
			l.UnitPriceCurrency.String(),
			l.CreatedAt,
			l.UpdatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order lines: %w", err)
	}
	defer rows.Close()

	result := make([]orderline.OrderLine, 0, len(lines))
	i := 0
	for rows.Next() {
		line := lines[i]
		if err := rows.Scan(&line.ID); err != nil {
			return nil, fmt.Errorf("failed to scan order line id: %w", err)
		}
		result = append(result, line)
		i++
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Query retrieves order lines based on filter criteria.
func (r *PostgresOrderLineRepository) Query(
	ctx context.Context,
	filter *orderline.QueryOrderLinesModel,
) ([]orderline.OrderLine, error) {
	builder := r.sb.Select(
		"id",
		"order_id",
		"product_id",
		"quantity",
		"unit_price_cents",
		"unit_price_currency",
		"created_at",
		"updated_at",
	).From("order_lines")

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.OrderIds) > 0 {
		builder = builder.Where(sq.Eq{"order_id": filter.OrderIds})
	}
	if len(filter.ProductIds) > 0 {
		builder = builder.Where(sq.Eq{"product_id": filter.ProductIds})
	}

	query, args, err := builder.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var result []orderline.OrderLine
	for rows.Next() {
		var dal OrderLineDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.Quantity,
			&dal.UnitPriceCents,
			&dal.UnitPriceCurrency,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order line dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
