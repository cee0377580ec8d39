package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/appareldesk/storefront/internal/dal/postgres"
	"github.com/appareldesk/storefront/internal/service/models/currency"
	"github.com/appareldesk/storefront/internal/service/models/product"
	"github.com/jackc/pgx/v5"
)

// ProductDal represents product data access layer model.
type ProductDal struct {
	Id            int64     `db:"id"`
	Name          string    `db:"name"`
	PriceCents    int64     `db:"price_cents"`
	PriceCurrency string    `db:"price_currency"`
	AvailableQty  int       `db:"available_qty"`
	Version       int64     `db:"version"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() (*product.Product, error) {
	cur, err := currency.ParseCurrency(p.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &product.Product{
		ID:            p.Id,
		Name:          p.Name,
		PriceCents:    p.PriceCents,
		PriceCurrency: cur,
		AvailableQty:  p.AvailableQty,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

// PostgresProductRepository represents a Postgres product repository.
type PostgresProductRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new Postgres product repository.
func NewPostgresProductRepository(conn postgres.Conn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Query retrieves products based on filter criteria.
func (r *PostgresProductRepository) Query(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	builder := r.sb.Select(
		"id",
		"name",
		"price_cents",
		"price_currency",
		"available_qty",
		"version",
		"created_at",
		"updated_at",
	).From("products")

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if filter.MaxAvailable != nil {
		builder = builder.Where(sq.LtOrEq{"available_qty": *filter.MaxAvailable})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.Id,
			&dal.Name,
			&dal.PriceCents,
			&dal.PriceCurrency,
			&dal.AvailableQty,
			&dal.Version,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// ReserveAndDecrement performs the conditional stock decrement. The
// availability check, the subtraction and the version bump happen in a
// single UPDATE, so there is no gap between check and mutation. Zero rows
// affected means the guard failed; a follow-up read classifies which one.
func (r *PostgresProductRepository) ReserveAndDecrement(
	ctx context.Context,
	productID int64,
	quantity int,
	expectedVersion int64,
) (int, int64, error) {
	const query = `
		UPDATE products
		SET available_qty = available_qty - $2,
			version = version + 1,
			updated_at = now()
		WHERE id = $1
			AND version = $3
			AND available_qty >= $2
		RETURNING available_qty, version
	`

	var newQty int
	var newVersion int64
	err := r.conn.QueryRow(ctx, query, productID, quantity, expectedVersion).
		Scan(&newQty, &newVersion)
	if err == nil {
		return newQty, newVersion, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fmt.Errorf("failed to decrement stock for product %d: %w", productID, err)
	}

	return 0, 0, r.classifyFailure(ctx, productID, quantity, expectedVersion)
}

// classifyFailure tells apart the three reasons the conditional update can
// match no row: missing product, stale version stamp, not enough stock.
func (r *PostgresProductRepository) classifyFailure(
	ctx context.Context,
	productID int64,
	quantity int,
	expectedVersion int64,
) error {
	var availableQty int
	var version int64
	err := r.conn.QueryRow(
		ctx,
		`SELECT available_qty, version FROM products WHERE id = $1`,
		productID,
	).Scan(&availableQty, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return product.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read product %d: %w", productID, err)
	}

	if version != expectedVersion {
		return product.ErrVersionConflict
	}

	return &product.InsufficientStockError{
		ProductID: productID,
		Requested: quantity,
		Available: availableQty,
	}
}
