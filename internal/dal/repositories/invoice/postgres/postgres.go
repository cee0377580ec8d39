package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/appareldesk/storefront/internal/dal/postgres"
	"github.com/appareldesk/storefront/internal/service/models/currency"
	"github.com/appareldesk/storefront/internal/service/models/invoice"
	"github.com/appareldesk/storefront/internal/service/models/invoiceline"
)

// InvoiceDal represents invoice data access layer model.
type InvoiceDal struct {
	Id              int64     `db:"id"`
	InvoiceNumber   string    `db:"invoice_number"`
	OrderId         int64     `db:"order_id"`
	CustomerId      int64     `db:"customer_id"`
	TotalCents      int64     `db:"total_cents"`
	TaxCents        int64     `db:"tax_cents"`
	AmountPaidCents int64     `db:"amount_paid_cents"`
	Currency        string    `db:"currency"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// ToModel converts InvoiceDal to service layer Invoice model.
func (i *InvoiceDal) ToModel() (*invoice.Invoice, error) {
	cur, err := currency.ParseCurrency(i.Currency)
	if err != nil {
		return nil, err
	}

	return &invoice.Invoice{
		ID:              i.Id,
		InvoiceNumber:   i.InvoiceNumber,
		OrderID:         i.OrderId,
		CustomerID:      i.CustomerId,
		TotalCents:      i.TotalCents,
		TaxCents:        i.TaxCents,
		AmountPaidCents: i.AmountPaidCents,
		Currency:        cur,
		Status:          invoice.Status(i.Status),
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
		Lines:           []invoiceline.InvoiceLine{},
	}, nil
}

// PostgresInvoiceRepository represents a Postgres invoice repository.
type PostgresInvoiceRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresInvoiceRepository creates a new Postgres invoice repository.
func NewPostgresInvoiceRepository(conn postgres.Conn) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert persists the invoice header and its lines on the same connection,
// so inside a unit of work both land in the surrounding transaction.
func (r *PostgresInvoiceRepository) Insert(
	ctx context.Context,
	inv invoice.Invoice,
) (*invoice.Invoice, error) {
	const headerQuery = `
		INSERT INTO invoices (
			invoice_number,
			order_id,
			customer_id,
			total_cents,
			tax_cents,
			amount_paid_cents,
			currency,
			status,
			created_at,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	inserted := inv
	err := r.conn.QueryRow(ctx, headerQuery,
		inv.InvoiceNumber,
		inv.OrderID,
		inv.CustomerID,
		inv.TotalCents,
		inv.TaxCents,
		inv.AmountPaidCents,
		inv.Currency.String(),
		string(inv.Status),
		inv.CreatedAt,
		inv.UpdatedAt,
	).Scan(&inserted.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
	}

	if len(inv.Lines) == 0 {
		return &inserted, nil
	}

	builder := r.sb.Insert("invoice_lines").
		Columns(
			"invoice_id",
			"product_id",
			"quantity",
			"unit_price_cents",
			"unit_price_currency",
			"created_at",
			"updated_at",
		).
		Suffix("RETURNING id")

	for _, l := range inv.Lines {
		builder = builder.Values(
			inserted.ID,
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
		return nil, fmt.Errorf("failed to insert invoice lines: %w", err)
	}
	defer rows.Close()

	inserted.Lines = make([]invoiceline.InvoiceLine, 0, len(inv.Lines))
	i := 0
	for rows.Next() {
		line := inv.Lines[i]
		if err := rows.Scan(&line.ID); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line id: %w", err)
		}
		line.InvoiceID = inserted.ID
		inserted.Lines = append(inserted.Lines, line)
		i++
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return &inserted, nil
}

// Query retrieves invoice headers based on filter criteria.
func (r *PostgresInvoiceRepository) Query(
	ctx context.Context,
	filter *invoice.QueryInvoicesModel,
) ([]invoice.Invoice, error) {
	builder := r.sb.Select(
		"id",
		"invoice_number",
		"order_id",
		"customer_id",
		"total_cents",
		"tax_cents",
		"amount_paid_cents",
		"currency",
		"status",
		"created_at",
		"updated_at",
	).From("invoices")

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.OrderIds) > 0 {
		builder = builder.Where(sq.Eq{"order_id": filter.OrderIds})
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
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var result []invoice.Invoice
	for rows.Next() {
		var dal InvoiceDal
		err := rows.Scan(
			&dal.Id,
			&dal.InvoiceNumber,
			&dal.OrderId,
			&dal.CustomerId,
			&dal.TotalCents,
			&dal.TaxCents,
			&dal.AmountPaidCents,
			&dal.Currency,
			&dal.Status,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert invoice dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// QueryLines retrieves invoice lines for the given invoice ids.
func (r *PostgresInvoiceRepository) QueryLines(
	ctx context.Context,
	invoiceIds []int64,
) ([]invoiceline.InvoiceLine, error) {
	if len(invoiceIds) == 0 {
		return []invoiceline.InvoiceLine{}, nil
	}

	query, args, err := r.sb.Select(
		"id",
		"invoice_id",
		"product_id",
		"quantity",
		"unit_price_cents",
		"unit_price_currency",
		"created_at",
		"updated_at",
	).
		From("invoice_lines").
		Where(sq.Eq{"invoice_id": invoiceIds}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice lines: %w", err)
	}
	defer rows.Close()

	var result []invoiceline.InvoiceLine
	for rows.Next() {
		var line invoiceline.InvoiceLine
		var cur string
		err := rows.Scan(
			&line.ID,
			&line.InvoiceID,
			&line.ProductID,
			&line.Quantity,
			&line.UnitPriceCents,
			&cur,
			&line.CreatedAt,
			&line.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		parsed, err := currency.ParseCurrency(cur)
		if err != nil {
			return nil, fmt.Errorf("failed to parse invoice line currency: %w", err)
		}
		line.UnitPriceCurrency = parsed
		result = append(result, line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
