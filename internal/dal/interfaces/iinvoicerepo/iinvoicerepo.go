package iinvoicerepo

import (
	"context"

	"github.com/appareldesk/storefront/internal/service/models/invoice"
	"github.com/appareldesk/storefront/internal/service/models/invoiceline"
)

// PostgresRepository is an interface for the invoice postgres repository.
type PostgresRepository interface {
	// Insert persists the invoice header and its lines.
	Insert(ctx context.Context, inv invoice.Invoice) (*invoice.Invoice, error)
	Query(ctx context.Context, filter *invoice.QueryInvoicesModel) ([]invoice.Invoice, error)
	QueryLines(ctx context.Context, invoiceIds []int64) ([]invoiceline.InvoiceLine, error)
}
