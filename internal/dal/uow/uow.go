package uow

import (
	"context"

	"github.com/appareldesk/storefront/internal/dal/interfaces/icustomerrepo"
	"github.com/appareldesk/storefront/internal/dal/interfaces/iinvoicerepo"
	"github.com/appareldesk/storefront/internal/dal/interfaces/iorderlinerepo"
	"github.com/appareldesk/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/appareldesk/storefront/internal/dal/interfaces/ioutboxrepo"
	"github.com/appareldesk/storefront/internal/dal/interfaces/iproductrepo"
	"github.com/appareldesk/storefront/internal/dal/postgres"
	customerrepo "github.com/appareldesk/storefront/internal/dal/repositories/customer/postgres"
	invoicerepo "github.com/appareldesk/storefront/internal/dal/repositories/invoice/postgres"
	orderrepo "github.com/appareldesk/storefront/internal/dal/repositories/order/postgres"
	orderlinerepo "github.com/appareldesk/storefront/internal/dal/repositories/orderline/postgres"
	outboxrepo "github.com/appareldesk/storefront/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/appareldesk/storefront/internal/dal/repositories/product/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// unitOfWork scopes all repositories to one atomic boundary. Before Begin
// the repositories read through the pool; after Begin every repository
// call joins the same transaction until Commit or Rollback.
type unitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	productRepo   iproductrepo.PostgresRepository
	customerRepo  icustomerrepo.PostgresRepository
	orderRepo     iorderrepo.PostgresRepository
	orderLineRepo iorderlinerepo.PostgresRepository
	invoiceRepo   iinvoicerepo.PostgresRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

// NewUnitOfWork creates a unit of work reading through the client's pool
// until Begin is called.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	u := &unitOfWork{pool: client.Pool()}
	u.bind(client.Pool())

	return u
}

func (u *unitOfWork) bind(conn postgres.Conn) {
	u.productRepo = productrepo.NewPostgresProductRepository(conn)
	u.customerRepo = customerrepo.NewPostgresCustomerRepository(conn)
	u.orderRepo = orderrepo.NewPostgresOrderRepository(conn)
	u.orderLineRepo = orderlinerepo.NewPostgresOrderLineRepository(conn)
	u.invoiceRepo = invoicerepo.NewPostgresInvoiceRepository(conn)
	u.outboxRepo = outboxrepo.NewOutboxRepository(conn)
}

func (u *unitOfWork) ProductRepository() iproductrepo.PostgresRepository {
	return u.productRepo
}

func (u *unitOfWork) CustomerRepository() icustomerrepo.PostgresRepository {
	return u.customerRepo
}

func (u *unitOfWork) OrderRepository() iorderrepo.PostgresRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderLineRepository() iorderlinerepo.PostgresRepository {
	return u.orderLineRepo
}

func (u *unitOfWork) InvoiceRepository() iinvoicerepo.PostgresRepository {
	return u.invoiceRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.bind(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Commit(ctx)
	u.tx = nil
	u.bind(u.pool)

	return err
}

// Rollback discards the transaction. Calling it after a successful Commit
// is a no-op, so it is safe to defer.
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback(ctx)
	u.tx = nil
	u.bind(u.pool)

	return err
}
