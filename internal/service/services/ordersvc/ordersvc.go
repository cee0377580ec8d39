package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/appareldesk/storefront/internal/dal/interfaces/iauditrepo"
	"github.com/appareldesk/storefront/internal/dal/interfaces/icustomerrepo"
	"github.com/appareldesk/storefront/internal/dal/interfaces/iinvoicerepo"
	"github.com/appareldesk/storefront/internal/dal/interfaces/iorderlinerepo"
	"github.com/appareldesk/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/appareldesk/storefront/internal/dal/interfaces/ioutboxrepo"
	"github.com/appareldesk/storefront/internal/dal/interfaces/iproductrepo"
	"github.com/appareldesk/storefront/internal/dal/postgres"
	"github.com/appareldesk/storefront/internal/dal/uow"
	"github.com/appareldesk/storefront/internal/service/models/currency"
	"github.com/appareldesk/storefront/internal/service/models/invoice"
	"github.com/appareldesk/storefront/internal/service/models/order"
	"github.com/appareldesk/storefront/internal/service/models/orderline"
	"github.com/appareldesk/storefront/internal/service/models/outbox"
	"github.com/appareldesk/storefront/internal/service/models/product"
	"github.com/appareldesk/storefront/internal/service/models/stockevent"
	"go.opentelemetry.io/otel"
)

const queueStockUpdated = "storefront.stock.updated"

const outboxMaxRetries = 5

var (
	// ErrEmptyOrder is returned when a placement request carries no lines.
	ErrEmptyOrder = errors.New("order must contain at least one line")

	// ErrInvalidQuantity is returned when a line requests a non-positive
	// quantity.
	ErrInvalidQuantity = errors.New("line quantity must be positive")
)

// LineRequest is one requested cart item.
type LineRequest struct {
	ProductID int64
	Quantity  int
}

// PlaceOrderResult is returned after a successful placement.
type PlaceOrderResult struct {
	OrderID     int64
	OrderNumber string
	TotalCents  int64
	Currency    currency.Currency
}

// unitOfWork is the atomic boundary the coordinator drives: every
// repository obtained from it joins the same transaction after Begin.
type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	ProductRepository() iproductrepo.PostgresRepository
	CustomerRepository() icustomerrepo.PostgresRepository
	OrderRepository() iorderrepo.PostgresRepository
	OrderLineRepository() iorderlinerepo.PostgresRepository
	InvoiceRepository() iinvoicerepo.PostgresRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// broadcaster receives stock change events after a successful commit.
type broadcaster interface {
	Publish(ev stockevent.Event)
}

// OrderService is a service for placing and reading orders.
type OrderService struct {
	pgClient *postgres.Client
	newUOW   func() unitOfWork
	hub      broadcaster
	audit    iauditrepo.IAuditRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.newUOW == nil {
		panic("ordersvc: no unit of work source configured")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithUnitOfWorkFactory overrides the unit-of-work source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// WithBroadcastHub sets the post-commit stock event broadcaster.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBroadcastHub(hub broadcaster) option {
	return func(s *OrderService) {
		s.hub = hub
	}
}

// WithAuditRepository sets the order audit publisher.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAuditRepository(audit iauditrepo.IAuditRepository) option {
	return func(s *OrderService) {
		s.audit = audit
	}
}

// PlaceOrder runs the whole placement as one atomic unit: customer
// validation, a snapshot read of every referenced product, a conditional
// stock decrement per line, order and line creation, optional invoice
// derivation and the outbox rows for the committed stock events. Any
// failure rolls back every mutation of the attempt. Stock change events
// reach the hub only after the commit is durable.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	customerID int64,
	lines []LineRequest,
	autoInvoice bool,
) (*PlaceOrderResult, error) {
	ctx, span := otel.Tracer("storefront").Start(ctx, "ordersvc.PlaceOrder")
	defer span.End()

	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, req := range lines {
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("product %d: %w", req.ProductID, ErrInvalidQuantity)
		}
	}

	now := time.Now()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := work.Rollback(ctx); err != nil {
				slog.Error("Failed to roll back placement attempt", "error", err)
			}
		}
	}()

	if _, err := work.CustomerRepository().GetByID(ctx, customerID); err != nil {
		return nil, err
	}

	snapshot, err := s.snapshotProducts(ctx, work, lines)
	if err != nil {
		return nil, err
	}

	orderLines := make([]orderline.OrderLine, 0, len(lines))
	events := make([]stockevent.Event, 0, len(lines))
	var totalCents int64
	cur := currency.CurrencyUSD

	for _, req := range lines {
		p := snapshot[req.ProductID]
		newQty, newVersion, err := work.ProductRepository().
			ReserveAndDecrement(ctx, p.ID, req.Quantity, p.Version)
		if err != nil {
			return nil, err
		}

		// A later line for the same product must build on the version this
		// decrement produced, not on the original snapshot.
		p.AvailableQty = newQty
		p.Version = newVersion
		snapshot[req.ProductID] = p

		orderLines = append(orderLines, orderline.OrderLine{
			ProductID:         p.ID,
			Quantity:          req.Quantity,
			UnitPriceCents:    p.PriceCents,
			UnitPriceCurrency: p.PriceCurrency,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
		totalCents += p.PriceCents * int64(req.Quantity)
		cur = p.PriceCurrency

		events = append(events, stockevent.New(p.ID, newQty, newVersion, now))
	}

	insertedOrder, err := work.OrderRepository().Insert(ctx, order.Order{
		OrderNumber:        fmt.Sprintf("SO-%d", now.UnixNano()),
		CustomerID:         customerID,
		TotalPriceCents:    totalCents,
		TotalPriceCurrency: cur,
		Status:             order.StatusConfirmed,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return nil, err
	}

	for i := range orderLines {
		orderLines[i].OrderID = insertedOrder.ID
	}
	insertedLines, err := work.OrderLineRepository().BulkInsert(ctx, orderLines)
	if err != nil {
		return nil, err
	}
	insertedOrder.Lines = insertedLines

	if autoInvoice {
		inv := invoice.FromOrder(insertedOrder, now)
		if _, err := work.InvoiceRepository().Insert(ctx, *inv); err != nil {
			return nil, err
		}
	}

	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal stock event: %w", err)
		}
		err = work.OutboxRepository().Insert(ctx, outbox.OutboxMessage{
			QueueName:   queueStockUpdated,
			RoutingKey:  queueStockUpdated,
			Payload:     payload,
			ContentType: "application/json",
			MaxRetries:  outboxMaxRetries,
			CreatedAt:   now,
			UpdatedAt:   now,
			NextRetryAt: now,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := work.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit placement: %w", err)
	}
	committed = true

	s.emitPostCommit(ctx, insertedOrder, events)

	return &PlaceOrderResult{
		OrderID:     insertedOrder.ID,
		OrderNumber: insertedOrder.OrderNumber,
		TotalCents:  totalCents,
		Currency:    cur,
	}, nil
}

// snapshotProducts reads price and version of every referenced product
// once at the start of the attempt.
func (s *OrderService) snapshotProducts(
	ctx context.Context,
	work unitOfWork,
	lines []LineRequest,
) (map[int64]product.Product, error) {
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, req := range lines {
		if _, ok := seen[req.ProductID]; ok {
			continue
		}
		seen[req.ProductID] = struct{}{}
		ids = append(ids, req.ProductID)
	}

	products, err := work.ProductRepository().Query(ctx, &product.QueryProductsModel{Ids: ids})
	if err != nil {
		return nil, err
	}

	snapshot := make(map[int64]product.Product, len(products))
	for _, p := range products {
		snapshot[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := snapshot[id]; !ok {
			return nil, fmt.Errorf("product %d: %w", id, product.ErrNotFound)
		}
	}

	return snapshot, nil
}

// emitPostCommit pushes stock events to live observers and emits the
// audit message. Both are best-effort and never affect the result.
func (s *OrderService) emitPostCommit(
	ctx context.Context,
	insertedOrder *order.Order,
	events []stockevent.Event,
) {
	if s.hub != nil {
		for _, ev := range events {
			s.hub.Publish(ev)
		}
	}

	if s.audit != nil {
		if err := s.audit.LogOrderCreated(ctx, []order.Order{*insertedOrder}); err != nil {
			slog.Error("Failed to publish order audit message",
				"order_id", insertedOrder.ID,
				"error", err,
			)
		}
	}
}

// GetOrders retrieves orders with their lines based on filter.
func (s *OrderService) GetOrders(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIds := make([]int64, 0, len(orders))
	for _, o := range orders {
		orderIds = append(orderIds, o.ID)
	}
	orderLines, err := work.OrderLineRepository().
		Query(ctx, &orderline.QueryOrderLinesModel{OrderIds: orderIds})
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for _, line := range orderLines {
			if line.OrderID == orders[i].ID {
				orders[i].Lines = append(orders[i].Lines, line)
			}
		}
	}

	return orders, nil
}

// GetOrder retrieves a single order with its lines.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	orders, err := s.GetOrders(ctx, &order.QueryOrdersModel{Ids: []int64{id}})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, order.ErrNotFound
	}

	return &orders[0], nil
}

// GetInvoices retrieves invoice headers based on filter.
func (s *OrderService) GetInvoices(
	ctx context.Context,
	filter *invoice.QueryInvoicesModel,
) ([]invoice.Invoice, error) {
	work := s.newUOW()

	return work.InvoiceRepository().Query(ctx, filter)
}

// GetInvoice retrieves a single invoice with its lines.
func (s *OrderService) GetInvoice(ctx context.Context, id int64) (*invoice.Invoice, error) {
	work := s.newUOW()

	invoices, err := work.InvoiceRepository().
		Query(ctx, &invoice.QueryInvoicesModel{Ids: []int64{id}})
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, invoice.ErrNotFound
	}

	inv := invoices[0]
	lines, err := work.InvoiceRepository().QueryLines(ctx, []int64{inv.ID})
	if err != nil {
		return nil, err
	}
	inv.Lines = lines

	return &inv, nil
}

// GetProducts retrieves catalog products based on filter.
func (s *OrderService) GetProducts(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	work := s.newUOW()

	products, err := work.ProductRepository().Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []product.Product{}
	}

	return products, nil
}
