package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/appareldesk/storefront/internal/service/models/invoice"
	"github.com/appareldesk/storefront/internal/service/models/order"
	"github.com/appareldesk/storefront/internal/service/models/product"
	"github.com/appareldesk/storefront/internal/service/services/ordersvc"
	getinvoice "github.com/appareldesk/storefront/internal/transport/http/get_invoice"
	getorder "github.com/appareldesk/storefront/internal/transport/http/get_order"
	listinvoices "github.com/appareldesk/storefront/internal/transport/http/list_invoices"
	listorders "github.com/appareldesk/storefront/internal/transport/http/list_orders"
	listproducts "github.com/appareldesk/storefront/internal/transport/http/list_products"
	placeorder "github.com/appareldesk/storefront/internal/transport/http/place_order"
	"github.com/appareldesk/storefront/internal/transport/ws"
	"github.com/appareldesk/storefront/pkg/http/middleware/trace"
	"github.com/appareldesk/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type service interface {
	PlaceOrder(
		ctx context.Context,
		customerID int64,
		lines []ordersvc.LineRequest,
		autoInvoice bool,
	) (*ordersvc.PlaceOrderResult, error)
	GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	GetInvoices(ctx context.Context, filter *invoice.QueryInvoicesModel) ([]invoice.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*invoice.Invoice, error)
	GetProducts(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
	ws      *ws.Transport
}

func NewHTTPTransport(service service, wsTransport *ws.Transport) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
		ws:      wsTransport,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Post("/orders", h.placeOrder)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{orderID}", h.getOrder)
		r.Get("/invoices", h.listInvoices)
		r.Get("/invoices/{invoiceID}", h.getInvoice)
		r.Get("/products", h.listProducts)
		r.Get("/products/low-stock", h.listLowStock)
	})

	h.router.Get("/ws/admin", h.ws.HandleStockUpdates)
}

func (h *HTTPTransport) placeOrder(w http.ResponseWriter, r *http.Request) {
	placeorder.PlaceOrder(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.service)
}

func (h *HTTPTransport) listInvoices(w http.ResponseWriter, r *http.Request) {
	listinvoices.ListInvoices(w, r, h.service)
}

func (h *HTTPTransport) getInvoice(w http.ResponseWriter, r *http.Request) {
	getinvoice.GetInvoice(w, r, h.service)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	listproducts.ListProducts(w, r, h.service)
}

func (h *HTTPTransport) listLowStock(w http.ResponseWriter, r *http.Request) {
	listproducts.ListLowStock(w, r, h.service)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
