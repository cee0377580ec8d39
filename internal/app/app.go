package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appareldesk/storefront/internal/dal/postgres"
	"github.com/appareldesk/storefront/internal/dal/rabbitmq"
	auditrepo "github.com/appareldesk/storefront/internal/dal/repositories/audit"
	outboxrepo "github.com/appareldesk/storefront/internal/dal/repositories/outbox/postgres"
	"github.com/appareldesk/storefront/internal/hub"
	"github.com/appareldesk/storefront/internal/jaeger"
	"github.com/appareldesk/storefront/internal/service/services/ordersvc"
	httptransport "github.com/appareldesk/storefront/internal/transport/http"
	"github.com/appareldesk/storefront/internal/transport/ws"
	outboxworker "github.com/appareldesk/storefront/internal/worker/outbox"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	broadcastHub   *hub.Hub
	outboxWorker   *outboxworker.Worker
	tracerProvider *sdktrace.TracerProvider
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	tracerProvider := jaeger.MustSetupTracing()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	broadcastHub := hub.MustNewHub()

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithBroadcastHub(broadcastHub),
		ordersvc.WithAuditRepository(auditrepo.NewAuditRabbitMQRepository(rabbitClient)),
	)

	wsTransport := ws.NewTransport(broadcastHub)
	transport := httptransport.NewHTTPTransport(orderSvc, wsTransport)
	transport.RegisterRoutes()

	worker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	return &App{
		orderSvc:       orderSvc,
		transport:      transport,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		broadcastHub:   broadcastHub,
		outboxWorker:   worker,
		tracerProvider: tracerProvider,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.broadcastHub.Close()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.tracerProvider.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
