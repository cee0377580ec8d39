package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/appareldesk/storefront/internal/dal/interfaces/ioutboxrepo"
	"github.com/appareldesk/storefront/internal/dal/rabbitmq"
	"github.com/appareldesk/storefront/internal/service/models/outbox"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// broker is the slice of the RabbitMQ client the worker drives.
type broker interface {
	DeclareQueue(cfg rabbitmq.DeclareQueueConfig) (amqp.Queue, error)
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

// Worker drains committed stock events from the outbox table into
// RabbitMQ. Events only land in the outbox inside a committed placement
// transaction, so everything the worker publishes is durable state.
type Worker struct {
	outboxRepo     ioutboxrepo.IOutboxRepository
	broker         broker
	pollInterval   time.Duration
	batchSize      int
	retryInterval  time.Duration
	stopCh         chan struct{}
	declaredQueues map[string]struct{}
}

// NewWorker creates a new outbox worker.
func NewWorker(
	outboxRepo ioutboxrepo.IOutboxRepository,
	rabbitClient broker,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	retryIntervalSeconds := viper.GetInt("rabbitmq.outbox.retry_interval_seconds")
	if retryIntervalSeconds == 0 {
		retryIntervalSeconds = 30
	}

	return &Worker{
		outboxRepo:     outboxRepo,
		broker:         rabbitClient,
		pollInterval:   time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:      batchSize,
		retryInterval:  time.Duration(retryIntervalSeconds) * time.Second,
		stopCh:         make(chan struct{}),
		declaredQueues: make(map[string]struct{}),
	}
}

// Start begins processing messages from the outbox.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// ensureQueue declares the target queue once per worker lifetime.
// Publishing to the default exchange routes by queue name, and without
// the declaration the broker drops the message on the floor before any
// consumer ever binds.
func (w *Worker) ensureQueue(msg outbox.OutboxMessage) error {
	if msg.ExchangeName != "" || msg.QueueName == "" {
		return nil
	}
	if _, ok := w.declaredQueues[msg.QueueName]; ok {
		return nil
	}

	if _, err := w.broker.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       msg.QueueName,
		Durable:    false,
		AutoDelete: false,
		Exclusive:  false,
	}); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", msg.QueueName, err)
	}
	w.declaredQueues[msg.QueueName] = struct{}{}

	return nil
}

// processMessages retrieves and publishes pending messages from the outbox.
func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Publishing outbox stock events", "count", len(messages))

	for _, msg := range messages {
		err := w.ensureQueue(msg)
		if err == nil {
			err = w.broker.Publish(
				msg.ExchangeName,
				msg.RoutingKey,
				amqp.Publishing{
					ContentType: msg.ContentType,
					Body:        msg.Payload,
				},
			)
		}

		if err != nil {
			newRetryCount := msg.RetryCount + 1
			backoffSeconds := math.Pow(2, float64(newRetryCount)) * 30 // 60s, 120s, 240s, etc.
			nextRetryAt := time.Now().Add(time.Duration(backoffSeconds) * time.Second)

			slog.Warn("Failed to publish stock event from outbox, will retry",
				"outbox_id", msg.ID,
				"retry_count", newRetryCount,
				"next_retry", nextRetryAt,
				"error", err,
			)

			if err := w.outboxRepo.UpdateRetry(ctx, msg.ID, newRetryCount, err.Error(), nextRetryAt); err != nil {
				slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
			}
		} else {
			if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
				slog.Error("Failed to delete stock event from outbox after publish",
					"outbox_id", msg.ID,
					"error", err,
				)
			}
		}
	}
}
