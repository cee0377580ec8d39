package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/appareldesk/storefront/internal/dal/rabbitmq"
	"github.com/appareldesk/storefront/internal/service/models/outbox"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	exchange   string
	routingKey string
	body       []byte
}

type fakeBroker struct {
	declared   []string
	published  []publishedMessage
	declareErr error
	publishErr error
}

func (b *fakeBroker) DeclareQueue(cfg rabbitmq.DeclareQueueConfig) (amqp.Queue, error) {
	if b.declareErr != nil {
		return amqp.Queue{}, b.declareErr
	}
	b.declared = append(b.declared, cfg.Name)

	return amqp.Queue{Name: cfg.Name}, nil
}

func (b *fakeBroker) Publish(exchange, routingKey string, msg amqp.Publishing) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, publishedMessage{
		exchange:   exchange,
		routingKey: routingKey,
		body:       msg.Body,
	})

	return nil
}

type retryRecord struct {
	id          int64
	retryCount  int
	lastError   string
	nextRetryAt time.Time
}

type fakeOutboxRepo struct {
	pending []outbox.OutboxMessage
	deleted []int64
	retries []retryRecord
}

func (r *fakeOutboxRepo) Insert(_ context.Context, _ outbox.OutboxMessage) error { return nil }

func (r *fakeOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outbox.OutboxMessage, error) {
	return r.pending, nil
}

func (r *fakeOutboxRepo) Delete(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)

	return nil
}

func (r *fakeOutboxRepo) UpdateRetry(
	_ context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	r.retries = append(r.retries, retryRecord{
		id:          id,
		retryCount:  retryCount,
		lastError:   lastError,
		nextRetryAt: nextRetryAt,
	})

	return nil
}

func pendingStockEvent(id int64) outbox.OutboxMessage {
	return outbox.OutboxMessage{
		ID:          id,
		QueueName:   "storefront.stock.updated",
		RoutingKey:  "storefront.stock.updated",
		Payload:     []byte(`{"type":"STOCK_UPDATE"}`),
		ContentType: "application/json",
		MaxRetries:  5,
	}
}

func TestProcessMessagesDeclaresQueueBeforePublishing(t *testing.T) {
	broker := &fakeBroker{}
	repo := &fakeOutboxRepo{pending: []outbox.OutboxMessage{
		pendingStockEvent(1),
		pendingStockEvent(2),
	}}
	w := NewWorker(repo, broker)

	w.processMessages(context.Background())

	// One declaration covers every message bound for the same queue.
	require.Equal(t, []string{"storefront.stock.updated"}, broker.declared)
	require.Len(t, broker.published, 2)
	assert.Equal(t, "", broker.published[0].exchange)
	assert.Equal(t, "storefront.stock.updated", broker.published[0].routingKey)
	assert.Equal(t, []int64{1, 2}, repo.deleted)
	assert.Empty(t, repo.retries)
}

func TestProcessMessagesDeclaresQueueOncePerWorker(t *testing.T) {
	broker := &fakeBroker{}
	repo := &fakeOutboxRepo{pending: []outbox.OutboxMessage{pendingStockEvent(1)}}
	w := NewWorker(repo, broker)

	w.processMessages(context.Background())
	w.processMessages(context.Background())

	assert.Equal(t, []string{"storefront.stock.updated"}, broker.declared)
}

func TestProcessMessagesSkipsDeclareForNamedExchange(t *testing.T) {
	broker := &fakeBroker{}
	msg := pendingStockEvent(1)
	msg.ExchangeName = "storefront.events"
	repo := &fakeOutboxRepo{pending: []outbox.OutboxMessage{msg}}
	w := NewWorker(repo, broker)

	w.processMessages(context.Background())

	assert.Empty(t, broker.declared)
	require.Len(t, broker.published, 1)
	assert.Equal(t, "storefront.events", broker.published[0].exchange)
}

func TestProcessMessagesSchedulesRetryOnPublishFailure(t *testing.T) {
	broker := &fakeBroker{publishErr: errors.New("broker unavailable")}
	msg := pendingStockEvent(1)
	msg.RetryCount = 1
	repo := &fakeOutboxRepo{pending: []outbox.OutboxMessage{msg}}
	w := NewWorker(repo, broker)

	before := time.Now()
	w.processMessages(context.Background())

	assert.Empty(t, repo.deleted)
	require.Len(t, repo.retries, 1)
	retry := repo.retries[0]
	assert.EqualValues(t, 1, retry.id)
	assert.Equal(t, 2, retry.retryCount)
	assert.Contains(t, retry.lastError, "broker unavailable")
	// Exponential backoff: 2^2 * 30s.
	assert.True(t, retry.nextRetryAt.After(before.Add(119*time.Second)))
}

func TestProcessMessagesSchedulesRetryOnDeclareFailure(t *testing.T) {
	broker := &fakeBroker{declareErr: errors.New("channel closed")}
	repo := &fakeOutboxRepo{pending: []outbox.OutboxMessage{pendingStockEvent(1)}}
	w := NewWorker(repo, broker)

	w.processMessages(context.Background())

	assert.Empty(t, broker.published, "nothing may be published into an undeclared queue")
	assert.Empty(t, repo.deleted)
	require.Len(t, repo.retries, 1)
	assert.Equal(t, 1, repo.retries[0].retryCount)
}
