package outbox

import (
	"time"
)

// OutboxMessage represents a committed event waiting to be published to
// RabbitMQ. Messages are inserted in the same transaction as the state
// change they describe and delivered by the outbox worker afterwards.
type OutboxMessage struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
