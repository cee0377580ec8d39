package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appareldesk/storefront/internal/dal/rabbitmq"
	"github.com/appareldesk/storefront/internal/service/models/order"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"
)

const queueOrderCreated = "storefront.order.created"

type AuditRabbitMQRepository struct {
	client *rabbitmq.Client
	queue  amqp.Queue
}

func NewAuditRabbitMQRepository(client *rabbitmq.Client) *AuditRabbitMQRepository {
	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       queueOrderCreated,
		Durable:    false,
		Exclusive:  false,
		AutoDelete: false,
	})
	if err != nil {
		panic(err)
	}

	return &AuditRabbitMQRepository{
		client: client,
		queue:  queue,
	}
}

// LogOrderCreated publishes one audit message per committed order. It uses
// its own deadline so a slow broker cannot hold the request context.
func (r *AuditRabbitMQRepository) LogOrderCreated(ctx context.Context, orders []order.Order) error {
	auditCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	g, _ := errgroup.WithContext(auditCtx)
	g.SetLimit(3)

	for _, ord := range orders {
		ord := ord
		g.Go(func() error {
			orderData, err := json.Marshal(ord)
			if err != nil {
				return err
			}

			return r.client.Channel().Publish(
				"",
				r.queue.Name,
				false,
				false,
				amqp.Publishing{
					ContentType: "application/json",
					Body:        orderData,
				},
			)
		})
	}

	return g.Wait()
}
