package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQPublisher announces finished reminder jobs on the events exchange.
type RabbitMQPublisher struct {
	client *RabbitMQ
}

func NewRabbitMQPublisher(client *RabbitMQ) *RabbitMQPublisher {
	return &RabbitMQPublisher{client: client}
}

func (p *RabbitMQPublisher) PublishJobCompleted(ctx context.Context, event JobCompletedEvent) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("publisher is not initialized")
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid job event: %w", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal job event: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     event.CompletedAt,
		MessageId:     event.JobID,
		CorrelationId: event.JobID,
		Type:          RoutingKeyJobCompleted,
		Headers: amqp.Table{
			"landlordId": event.LandlordID,
			"status":     string(event.Status),
		},
		Body: payload,
	}

	if err := p.client.publish(ctx, EventsExchange, RoutingKeyJobCompleted, publishing); err != nil {
		return fmt.Errorf("job %s event: %w", event.JobID, err)
	}

	return nil
}

func (p *RabbitMQPublisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
