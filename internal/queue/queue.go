package queue

import (
	"context"
)

// EventPublisher publishes reminder lifecycle events to the broker.
type EventPublisher interface {
	PublishJobCompleted(ctx context.Context, event JobCompletedEvent) error
	Close() error
}

const (
	// EventsExchange is the topic exchange carrying reminder events.
	EventsExchange = "rentalert.events"
	// RoutingKeyJobCompleted is used for finished (completed or failed) reminder jobs.
	RoutingKeyJobCompleted = "reminder.job.completed"
	// JobEventsQueue retains job events for downstream consumers (billing, analytics).
	JobEventsQueue = "reminder.jobs"

	dlxExchangeName = "rentalert.events.dlx"
	jobEventsDLQ    = "dlq.reminder.jobs"
	jobEventsBind   = "reminder.job.*"
)

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishJobCompleted(ctx context.Context, event JobCompletedEvent) error {
	return event.Validate()
}

func (NoopPublisher) Close() error { return nil }
