package events

import (
	"context"
)

// Publisher sends profile change events
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// Broker is a Publisher that can also deliver events and report its health
type Broker interface {
	Publisher

	// Subscribe delivers events whose routing key matches bindingKey until
	// ctx is cancelled. Both returned channels are closed when delivery stops.
	Subscribe(ctx context.Context, bindingKey string) (<-chan *Event, <-chan error, error)

	// Close closes the broker connection
	Close() error

	// HealthCheck verifies the broker connection is healthy
	HealthCheck(ctx context.Context) error
}
