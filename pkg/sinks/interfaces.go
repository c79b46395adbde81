package sinks

import "context"

// Sink forwards exchange events to a downstream system (HTTP, SQS, SNS, Pub/Sub).
type Sink interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// closer is implemented by sinks that hold client connections.
type closer interface {
	Close() error
}
