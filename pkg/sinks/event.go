package sinks

import (
	"time"

	"github.com/samvad-hq/samvad-invoker/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	Exchange    domain.Exchange `json:"exchange"`
	PublishedAt time.Time       `json:"published_at"`
}

// NewEvent wraps a completed exchange for publishing.
func NewEvent(ex domain.Exchange) Event {
	return Event{
		Exchange:    ex,
		PublishedAt: time.Now().UTC(),
	}
}
