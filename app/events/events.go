// Package events announces committed catalog changes to other services.
package events

import (
	"context"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event describes one committed change to a catalog record.
type Event struct {
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	ID         uint      `json:"id"`
	ImageURL   string    `json:"image_url,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
