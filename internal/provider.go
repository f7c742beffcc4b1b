package internal

import (
	"context"
	"time"
)

type Provider interface {
	// CreateEvent inserts the event and returns the id assigned by the provider.
	CreateEvent(_ context.Context, _ *Calendar, _ *Event) (string, error)
	UpcomingEvents(_ context.Context, _ *Calendar, from time.Time, limit int64) ([]*UpcomingEvent, error)
}
