package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/guilherme-santos/uniplanner/internal"
)

type (
	Event         = internal.Event
	Subject       = internal.Subject
	UpcomingEvent = internal.UpcomingEvent
)

type Storage interface {
	Subjects(context.Context) ([]*Subject, error)
	Subject(_ context.Context, id int64) (*Subject, error)
	CreateSubject(context.Context, *Subject) error
	UpdateSubject(context.Context, *Subject) error
	DeleteSubject(_ context.Context, id int64) error

	Events(context.Context) ([]*Event, error)
	Event(_ context.Context, id int64) (*Event, error)
	CreateEvent(context.Context, *Event) error
	UpdateEvent(context.Context, *Event) error
	SetEventExternalID(_ context.Context, id int64, externalID string) error
	DeleteEvent(_ context.Context, id int64) error
}

const (
	defaultCalendarID    = "primary"
	defaultUpcomingLimit = 50
)

// Planner keeps events in the local storage and mirrors them to the
// user's external calendar. The local storage is the source of truth: a
// failed mirror never undoes a local write.
type Planner struct {
	logger   *slog.Logger
	provider internal.Provider
	storage  Storage

	CalendarID    string
	Location      *time.Location
	UpcomingLimit int64
	Now           func() time.Time
}

func New(logger *slog.Logger, provider internal.Provider, storage Storage) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		logger:        logger,
		provider:      provider,
		storage:       storage,
		CalendarID:    defaultCalendarID,
		Location:      time.UTC,
		UpcomingLimit: defaultUpcomingLimit,
		Now:           time.Now,
	}
}

type EventRequest struct {
	Title     string `json:"title"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Type      string `json:"type"`
	SubjectID int64  `json:"subjectId"`
}

type AddResult struct {
	Event   *Event   `json:"event"`
	Warning *Warning `json:"warning,omitempty"`
}

// Warning reports a calendar mirror that failed after the event was saved.
type Warning struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// AddEvent saves the event and then mirrors it to the external calendar
// with a single call.
func (p Planner) AddEvent(ctx context.Context, accessToken string, req EventRequest) (*AddResult, error) {
	if accessToken == "" {
		return nil, internal.ErrUnauthorized
	}

	event, err := p.newEvent(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := p.storage.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("saving event: %w", err)
	}

	logger := p.logger.With("event_id", event.ID, "calendar", p.CalendarID)
	res := &AddResult{Event: event}

	externalID, err := p.provider.CreateEvent(ctx, p.calendar(accessToken), event)
	if err != nil {
		logger.Warn("event saved but not mirrored to the calendar", "error", err)
		res.Warning = newWarning(err)
		return res, nil
	}

	event.ExternalID = externalID
	if err := p.storage.SetEventExternalID(ctx, event.ID, externalID); err != nil {
		logger.Warn("unable to save external event id", "external_id", externalID, "error", err)
	}
	logger.Info("event created", "external_id", externalID)
	return res, nil
}

// Upcoming lists future events straight from the external calendar.
func (p Planner) Upcoming(ctx context.Context, accessToken string) ([]*UpcomingEvent, error) {
	if accessToken == "" {
		return nil, internal.ErrUnauthorized
	}
	events, err := p.provider.UpcomingEvents(ctx, p.calendar(accessToken), p.now(), p.UpcomingLimit)
	if err != nil {
		return nil, fmt.Errorf("listing upcoming events: %w", err)
	}
	if events == nil {
		events = []*UpcomingEvent{}
	}
	return events, nil
}

func (p Planner) calendar(accessToken string) *internal.Calendar {
	cal := &internal.Calendar{
		ProviderID:  p.CalendarID,
		AccessToken: accessToken,
	}
	if p.Location != nil && p.Location != time.UTC {
		cal.TimeZone = p.Location.String()
	}
	return cal
}

func (p Planner) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func newWarning(err error) *Warning {
	w := &Warning{
		Message: "event saved locally but could not be added to the calendar",
		Error:   err.Error(),
	}
	var uErr *internal.UpstreamError
	if errors.As(err, &uErr) {
		w.Details = uErr.Details
	}
	return w
}
