package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/guilherme-santos/uniplanner/internal"
)

func (p Planner) Events(ctx context.Context) ([]*Event, error) {
	return p.storage.Events(ctx)
}

func (p Planner) Event(ctx context.Context, id int64) (*Event, error) {
	return p.storage.Event(ctx, id)
}

// CreateEvent saves the event locally without touching the calendar.
func (p Planner) CreateEvent(ctx context.Context, req EventRequest) (*Event, error) {
	event, err := p.newEvent(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := p.storage.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("saving event: %w", err)
	}
	return event, nil
}

// UpdateEvent changes the local row only. Events already mirrored keep
// their old version in the calendar.
func (p Planner) UpdateEvent(ctx context.Context, id int64, req EventRequest) (*Event, error) {
	current, err := p.storage.Event(ctx, id)
	if err != nil {
		return nil, err
	}
	event, err := p.newEvent(ctx, req)
	if err != nil {
		return nil, err
	}
	event.ID = current.ID
	event.ExternalID = current.ExternalID

	if err := p.storage.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("updating event: %w", err)
	}
	if event.ExternalID != "" {
		p.logger.Warn("event updated locally only, calendar copy is out of date",
			"event_id", event.ID, "external_id", event.ExternalID)
	}
	return event, nil
}

func (p Planner) DeleteEvent(ctx context.Context, id int64) error {
	event, err := p.storage.Event(ctx, id)
	if err != nil {
		return err
	}
	if err := p.storage.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if event.ExternalID != "" {
		p.logger.Warn("event deleted locally only, calendar copy is kept",
			"event_id", event.ID, "external_id", event.ExternalID)
	}
	return nil
}

// newEvent validates req and resolves its subject. Nothing is written.
func (p Planner) newEvent(ctx context.Context, req EventRequest) (*Event, error) {
	event, err := p.parseRequest(req)
	if err != nil {
		return nil, err
	}
	subject, err := p.storage.Subject(ctx, event.SubjectID)
	if err != nil {
		return nil, err
	}
	event.Subject = subject
	return event, nil
}

func (p Planner) parseRequest(req EventRequest) (*Event, error) {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Start) == "" {
		missing = append(missing, "start")
	}
	if strings.TrimSpace(req.End) == "" {
		missing = append(missing, "end")
	}
	if strings.TrimSpace(req.Type) == "" {
		missing = append(missing, "type")
	}
	if req.SubjectID == 0 {
		missing = append(missing, "subjectId")
	}
	if len(missing) > 0 {
		return nil, &internal.ValidationError{Message: "missing fields", Fields: missing}
	}

	var invalid []string
	start, err := internal.ParseDateTime(req.Start, p.Location)
	if err != nil {
		invalid = append(invalid, "start")
	}
	end, err := internal.ParseDateTime(req.End, p.Location)
	if err != nil {
		invalid = append(invalid, "end")
	}
	typ := internal.EventType(strings.TrimSpace(req.Type))
	if !typ.Valid() {
		invalid = append(invalid, "type")
	}
	if req.SubjectID < 0 {
		invalid = append(invalid, "subjectId")
	}
	if len(invalid) > 0 {
		return nil, &internal.ValidationError{Message: "invalid fields", Fields: invalid}
	}
	if end.Before(start) {
		return nil, &internal.ValidationError{Message: "end must not be before start", Fields: []string{"end"}}
	}

	return &Event{
		Title:     strings.TrimSpace(req.Title),
		StartsAt:  start,
		EndsAt:    end,
		Type:      typ,
		SubjectID: req.SubjectID,
	}, nil
}
