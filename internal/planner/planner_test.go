package planner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilherme-santos/uniplanner/internal"
	"github.com/guilherme-santos/uniplanner/internal/logger"
	"github.com/guilherme-santos/uniplanner/internal/planner"
	"github.com/guilherme-santos/uniplanner/internal/sqlite"
)

type fakeProvider struct {
	created  []*internal.Event
	calendar *internal.Calendar
	from     time.Time
	limit    int64
	upcoming []*internal.UpcomingEvent
	err      error
}

func (f *fakeProvider) CreateEvent(_ context.Context, cal *internal.Calendar, event *internal.Event) (string, error) {
	f.calendar = cal
	f.created = append(f.created, event)
	if f.err != nil {
		return "", f.err
	}
	return "gcal-1", nil
}

func (f *fakeProvider) UpcomingEvents(_ context.Context, cal *internal.Calendar, from time.Time, limit int64) ([]*internal.UpcomingEvent, error) {
	f.calendar = cal
	f.from = from
	f.limit = limit
	return f.upcoming, f.err
}

func newPlanner(t *testing.T) (*planner.Planner, *fakeProvider, *sqlite.Storage) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	storage := sqlite.NewStorage(db)
	provider := &fakeProvider{}
	p := planner.New(logger.Discard(), provider, storage)
	p.Location = madrid
	return p, provider, storage
}

func createMath(t *testing.T, p *planner.Planner) *internal.Subject {
	t.Helper()

	subject, err := p.CreateSubject(context.Background(), planner.SubjectRequest{Name: "Math", Color: "#ff0000"})
	require.NoError(t, err)
	return subject
}

func midtermRequest(subjectID int64) planner.EventRequest {
	return planner.EventRequest{
		Title:     "Midterm",
		Start:     "2024-05-01T10:00",
		End:       "2024-05-01T11:00",
		Type:      "Exam",
		SubjectID: subjectID,
	}
}

func TestAddEvent(t *testing.T) {
	p, provider, storage := newPlanner(t)
	ctx := context.Background()
	math := createMath(t, p)

	res, err := p.AddEvent(ctx, "access-token", midtermRequest(math.ID))
	require.NoError(t, err)
	assert.Nil(t, res.Warning)
	assert.Equal(t, "gcal-1", res.Event.ExternalID)
	assert.Equal(t, "Math", res.Event.SubjectName())

	require.Len(t, provider.created, 1)
	assert.Equal(t, "primary", provider.calendar.ProviderID)
	assert.Equal(t, "Europe/Madrid", provider.calendar.TimeZone)
	assert.Equal(t, "access-token", provider.calendar.AccessToken)

	start := provider.created[0].StartsAt
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), start.UTC(), "local times are read in the configured zone")

	saved, err := storage.Event(ctx, res.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, "gcal-1", saved.ExternalID)
	assert.Equal(t, internal.EventTypeExam, saved.Type)
}

func TestAddEventMirrorFailureKeepsLocalEvent(t *testing.T) {
	p, provider, storage := newPlanner(t)
	ctx := context.Background()
	math := createMath(t, p)

	provider.err = &internal.UpstreamError{
		Op:      "calendar: inserting event",
		Status:  403,
		Details: map[string]any{"reason": "forbidden"},
		Err:     errors.New("forbidden"),
	}

	res, err := p.AddEvent(ctx, "access-token", midtermRequest(math.ID))
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Contains(t, res.Warning.Error, "status 403")
	assert.Equal(t, map[string]any{"reason": "forbidden"}, res.Warning.Details)

	saved, err := storage.Event(ctx, res.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Midterm", saved.Title)
	assert.Empty(t, saved.ExternalID)
}

func TestAddEventRejectedRequests(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		modify func(*planner.EventRequest)
		fields []string
		err    error
	}{
		{
			name:  "no access token",
			token: "",
			err:   internal.ErrUnauthorized,
		},
		{
			name:   "missing title and type",
			token:  "access-token",
			modify: func(r *planner.EventRequest) { r.Title = " "; r.Type = "" },
			fields: []string{"title", "type"},
		},
		{
			name:   "missing subject",
			token:  "access-token",
			modify: func(r *planner.EventRequest) { r.SubjectID = 0 },
			fields: []string{"subjectId"},
		},
		{
			name:   "unknown type",
			token:  "access-token",
			modify: func(r *planner.EventRequest) { r.Type = "Party" },
			fields: []string{"type"},
		},
		{
			name:   "bad dates",
			token:  "access-token",
			modify: func(r *planner.EventRequest) { r.Start = "tomorrow"; r.End = "05/01/2024" },
			fields: []string{"start", "end"},
		},
		{
			name:   "end before start",
			token:  "access-token",
			modify: func(r *planner.EventRequest) { r.End = "2024-05-01T09:00" },
			fields: []string{"end"},
		},
		{
			name:   "unknown subject",
			token:  "access-token",
			modify: func(r *planner.EventRequest) { r.SubjectID = 99 },
			err:    internal.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, provider, storage := newPlanner(t)
			ctx := context.Background()
			math := createMath(t, p)

			req := midtermRequest(math.ID)
			if tt.modify != nil {
				tt.modify(&req)
			}
			_, err := p.AddEvent(ctx, tt.token, req)
			require.Error(t, err)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				var vErr *internal.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.fields, vErr.Fields)
			}

			assert.Empty(t, provider.created, "no external write")
			events, err := storage.Events(ctx)
			require.NoError(t, err)
			assert.Empty(t, events, "no local write")
		})
	}
}

func TestAddEventAcceptsZeroLengthEvent(t *testing.T) {
	p, _, _ := newPlanner(t)
	math := createMath(t, p)

	req := midtermRequest(math.ID)
	req.End = req.Start
	_, err := p.AddEvent(context.Background(), "access-token", req)
	assert.NoError(t, err)
}

func TestUpcoming(t *testing.T) {
	p, provider, _ := newPlanner(t)
	now := time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC)
	p.Now = func() time.Time { return now }
	p.UpcomingLimit = 10

	provider.upcoming = []*internal.UpcomingEvent{{ID: "a", Summary: "Midterm", Type: "Exam", Subject: "Math"}}

	events, err := p.Upcoming(context.Background(), "access-token")
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, now, provider.from)
	assert.Equal(t, int64(10), provider.limit)
}

func TestUpcomingEmpty(t *testing.T) {
	p, _, _ := newPlanner(t)

	events, err := p.Upcoming(context.Background(), "access-token")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestUpcomingErrors(t *testing.T) {
	p, provider, _ := newPlanner(t)

	_, err := p.Upcoming(context.Background(), "")
	assert.ErrorIs(t, err, internal.ErrUnauthorized)

	provider.err = &internal.UpstreamError{Op: "calendar: listing events", Status: 401, Err: errors.New("invalid credentials")}
	_, err = p.Upcoming(context.Background(), "access-token")
	var uErr *internal.UpstreamError
	assert.ErrorAs(t, err, &uErr)
}

func TestLocalEvents(t *testing.T) {
	p, provider, _ := newPlanner(t)
	ctx := context.Background()
	math := createMath(t, p)

	event, err := p.CreateEvent(ctx, midtermRequest(math.ID))
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.Empty(t, provider.created, "local events are not mirrored")

	req := midtermRequest(math.ID)
	req.Title = "Final"
	req.Type = "Study"
	updated, err := p.UpdateEvent(ctx, event.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)

	got, err := p.Event(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.EventTypeStudy, got.Type)
	assert.Equal(t, "Math", got.SubjectName())

	events, err := p.Events(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	require.NoError(t, p.DeleteEvent(ctx, event.ID))
	_, err = p.Event(ctx, event.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)
	assert.ErrorIs(t, p.DeleteEvent(ctx, event.ID), internal.ErrNotFound)
}

func TestUpdateMirroredEventKeepsExternalID(t *testing.T) {
	p, _, storage := newPlanner(t)
	ctx := context.Background()
	math := createMath(t, p)

	res, err := p.AddEvent(ctx, "access-token", midtermRequest(math.ID))
	require.NoError(t, err)

	req := midtermRequest(math.ID)
	req.Title = "Midterm (room 2)"
	_, err = p.UpdateEvent(ctx, res.Event.ID, req)
	require.NoError(t, err)

	saved, err := storage.Event(ctx, res.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Midterm (room 2)", saved.Title)
	assert.Equal(t, "gcal-1", saved.ExternalID)
}

func TestUpdateEventValidation(t *testing.T) {
	p, _, _ := newPlanner(t)
	ctx := context.Background()
	math := createMath(t, p)

	_, err := p.UpdateEvent(ctx, 42, midtermRequest(math.ID))
	assert.ErrorIs(t, err, internal.ErrNotFound)

	event, err := p.CreateEvent(ctx, midtermRequest(math.ID))
	require.NoError(t, err)

	req := midtermRequest(math.ID)
	req.Type = "Party"
	_, err = p.UpdateEvent(ctx, event.ID, req)
	var vErr *internal.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestSubjects(t *testing.T) {
	p, _, _ := newPlanner(t)
	ctx := context.Background()

	_, err := p.CreateSubject(ctx, planner.SubjectRequest{Name: "  "})
	var vErr *internal.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"name"}, vErr.Fields)

	math := createMath(t, p)
	_, err = p.CreateSubject(ctx, planner.SubjectRequest{Name: "Math"})
	assert.ErrorIs(t, err, internal.ErrConflict)

	physics, err := p.CreateSubject(ctx, planner.SubjectRequest{Name: "Physics"})
	require.NoError(t, err)

	renamed, err := p.UpdateSubject(ctx, math.ID, planner.SubjectRequest{Name: "Algebra"})
	require.NoError(t, err)
	assert.Equal(t, "Algebra", renamed.Name)
	assert.Equal(t, "#ff0000", renamed.Color, "empty color keeps the old one")

	subjects, err := p.Subjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Algebra", subjects[0].Name)
	assert.Equal(t, "Physics", subjects[1].Name)

	_, err = p.UpdateSubject(ctx, 99, planner.SubjectRequest{Name: "Chemistry"})
	assert.ErrorIs(t, err, internal.ErrNotFound)

	require.NoError(t, p.DeleteSubject(ctx, physics.ID))
	_, err = p.Subject(ctx, physics.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestDeleteReferencedSubject(t *testing.T) {
	p, _, _ := newPlanner(t)
	ctx := context.Background()
	math := createMath(t, p)

	_, err := p.CreateEvent(ctx, midtermRequest(math.ID))
	require.NoError(t, err)

	err = p.DeleteSubject(ctx, math.ID)
	assert.ErrorIs(t, err, internal.ErrConflict)
}
