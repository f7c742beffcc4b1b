package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/uniplanner/internal"
	"github.com/guilherme-santos/uniplanner/internal/logger"
)

const eventsPath = "/calendar/v3/calendars/primary/events"

// fakeCalendar stores inserted events and lists them back, like the primary
// calendar of a Google account would.
type fakeCalendar struct {
	mu        sync.Mutex
	events    []*calendar.Event
	inserts   int
	lastQuery url.Values
	lastAuth  string
	failWith  int
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastAuth = r.Header.Get("Authorization")
	w.Header().Set("Content-Type", "application/json")

	if f.failWith != 0 {
		w.WriteHeader(f.failWith)
		fmt.Fprintf(w, `{"error":{"code":%d,"message":"The request is missing a valid credential.","errors":[{"reason":"forbidden"}]}}`, f.failWith)
		return
	}

	switch {
	case r.URL.Path == eventsPath && r.Method == http.MethodPost:
		var event calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.inserts++
		event.Id = fmt.Sprintf("gcal-%d", f.inserts)
		f.events = append(f.events, &event)
		_ = json.NewEncoder(w).Encode(&event)

	case r.URL.Path == eventsPath && r.Method == http.MethodGet:
		f.lastQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(&calendar.Events{Items: f.events})

	case r.URL.Path == "/oauth2/v2/userinfo":
		fmt.Fprint(w, `{"id":"123","email":"student@example.com"}`)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeCalendar) {
	t.Helper()

	fake := &fakeCalendar{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c := NewClient()
	c.Endpoint = srv.URL + "/calendar/v3/"
	c.UserinfoEndpoint = srv.URL + "/"
	c.Logger = logger.Discard()
	return c, fake
}

func testCalendar() *internal.Calendar {
	return &internal.Calendar{
		ProviderID:  "primary",
		TimeZone:    "Europe/Madrid",
		AccessToken: "access-token",
	}
}

func midterm(t *testing.T) *internal.Event {
	t.Helper()

	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)
	return &internal.Event{
		ID:        1,
		Title:     "Midterm",
		StartsAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, madrid),
		EndsAt:    time.Date(2024, 5, 1, 11, 0, 0, 0, madrid),
		Type:      internal.EventTypeExam,
		SubjectID: 1,
		Subject:   &internal.Subject{ID: 1, Name: "Math"},
	}
}

func TestCreateEvent(t *testing.T) {
	c, fake := newTestClient(t)

	id, err := c.CreateEvent(context.Background(), testCalendar(), midterm(t))
	require.NoError(t, err)
	assert.Equal(t, "gcal-1", id)
	assert.Equal(t, "Bearer access-token", fake.lastAuth)

	require.Len(t, fake.events, 1)
	got := fake.events[0]
	assert.Equal(t, "Midterm", got.Summary)
	assert.Contains(t, got.Description, "Type:Exam")
	assert.Contains(t, got.Description, "Subject:Math")
	assert.Equal(t, "2024-05-01T10:00:00+02:00", got.Start.DateTime)
	assert.Equal(t, "Europe/Madrid", got.Start.TimeZone)
	assert.Equal(t, "2024-05-01T11:00:00+02:00", got.End.DateTime)
	require.NotNil(t, got.ExtendedProperties)
	assert.Equal(t, map[string]string{"type": "Exam", "subject": "Math"}, got.ExtendedProperties.Private)
}

func TestCreateEventUpstreamError(t *testing.T) {
	c, fake := newTestClient(t)
	fake.failWith = http.StatusForbidden

	_, err := c.CreateEvent(context.Background(), testCalendar(), midterm(t))

	var uErr *internal.UpstreamError
	require.ErrorAs(t, err, &uErr)
	assert.Equal(t, http.StatusForbidden, uErr.Status)
	raw, ok := uErr.Details.(json.RawMessage)
	require.True(t, ok, "provider payload is kept as JSON")
	assert.Contains(t, string(raw), "missing a valid credential")
}

func TestCreateEventWithoutToken(t *testing.T) {
	c, fake := newTestClient(t)

	cal := testCalendar()
	cal.AccessToken = ""
	_, err := c.CreateEvent(context.Background(), cal, midterm(t))
	assert.ErrorIs(t, err, internal.ErrUnauthorized)
	assert.Zero(t, fake.inserts)
}

func TestUpcomingEventsRoundTrip(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	_, err := c.CreateEvent(ctx, testCalendar(), midterm(t))
	require.NoError(t, err)

	// Created from the Google Calendar UI: no private properties.
	fake.events = append(fake.events, &calendar.Event{
		Id:          "external",
		Summary:     "Study group",
		Description: "Type: Study | Subject: Physics",
		Start:       &calendar.EventDateTime{Date: "2024-05-02"},
		End:         &calendar.EventDateTime{Date: "2024-05-03"},
	})

	from := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	events, err := c.UpcomingEvents(ctx, testCalendar(), from, 50)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "gcal-1", events[0].ID)
	assert.Equal(t, "Midterm", events[0].Summary)
	assert.Equal(t, "Exam", events[0].Type)
	assert.Equal(t, "Math", events[0].Subject)
	assert.Equal(t, "2024-05-01T10:00:00+02:00", events[0].Start.DateTime)

	assert.Equal(t, "external", events[1].ID)
	assert.Equal(t, "Study", events[1].Type)
	assert.Equal(t, "Physics", events[1].Subject)
	assert.Equal(t, "2024-05-02", events[1].Start.Date)

	q := fake.lastQuery
	assert.Equal(t, "2024-04-30T00:00:00Z", q.Get("timeMin"))
	assert.Equal(t, "true", q.Get("singleEvents"))
	assert.Equal(t, "startTime", q.Get("orderBy"))
	assert.Equal(t, "50", q.Get("maxResults"))
}

func TestUpcomingEventsUpstreamError(t *testing.T) {
	c, fake := newTestClient(t)
	fake.failWith = http.StatusUnauthorized

	_, err := c.UpcomingEvents(context.Background(), testCalendar(), time.Now(), 10)

	var uErr *internal.UpstreamError
	require.ErrorAs(t, err, &uErr)
	assert.Equal(t, http.StatusUnauthorized, uErr.Status)
}

func TestEmail(t *testing.T) {
	c, fake := newTestClient(t)

	email, err := c.Email(context.Background(), "access-token")
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", email)
	assert.Equal(t, "Bearer access-token", fake.lastAuth)
}
