package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/guilherme-santos/uniplanner/internal"
)

// Client talks to Google Calendar on behalf of the user owning the access
// token carried by each *internal.Calendar.
type Client struct {
	// Endpoint overrides the Calendar API base URL, UserinfoEndpoint the
	// OAuth2 userinfo one. Both are empty in production.
	Endpoint         string
	UserinfoEndpoint string

	Logger *slog.Logger
}

func NewClient() *Client {
	return &Client{
		Logger: slog.Default(),
	}
}

func (c Client) CreateEvent(ctx context.Context, cal *internal.Calendar, req *internal.Event) (string, error) {
	logger := c.logger(cal).With("summary", req.Title, "start", req.StartsAt)

	svc, err := c.calendarSvc(ctx, cal)
	if err != nil {
		return "", err
	}

	gevent, err := svc.Events.Insert(cal.ProviderID, newGoogleEvent(cal, req)).Context(ctx).Do()
	if err != nil {
		logger.Error("unable to create event", "error", err)
		return "", upstreamError("calendar: inserting event", err)
	}
	logger.Debug("event created", "google_event_id", gevent.Id)
	return gevent.Id, nil
}

// UpcomingEvents returns at most limit events starting after from, with
// recurring events expanded into single instances.
func (c Client) UpcomingEvents(ctx context.Context, cal *internal.Calendar, from time.Time, limit int64) ([]*internal.UpcomingEvent, error) {
	svc, err := c.calendarSvc(ctx, cal)
	if err != nil {
		return nil, err
	}

	events, err := svc.Events.
		List(cal.ProviderID).
		Context(ctx).
		TimeMin(from.Format(time.RFC3339)).
		MaxResults(limit).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		c.logger(cal).Error("unable to get list of events", "error", err)
		return nil, upstreamError("calendar: listing events", err)
	}

	res := make([]*internal.UpcomingEvent, 0, len(events.Items))
	for _, item := range events.Items {
		res = append(res, newUpcomingEvent(item))
	}
	return res, nil
}

// Email returns the address of the account owning accessToken.
func (c Client) Email(ctx context.Context, accessToken string) (string, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient(ctx, accessToken))}
	if c.UserinfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.UserinfoEndpoint))
	}
	svc, err := oauth2v2.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("google: creating userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", upstreamError("oauth2: getting userinfo", err)
	}
	return info.Email, nil
}

func (c Client) calendarSvc(ctx context.Context, cal *internal.Calendar) (*calendar.Service, error) {
	if cal.AccessToken == "" {
		return nil, fmt.Errorf("google: %w: missing access token", internal.ErrUnauthorized)
	}
	opts := []option.ClientOption{option.WithHTTPClient(httpClient(ctx, cal.AccessToken))}
	if c.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.Endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google: creating calendar service: %w", err)
	}
	return svc, nil
}

func (c Client) logger(cal *internal.Calendar) *slog.Logger {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("provider", "google", "calendar", cal.String())
}

func httpClient(ctx context.Context, accessToken string) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
}

func upstreamError(op string, err error) error {
	uErr := &internal.UpstreamError{Op: op, Err: err}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		uErr.Status = gErr.Code
		uErr.Details = details([]byte(gErr.Body), gErr.Message)
	}
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		if rErr.Response != nil {
			uErr.Status = rErr.Response.StatusCode
		}
		uErr.Details = details(rErr.Body, rErr.ErrorDescription)
	}
	return uErr
}

// details keeps a provider payload as raw JSON when it is JSON.
func details(body []byte, fallback string) any {
	if len(body) > 0 && json.Valid(body) {
		return json.RawMessage(body)
	}
	if len(body) > 0 {
		return string(body)
	}
	if fallback != "" {
		return fallback
	}
	return nil
}
