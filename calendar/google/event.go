package google

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/uniplanner/internal"
)

const (
	propertyType    = "type"
	propertySubject = "subject"
)

var (
	descriptionTypeRe    = regexp.MustCompile(`(?i)Type:\s*([^|\n]+)`)
	descriptionSubjectRe = regexp.MustCompile(`(?i)Subject:\s*([^|\n]+)`)
)

func description(event *internal.Event) string {
	return fmt.Sprintf("Type:%s | Subject:%s", event.Type, event.SubjectName())
}

func newGoogleEvent(cal *internal.Calendar, event *internal.Event) *calendar.Event {
	return &calendar.Event{
		Summary:     event.Title,
		Description: description(event),
		Start:       eventDateTime(cal, event.StartsAt),
		End:         eventDateTime(cal, event.EndsAt),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				propertyType:    event.Type.String(),
				propertySubject: event.SubjectName(),
			},
		},
	}
}

func eventDateTime(cal *internal.Calendar, t time.Time) *calendar.EventDateTime {
	if cal.TimeZone != "" {
		if loc, err := time.LoadLocation(cal.TimeZone); err == nil {
			t = t.In(loc)
		}
	}
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: cal.TimeZone,
	}
}

func newUpcomingEvent(event *calendar.Event) *internal.UpcomingEvent {
	typ, subject := typeAndSubject(event)
	return &internal.UpcomingEvent{
		ID:      event.Id,
		Summary: event.Summary,
		Start:   eventTime(event.Start),
		End:     eventTime(event.End),
		Type:    typ,
		Subject: subject,
	}
}

func eventTime(t *calendar.EventDateTime) internal.EventTime {
	if t == nil {
		return internal.EventTime{}
	}
	return internal.EventTime{
		DateTime: t.DateTime,
		Date:     t.Date,
	}
}

// typeAndSubject prefers the private extended properties and only parses
// the description ("Type:Class | Subject:Math") when none of them is set,
// which is the case for events created from the Google Calendar UI.
func typeAndSubject(event *calendar.Event) (typ, subject string) {
	if props := event.ExtendedProperties; props != nil {
		typ, subject = props.Private[propertyType], props.Private[propertySubject]
		if typ != "" || subject != "" {
			return typ, subject
		}
	}
	return firstMatch(descriptionTypeRe, event.Description), firstMatch(descriptionSubjectRe, event.Description)
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
