package internal

import "time"

type Event struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	StartsAt   time.Time `json:"start"`
	EndsAt     time.Time `json:"end"`
	Type       EventType `json:"type"`
	SubjectID  int64     `json:"subjectId"`
	Subject    *Subject  `json:"subject,omitempty"`
	ExternalID string    `json:"externalId,omitempty"`
}

// SubjectName returns the name of the related subject or an empty string
// when the relation was not loaded.
func (e Event) SubjectName() string {
	if e.Subject == nil {
		return ""
	}
	return e.Subject.Name
}

type EventType string

func (s EventType) String() string {
	return string(s)
}

func (s EventType) Valid() bool {
	switch s {
	case EventTypeClass, EventTypeExam, EventTypeStudy:
		return true
	}
	return false
}

var (
	EventTypeClass EventType = "Class"
	EventTypeExam  EventType = "Exam"
	EventTypeStudy EventType = "Study"
)

// UpcomingEvent is an event read back from the calendar provider, which
// may have been created outside of the planner.
type UpcomingEvent struct {
	ID      string    `json:"id"`
	Summary string    `json:"summary,omitempty"`
	Start   EventTime `json:"start"`
	End     EventTime `json:"end"`
	Type    string    `json:"type,omitempty"`
	Subject string    `json:"subject,omitempty"`
}

// EventTime holds either a timed value (DateTime, RFC3339) or an all-day
// value (Date, yyyy-mm-dd), as the provider returns them.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}
