package sqlite

import (
	"time"

	"github.com/guilherme-santos/uniplanner/internal"
)

type Subject struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Color string `db:"color"`
}

func (s Subject) Convert() *internal.Subject {
	return &internal.Subject{
		ID:    s.ID,
		Name:  s.Name,
		Color: s.Color,
	}
}

type Event struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	StartAt      time.Time `db:"start_at"`
	EndAt        time.Time `db:"end_at"`
	Type         string    `db:"type"`
	SubjectID    int64     `db:"subject_id"`
	ExternalID   string    `db:"external_id"`
	SubjectName  string    `db:"subject_name"`
	SubjectColor string    `db:"subject_color"`
}

func (e Event) Convert() *internal.Event {
	return &internal.Event{
		ID:         e.ID,
		Title:      e.Title,
		StartsAt:   e.StartAt,
		EndsAt:     e.EndAt,
		Type:       internal.EventType(e.Type),
		SubjectID:  e.SubjectID,
		ExternalID: e.ExternalID,
		Subject: &internal.Subject{
			ID:    e.SubjectID,
			Name:  e.SubjectName,
			Color: e.SubjectColor,
		},
	}
}
