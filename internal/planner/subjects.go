package planner

import (
	"context"
	"strings"

	"github.com/guilherme-santos/uniplanner/internal"
)

type SubjectRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (r SubjectRequest) subject() (*Subject, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, &internal.ValidationError{Message: "missing fields", Fields: []string{"name"}}
	}
	return &Subject{Name: name, Color: strings.TrimSpace(r.Color)}, nil
}

func (p Planner) Subjects(ctx context.Context) ([]*Subject, error) {
	return p.storage.Subjects(ctx)
}

func (p Planner) Subject(ctx context.Context, id int64) (*Subject, error) {
	return p.storage.Subject(ctx, id)
}

func (p Planner) CreateSubject(ctx context.Context, req SubjectRequest) (*Subject, error) {
	subject, err := req.subject()
	if err != nil {
		return nil, err
	}
	if err := p.storage.CreateSubject(ctx, subject); err != nil {
		return nil, err
	}
	p.logger.Debug("subject created", "subject_id", subject.ID, "name", subject.Name)
	return subject, nil
}

// UpdateSubject renames the subject; an empty color keeps the current one.
func (p Planner) UpdateSubject(ctx context.Context, id int64, req SubjectRequest) (*Subject, error) {
	subject, err := req.subject()
	if err != nil {
		return nil, err
	}
	subject.ID = id
	if err := p.storage.UpdateSubject(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// DeleteSubject fails with internal.ErrConflict while events still
// reference the subject.
func (p Planner) DeleteSubject(ctx context.Context, id int64) error {
	return p.storage.DeleteSubject(ctx, id)
}
