package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/guilherme-santos/uniplanner/internal"
)

const DriverName = "sqlite3"

// Open opens the database at path with foreign keys enforced. A single
// connection is used so ":memory:" databases survive between queries.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating database directory: %w", err)
		}
	}
	db, err := sql.Open(DriverName, path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sql.DB) *Storage {
	s := &Storage{
		db: sqlx.NewDb(db, DriverName),
	}
	err := s.RunMigrations()
	if err != nil {
		panic(fmt.Sprintf("sqlite: running migrations: %v", err))
	}
	return s
}

func (s Storage) Subjects(ctx context.Context) ([]*internal.Subject, error) {
	var rows []Subject

	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, color FROM subjects ORDER BY name
	`)
	if err != nil {
		return nil, err
	}

	res := make([]*internal.Subject, len(rows))
	for i, r := range rows {
		res[i] = r.Convert()
	}
	return res, nil
}

func (s Storage) Subject(ctx context.Context, id int64) (*internal.Subject, error) {
	var row Subject

	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, color FROM subjects WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subject %d: %w", id, internal.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return row.Convert(), nil
}

func (s Storage) CreateSubject(ctx context.Context, subject *internal.Subject) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO subjects (name, color) VALUES (?, ?)
	`, subject.Name, subject.Color)
	if err != nil {
		return constraintErr(err)
	}
	subject.ID, err = res.LastInsertId()
	return err
}

// UpdateSubject renames the subject. An empty color keeps the stored one,
// subject is refreshed with what ended up in the database.
func (s Storage) UpdateSubject(ctx context.Context, subject *internal.Subject) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subjects SET name = ?, color = COALESCE(NULLIF(?, ''), color)
		WHERE id = ?
	`, subject.Name, subject.Color, subject.ID)
	if err != nil {
		return constraintErr(err)
	}
	if err := mustAffect(res, "subject", subject.ID); err != nil {
		return err
	}
	updated, err := s.Subject(ctx, subject.ID)
	if err != nil {
		return err
	}
	*subject = *updated
	return nil
}

func (s Storage) DeleteSubject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM subjects WHERE id = ?
	`, id)
	if err != nil {
		return constraintErr(err)
	}
	return mustAffect(res, "subject", id)
}

const selectEvents = `
	SELECT e.id, e.title, e.start_at, e.end_at, e.type, e.subject_id, e.external_id,
		s.name AS subject_name, s.color AS subject_color
	FROM events e
	INNER JOIN subjects s ON s.id = e.subject_id
`

func (s Storage) Events(ctx context.Context) ([]*internal.Event, error) {
	var rows []Event

	err := s.db.SelectContext(ctx, &rows, selectEvents+`ORDER BY e.start_at, e.id`)
	if err != nil {
		return nil, err
	}

	res := make([]*internal.Event, len(rows))
	for i, r := range rows {
		res[i] = r.Convert()
	}
	return res, nil
}

func (s Storage) Event(ctx context.Context, id int64) (*internal.Event, error) {
	var row Event

	err := s.db.GetContext(ctx, &row, selectEvents+`WHERE e.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %d: %w", id, internal.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return row.Convert(), nil
}

func (s Storage) CreateEvent(ctx context.Context, event *internal.Event) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (title, start_at, end_at, type, subject_id, external_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.Title, event.StartsAt.UTC(), event.EndsAt.UTC(), event.Type.String(), event.SubjectID, event.ExternalID)
	if err != nil {
		return constraintErr(err)
	}
	event.ID, err = res.LastInsertId()
	return err
}

func (s Storage) UpdateEvent(ctx context.Context, event *internal.Event) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET title = ?, start_at = ?, end_at = ?, type = ?, subject_id = ?
		WHERE id = ?
	`, event.Title, event.StartsAt.UTC(), event.EndsAt.UTC(), event.Type.String(), event.SubjectID, event.ID)
	if err != nil {
		return constraintErr(err)
	}
	return mustAffect(res, "event", event.ID)
}

func (s Storage) SetEventExternalID(ctx context.Context, id int64, externalID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET external_id = ? WHERE id = ?
	`, externalID, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "event", id)
}

func (s Storage) DeleteEvent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM events WHERE id = ?
	`, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "event", id)
}

func mustAffect(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, internal.ErrNotFound)
	}
	return nil
}

func constraintErr(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %v", internal.ErrConflict, err)
	}
	return err
}
