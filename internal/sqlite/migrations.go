package sqlite

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Migrate brings the schema of db up to date.
func Migrate(db *sql.DB) error {
	s := Storage{db: sqlx.NewDb(db, DriverName)}
	return s.RunMigrations()
}

func (s Storage) RunMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS subjects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR NOT NULL UNIQUE,
		color VARCHAR NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title VARCHAR NOT NULL,
		start_at DATETIME NOT NULL,
		end_at DATETIME NOT NULL,
		type VARCHAR NOT NULL CHECK (type IN ('Class', 'Exam', 'Study')),
		subject_id INTEGER NOT NULL,
		external_id VARCHAR NOT NULL DEFAULT '',
		FOREIGN KEY (subject_id) REFERENCES subjects (id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_start_at ON events (start_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_subject_id ON events (subject_id)`,
}
