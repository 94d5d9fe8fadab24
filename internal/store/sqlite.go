package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/healthworkers/callcenter/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Events keep their
// record as JSON text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS raw_messages (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	service_date  TEXT,
	patient_name  TEXT,
	patient_phone TEXT,
	sender_phone  TEXT,
	report_date   DATETIME NOT NULL,
	service_code  TEXT
);

CREATE INDEX IF NOT EXISTS idx_raw_messages_report_date ON raw_messages(report_date);

CREATE TABLE IF NOT EXISTS events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	event      TEXT NOT NULL,
	record     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RawReports(ctx context.Context) ([]model.RawReport, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE(service_date, ''), COALESCE(patient_name, ''),
		COALESCE(patient_phone, ''), COALESCE(sender_phone, ''), report_date, COALESCE(service_code, '')
		FROM raw_messages ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query raw reports")
	}
	defer rows.Close()

	var reports []model.RawReport
	for rows.Next() {
		var r model.RawReport
		if err := rows.Scan(&r.ServiceDate, &r.PatientName, &r.PatientPhone, &r.SenderPhone, &r.ReportDate, &r.ServiceCode); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan raw report")
		}
		reports = append(reports, r)
	}
	return reports, eris.Wrap(rows.Err(), "sqlite: iterate raw reports")
}

func (s *SQLiteStore) Events(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event, COALESCE(json_extract(record, '$._id'), '') FROM events ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query events")
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var kind, id string
		if err := rows.Scan(&kind, &id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan event")
		}
		events = append(events, model.Event{Kind: model.EventKind(kind), RecordID: id})
	}
	return events, eris.Wrap(rows.Err(), "sqlite: iterate events")
}

func (s *SQLiteStore) InsertReports(ctx context.Context, reports []model.RawReport) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO raw_messages
		(service_date, patient_name, patient_phone, sender_phone, report_date, service_code)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, r := range reports {
		if _, err := stmt.ExecContext(ctx, reportRow(r)...); err != nil {
			return 0, eris.Wrap(err, "sqlite: insert report")
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return int64(len(reports)), nil
}

// AppendEvent records an outcome against recordID. The dashboard writes
// events in production; this is used to seed local databases.
func (s *SQLiteStore) AppendEvent(ctx context.Context, kind model.EventKind, recordID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO events (event, record) VALUES (?, json_object('_id', ?))`,
		string(kind), recordID)
	return eris.Wrap(err, "sqlite: append event")
}
