package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/db"
	"github.com/healthworkers/callcenter/internal/model"
	"github.com/healthworkers/callcenter/internal/resilience"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("postgres", "ping")
	if err := resilience.Do(ctx, retry, pool.Ping); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS raw_messages (
	id            BIGSERIAL PRIMARY KEY,
	service_date  TEXT,
	patient_name  TEXT,
	patient_phone TEXT,
	sender_phone  TEXT,
	report_date   TIMESTAMPTZ NOT NULL,
	service_code  TEXT
);

CREATE INDEX IF NOT EXISTS idx_raw_messages_report_date ON raw_messages(report_date);
CREATE INDEX IF NOT EXISTS idx_raw_messages_sender_phone ON raw_messages(sender_phone);

CREATE TABLE IF NOT EXISTS events (
	id         BIGSERIAL PRIMARY KEY,
	event      TEXT NOT NULL,
	record     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_events_record_id ON events((record->>'_id'));
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) RawReports(ctx context.Context) ([]model.RawReport, error) {
	rows, err := s.pool.Query(ctx, `SELECT COALESCE(service_date, ''), COALESCE(patient_name, ''),
		COALESCE(patient_phone, ''), COALESCE(sender_phone, ''), report_date, COALESCE(service_code, '')
		FROM raw_messages ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query raw reports")
	}

	reports, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.RawReport, error) {
		var r model.RawReport
		err := row.Scan(&r.ServiceDate, &r.PatientName, &r.PatientPhone, &r.SenderPhone, &r.ReportDate, &r.ServiceCode)
		return r, err
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan raw reports")
	}
	zap.L().Debug("postgres: loaded raw reports", zap.Int("count", len(reports)))
	return reports, nil
}

func (s *PostgresStore) Events(ctx context.Context) ([]model.Event, error) {
	rows, err := s.pool.Query(ctx, `SELECT event, COALESCE(record->>'_id', '') FROM events ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query events")
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Event, error) {
		var e model.Event
		var kind string
		err := row.Scan(&kind, &e.RecordID)
		e.Kind = model.EventKind(kind)
		return e, err
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan events")
	}
	zap.L().Debug("postgres: loaded events", zap.Int("count", len(events)))
	return events, nil
}

func (s *PostgresStore) InsertReports(ctx context.Context, reports []model.RawReport) (int64, error) {
	rows := make([][]any, len(reports))
	for i, r := range reports {
		rows[i] = reportRow(r)
	}
	n, err := db.CopyFrom(ctx, s.pool, "raw_messages", reportColumns, rows)
	return n, eris.Wrap(err, "postgres: insert reports")
}
