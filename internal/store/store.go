// Package store reads raw reports and call outcome events from the report
// database.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/healthworkers/callcenter/internal/model"
)

// Store is the report database. It implements pipeline.ReportSource and
// pipeline.EventSource.
type Store interface {
	RawReports(ctx context.Context) ([]model.RawReport, error)
	Events(ctx context.Context) ([]model.Event, error)
	// InsertReports appends raw reports and returns how many were written.
	InsertReports(ctx context.Context, reports []model.RawReport) (int64, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the store for driver ("postgres" or "sqlite").
func Open(ctx context.Context, driver, dsn string, poolCfg *PoolConfig) (Store, error) {
	switch driver {
	case "postgres", "":
		return NewPostgres(ctx, dsn, poolCfg)
	case "sqlite":
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

var reportColumns = []string{
	"service_date", "patient_name", "patient_phone", "sender_phone", "report_date", "service_code",
}

func reportRow(r model.RawReport) []any {
	return []any{r.ServiceDate, r.PatientName, r.PatientPhone, r.SenderPhone, r.ReportDate.UTC(), r.ServiceCode}
}
