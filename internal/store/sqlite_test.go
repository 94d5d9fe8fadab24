package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthworkers/callcenter/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_ReportsRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	reported := time.Date(2021, 3, 12, 9, 30, 0, 0, time.UTC)

	in := []model.RawReport{
		{ServiceDate: "12.03.21", PatientName: "Jane", PatientPhone: "0700000001", SenderPhone: "256700000001", ReportDate: reported, ServiceCode: "anc"},
		{ServiceDate: "13.03.21", PatientName: "John", PatientPhone: "0700000002", SenderPhone: "256700000002", ReportDate: reported.Add(time.Hour), ServiceCode: "fp"},
	}
	n, err := st.InsertReports(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	out, err := st.RawReports(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Jane", out[0].PatientName)
	assert.Equal(t, "fp", out[1].ServiceCode)
	assert.True(t, reported.Equal(out[0].ReportDate), "got %s", out[0].ReportDate)
}

func TestSQLite_ReportsRoundTrip_NonUTC(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	eat := time.FixedZone("EAT", 3*60*60)
	reported := time.Date(2021, 3, 13, 1, 30, 0, 0, eat)

	_, err := st.InsertReports(ctx, []model.RawReport{
		{ServiceDate: "13-03-2021", PatientName: "Jane", SenderPhone: "256700000001", ReportDate: reported, ServiceCode: "anc"},
	})
	require.NoError(t, err)

	out, err := st.RawReports(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, reported.Equal(out[0].ReportDate), "instant survives the store, got %s", out[0].ReportDate)
	assert.Equal(t, 13, out[0].ReportDate.In(eat).Day())
}

func TestSQLite_RawReports_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	out, err := st.RawReports(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSQLite_Events(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.AppendEvent(ctx, model.EventCalled, "abc"))
	require.NoError(t, st.AppendEvent(ctx, model.EventNoConsent, "def"))
	_, err := st.db.ExecContext(ctx, `INSERT INTO events (event, record) VALUES ('called', '{}')`)
	require.NoError(t, err)

	events, err := st.Events(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Event{
		{Kind: model.EventCalled, RecordID: "abc"},
		{Kind: model.EventNoConsent, RecordID: "def"},
		{Kind: model.EventCalled, RecordID: ""},
	}, events)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestOpen_SQLite(t *testing.T) {
	s, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "open.db"), nil)
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
}
