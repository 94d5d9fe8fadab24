// Package roster loads the worker reference tables: the active roster, the
// endline roster and the phone renumbering crosswalk.
package roster

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/fetcher"
	"github.com/healthworkers/callcenter/internal/model"
	"github.com/healthworkers/callcenter/internal/objstore"
)

// Columns names the spreadsheet columns each table is read from.
type Columns struct {
	ReportingNumber string `yaml:"reporting_number" mapstructure:"reporting_number"`
	WorkerName      string `yaml:"worker_name" mapstructure:"worker_name"`
	District        string `yaml:"district" mapstructure:"district"`
	Area            string `yaml:"area" mapstructure:"area"`
	TrainingDate    string `yaml:"training_date" mapstructure:"training_date"`

	EndlineNumber string `yaml:"endline_number" mapstructure:"endline_number"`
	Endline       string `yaml:"endline" mapstructure:"endline"`

	OldNumber string `yaml:"old_number" mapstructure:"old_number"`
	NewNumber string `yaml:"new_number" mapstructure:"new_number"`
}

// DefaultColumns returns the column names of the survey exports.
func DefaultColumns() Columns {
	return Columns{
		ReportingNumber: "z08_2",
		WorkerName:      "chw_name",
		District:        "chw_district",
		Area:            "chw_area",
		TrainingDate:    "training_date",
		EndlineNumber:   "reporting_number",
		Endline:         "endline",
		OldNumber:       "old_number",
		NewNumber:       "last_number",
	}
}

// Remote fetches files from object storage.
type Remote interface {
	Latest(ctx context.Context, bucket, prefix string) (string, error)
	Download(ctx context.Context, bucket, key, dir string) (string, error)
}

// Config locates the three tables. Each path is a local .xlsx/.csv file or
// an s3://bucket/key URL. A URL ending in "/" names a prefix whose most
// recently modified object is read.
type Config struct {
	RosterPath    string
	EndlinePath   string
	CrosswalkPath string
	Columns       Columns
	Location      *time.Location
}

// Loader reads the reference tables. It implements pipeline.ReferenceSource.
type Loader struct {
	cfg    Config
	remote Remote
}

// NewLoader creates a Loader. remote may be nil when every path is local.
func NewLoader(cfg Config, remote Remote) *Loader {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Loader{cfg: cfg, remote: remote}
}

// Roster reads the active roster. Rows without a reporting number are
// skipped; an unparseable training date is an error.
func (l *Loader) Roster(ctx context.Context) ([]model.RosterEntry, error) {
	if l.cfg.RosterPath == "" {
		return nil, eris.New("roster: roster path is not configured")
	}
	c := l.cfg.Columns
	table, err := l.table(ctx, l.cfg.RosterPath)
	if err != nil {
		return nil, eris.Wrap(err, "roster: read roster")
	}
	if err := table.Require(c.ReportingNumber, c.WorkerName, c.District); err != nil {
		return nil, eris.Wrap(err, "roster: roster columns")
	}

	entries := make([]model.RosterEntry, 0, len(table.Rows))
	for i, row := range table.Rows {
		number := table.Get(row, c.ReportingNumber)
		if number == "" {
			continue
		}
		e := model.RosterEntry{
			ReportingNumber: number,
			Name:            table.Get(row, c.WorkerName),
			District:        table.Get(row, c.District),
			Area:            table.Get(row, c.Area),
		}
		if raw := table.Get(row, c.TrainingDate); raw != "" {
			d, err := ParseTrainingDate(raw, l.cfg.Location)
			if err != nil {
				return nil, eris.Wrapf(err, "roster: row %d", i+2)
			}
			e.TrainingDate = &d
		}
		entries = append(entries, e)
	}
	zap.L().Info("roster: loaded roster", zap.Int("workers", len(entries)))
	return entries, nil
}

// Endline reads the endline roster. An empty path yields no entries.
func (l *Loader) Endline(ctx context.Context) ([]model.EndlineEntry, error) {
	if l.cfg.EndlinePath == "" {
		zap.L().Warn("roster: no endline configured")
		return nil, nil
	}
	c := l.cfg.Columns
	table, err := l.table(ctx, l.cfg.EndlinePath)
	if err != nil {
		return nil, eris.Wrap(err, "roster: read endline")
	}
	if err := table.Require(c.EndlineNumber, c.Endline); err != nil {
		return nil, eris.Wrap(err, "roster: endline columns")
	}

	entries := make([]model.EndlineEntry, 0, len(table.Rows))
	for i, row := range table.Rows {
		number, raw := table.Get(row, c.EndlineNumber), table.Get(row, c.Endline)
		if number == "" || raw == "" {
			continue
		}
		ts, err := ParseTimestamp(raw, l.cfg.Location)
		if err != nil {
			return nil, eris.Wrapf(err, "roster: endline row %d", i+2)
		}
		entries = append(entries, model.EndlineEntry{ReportingNumber: number, Endline: ts})
	}
	zap.L().Info("roster: loaded endline", zap.Int("workers", len(entries)))
	return entries, nil
}

// Crosswalk reads the renumbering history. An empty path yields no entries.
func (l *Loader) Crosswalk(ctx context.Context) ([]model.RenumberingEntry, error) {
	if l.cfg.CrosswalkPath == "" {
		zap.L().Warn("roster: no crosswalk configured, numbers pass through unchanged")
		return nil, nil
	}
	c := l.cfg.Columns
	table, err := l.table(ctx, l.cfg.CrosswalkPath)
	if err != nil {
		return nil, eris.Wrap(err, "roster: read crosswalk")
	}
	if err := table.Require(c.OldNumber, c.NewNumber); err != nil {
		return nil, eris.Wrap(err, "roster: crosswalk columns")
	}

	entries := make([]model.RenumberingEntry, 0, len(table.Rows))
	for _, row := range table.Rows {
		old, cur := table.Get(row, c.OldNumber), table.Get(row, c.NewNumber)
		if old == "" || cur == "" {
			continue
		}
		entries = append(entries, model.RenumberingEntry{OldNumber: old, NewNumber: cur})
	}
	zap.L().Info("roster: loaded crosswalk", zap.Int("changes", len(entries)))
	return entries, nil
}

func (l *Loader) table(ctx context.Context, path string) (*fetcher.Table, error) {
	local, cleanup, err := l.localize(ctx, path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return fetcher.ReadTable(local)
}

// localize returns a local path for path, downloading it first when it is
// an object storage URL.
func (l *Loader) localize(ctx context.Context, path string) (string, func(), error) {
	bucket, key, ok := objstore.ParseURL(path)
	if !ok {
		return path, func() {}, nil
	}
	if l.remote == nil {
		return "", nil, eris.Errorf("roster: %s needs object storage, which is not configured", path)
	}

	if key == "" || strings.HasSuffix(key, "/") {
		latest, err := l.remote.Latest(ctx, bucket, key)
		if err != nil {
			return "", nil, err
		}
		key = latest
	}

	dir, err := os.MkdirTemp("", "callcenter-roster-")
	if err != nil {
		return "", nil, eris.Wrap(err, "roster: create temp dir")
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	local, err := l.remote.Download(ctx, bucket, key, dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return local, cleanup, nil
}

// ParseTrainingDate parses a roster training date. The survey export writes
// day.month.two-digit-year; spreadsheets that kept the cell as a date give
// an Excel serial number instead.
func ParseTrainingDate(raw string, loc *time.Location) (time.Time, error) {
	return parseDate(raw, loc, "2.1.06", "2.1.2006", "2006-01-02", "1/2/06", "1/2/2006")
}

// ParseTimestamp parses an endline cutoff.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	return parseDate(raw, loc,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"2.1.2006 15:04",
		"2.1.2006",
		"2.1.06",
	)
}

func parseDate(raw string, loc *time.Location, layouts ...string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		t := xlsx.TimeFromExcelTime(serial, false)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	return time.Time{}, eris.Errorf("roster: unrecognised date %q", raw)
}
