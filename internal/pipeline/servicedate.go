package pipeline

import (
	"regexp"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/model"
)

var (
	nonDigits       = regexp.MustCompile(`[^\d]+`)
	leadingNonDigit = regexp.MustCompile(`^[^\d]`)
)

// serviceDateLayout is day.month.year with one or two digit day and month.
const serviceDateLayout = "2.1.2006"

// ErrMalformedDate marks a service date that parsed but is out of bounds.
var ErrMalformedDate = eris.New("malformed service date")

// ResolveServiceDate parses the free-text service date as day.month.year.
// The result is rejected when it is after reportedAt or before the training
// date. On any failure the report timestamp truncated to midnight is
// returned; failures are logged and never returned.
func ResolveServiceDate(raw string, reportedAt time.Time, trainingDate *time.Time) time.Time {
	date, err := parseServiceDate(raw, reportedAt, trainingDate)
	if err != nil {
		zap.L().Debug("pipeline: service date fallback",
			zap.String("service_date", raw),
			zap.Time("report_date", reportedAt),
			zap.Error(err),
		)
		return midnight(reportedAt)
	}
	return date
}

func parseServiceDate(raw string, reportedAt time.Time, trainingDate *time.Time) (time.Time, error) {
	cleaned := nonDigits.ReplaceAllString(raw, ".")
	cleaned = leadingNonDigit.ReplaceAllString(cleaned, "")

	date, err := time.ParseInLocation(serviceDateLayout, cleaned, reportedAt.Location())
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "parse %q", raw)
	}
	if date.After(reportedAt) {
		return time.Time{}, eris.Wrapf(ErrMalformedDate, "service date in future: %s", date.Format(time.DateOnly))
	}
	if trainingDate != nil && date.Before(*trainingDate) {
		return time.Time{}, eris.Wrapf(ErrMalformedDate, "service date too far in the past: %s", date.Format(time.DateOnly))
	}
	return date, nil
}

// AddServiceDate resolves the service date of every message.
func AddServiceDate(messages []model.Message) []model.Message {
	out := make([]model.Message, len(messages))
	for i, m := range messages {
		m.ServiceDate = ResolveServiceDate(m.OGServiceDate, m.Timestamp, m.TrainingDate)
		out[i] = m
	}
	return out
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
