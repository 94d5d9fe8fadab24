package callcenter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/healthworkers/callcenter/internal/model"
)

var exportHeader = []string{
	"_id", "ogServiceDate", "patientName", "patientPhone", "senderPhone", "timestamp", "code",
	"paymentPhone", "workerName", "chw_district", "chw_area", "training_date", "endline", "serviceDate",
	"training", "invalid", "called", "noConsent", "attempted",
}

// ExportKey names an export object: key followed by the minute it was taken.
func ExportKey(key string, now time.Time) string {
	return key + "-" + now.Format("2006-01-02_15:04") + ".csv"
}

// WriteCSV writes messages as CSV with a header row. Missing values are
// empty cells.
func WriteCSV(w io.Writer, messages []model.Message) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return eris.Wrap(err, "callcenter: write csv header")
	}
	for _, m := range messages {
		if err := cw.Write(exportRow(m)); err != nil {
			return eris.Wrapf(err, "callcenter: write csv row %s", m.ID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "callcenter: flush csv")
}

func exportRow(m model.Message) []string {
	return []string{
		m.ID,
		m.OGServiceDate,
		m.PatientName,
		m.PatientPhone,
		m.SenderPhone,
		formatTime(&m.Timestamp),
		m.Code,
		m.PaymentPhone,
		deref(m.WorkerName),
		m.DistrictName(),
		deref(m.Area),
		formatTime(m.TrainingDate),
		formatTime(m.Endline),
		formatTime(&m.ServiceDate),
		strconv.FormatBool(m.Training),
		strconv.FormatBool(m.Invalid),
		strconv.FormatBool(m.Called),
		strconv.FormatBool(m.NoConsent),
		strconv.FormatBool(m.Attempted),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
