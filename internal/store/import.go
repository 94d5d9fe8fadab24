package store

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/fetcher"
	"github.com/healthworkers/callcenter/internal/model"
	"github.com/healthworkers/callcenter/internal/roster"
)

// Column names of a raw report export.
const (
	ColServiceDate  = "Service_Date"
	ColPatientName  = "Patient_Name"
	ColPatientPhone = "Patient_Phone_Number"
	ColSenderPhone  = "Sender_Phone_Number"
	ColReportDate   = "Report_Date"
	ColServiceCode  = "Service_Code"
)

// ReportsFromTable converts an exported report table. Rows without a report
// date are skipped.
func ReportsFromTable(t *fetcher.Table, loc *time.Location) ([]model.RawReport, error) {
	if err := t.Require(ColServiceDate, ColPatientName, ColPatientPhone, ColSenderPhone, ColReportDate, ColServiceCode); err != nil {
		return nil, eris.Wrap(err, "store: report columns")
	}

	reports := make([]model.RawReport, 0, len(t.Rows))
	skipped := 0
	for i, row := range t.Rows {
		raw := t.Get(row, ColReportDate)
		if raw == "" {
			skipped++
			continue
		}
		reported, err := roster.ParseTimestamp(raw, loc)
		if err != nil {
			return nil, eris.Wrapf(err, "store: report row %d", i+2)
		}
		reports = append(reports, model.RawReport{
			ServiceDate:  t.Get(row, ColServiceDate),
			PatientName:  t.Get(row, ColPatientName),
			PatientPhone: t.Get(row, ColPatientPhone),
			SenderPhone:  t.Get(row, ColSenderPhone),
			ReportDate:   reported,
			ServiceCode:  t.Get(row, ColServiceCode),
		})
	}
	if skipped > 0 {
		zap.L().Warn("store: skipped reports without a report date", zap.Int("rows", skipped))
	}
	return reports, nil
}
