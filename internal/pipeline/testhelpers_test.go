package pipeline

import (
	"time"

	"github.com/healthworkers/callcenter/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func strPtr(s string) *string { return &s }

func report(serviceDate, patient, sender string, reported time.Time) model.RawReport {
	return model.RawReport{
		ServiceDate:  serviceDate,
		PatientName:  patient,
		PatientPhone: "0700000001",
		SenderPhone:  sender,
		ReportDate:   reported,
		ServiceCode:  "anc",
	}
}
