package pipeline

import (
	"crypto/md5"
	"encoding/hex"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/healthworkers/callcenter/internal/model"
)

var upper = cases.Upper(language.Und)

// ConvertEntry renames raw report fields and assigns the message identifier.
// Patient name and service code are upper-cased before hashing.
func ConvertEntry(r model.RawReport) model.Entry {
	e := model.Entry{
		OGServiceDate: r.ServiceDate,
		PatientName:   upper.String(r.PatientName),
		PatientPhone:  r.PatientPhone,
		SenderPhone:   r.SenderPhone,
		Timestamp:     r.ReportDate,
		Code:          upper.String(r.ServiceCode),
	}
	e.ID = MakeID(e)
	return e
}

// MakeID returns the hex MD5 of service date text, patient name, patient
// phone and service code, concatenated in that order.
func MakeID(e model.Entry) string {
	sum := md5.Sum([]byte(e.OGServiceDate + e.PatientName + e.PatientPhone + e.Code))
	return hex.EncodeToString(sum[:])
}

// Dedupe keeps the first entry for every identifier, preserving order.
func Dedupe(entries []model.Entry) []model.Entry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
