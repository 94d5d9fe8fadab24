package pipeline

import (
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/model"
)

// MergeWorkerInfo left-joins messages to the roster on payment phone and
// attaches worker name, district, area and training date. Unmatched
// messages keep those fields nil.
func MergeWorkerInfo(messages []model.Message, roster []model.RosterEntry) []model.Message {
	zap.L().Debug("pipeline: merging worker info", zap.Int("roster", len(roster)))

	index := make(map[string]model.RosterEntry, len(roster))
	for _, r := range roster {
		if _, ok := index[r.ReportingNumber]; !ok {
			index[r.ReportingNumber] = r
		}
	}

	out := make([]model.Message, len(messages))
	for i, m := range messages {
		if r, ok := index[m.PaymentPhone]; ok {
			m.WorkerName = ptr(r.Name)
			m.District = ptr(r.District)
			m.Area = ptr(r.Area)
			m.TrainingDate = r.TrainingDate
		}
		out[i] = m
	}
	return out
}

// MergeEndline left-joins messages to the endline roster on payment phone
// and attaches the endline cutoff. AssignInvalidMessages reads only the
// Endline field set here, so this must run before it.
func MergeEndline(messages []model.Message, endline []model.EndlineEntry) []model.Message {
	zap.L().Debug("pipeline: merging endline", zap.Int("endline", len(endline)))

	index := make(map[string]model.EndlineEntry, len(endline))
	for _, e := range endline {
		if _, ok := index[e.ReportingNumber]; !ok {
			index[e.ReportingNumber] = e
		}
	}

	out := make([]model.Message, len(messages))
	for i, m := range messages {
		if e, ok := index[m.PaymentPhone]; ok {
			cutoff := e.Endline
			m.Endline = &cutoff
		}
		out[i] = m
	}
	return out
}

// ReportingNumbers returns the set of roster reporting numbers.
func ReportingNumbers(roster []model.RosterEntry) map[string]struct{} {
	set := make(map[string]struct{}, len(roster))
	for _, r := range roster {
		set[r.ReportingNumber] = struct{}{}
	}
	return set
}

// ptr returns nil for empty spreadsheet cells so they encode as null.
func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
