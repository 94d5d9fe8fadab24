package pipeline

import (
	"time"

	"github.com/healthworkers/callcenter/internal/model"
	"github.com/healthworkers/callcenter/internal/phone"
)

// Canonicalize rewrites the reference table join keys of in into their
// canonical form and moves every report timestamp into loc. Reports keep
// their phone numbers as received; the sender key is canonicalised when the
// payment phone is derived. A nil loc leaves timestamps as loaded.
func Canonicalize(in Inputs, region string, loc *time.Location) Inputs {
	out := Inputs{
		Reports:   make([]model.RawReport, len(in.Reports)),
		Events:    in.Events,
		Roster:    make([]model.RosterEntry, len(in.Roster)),
		Endline:   make([]model.EndlineEntry, len(in.Endline)),
		Crosswalk: make([]model.RenumberingEntry, len(in.Crosswalk)),
		Region:    region,
	}
	for i, r := range in.Reports {
		if loc != nil {
			r.ReportDate = r.ReportDate.In(loc)
		}
		out.Reports[i] = r
	}
	for i, r := range in.Roster {
		r.ReportingNumber = phone.Canonical(r.ReportingNumber, region)
		out.Roster[i] = r
	}
	for i, e := range in.Endline {
		e.ReportingNumber = phone.Canonical(e.ReportingNumber, region)
		out.Endline[i] = e
	}
	for i, c := range in.Crosswalk {
		c.OldNumber = phone.Canonical(c.OldNumber, region)
		c.NewNumber = phone.Canonical(c.NewNumber, region)
		out.Crosswalk[i] = c
	}
	return out
}
