// Package pipeline turns raw field-worker reports into canonical, fully
// tagged messages.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/healthworkers/callcenter/internal/model"
	"github.com/healthworkers/callcenter/internal/phone"
)

// ReportSource yields raw reports.
type ReportSource interface {
	RawReports(ctx context.Context) ([]model.RawReport, error)
}

// EventSource yields the call outcome stream.
type EventSource interface {
	Events(ctx context.Context) ([]model.Event, error)
}

// ReferenceSource yields the worker reference tables.
type ReferenceSource interface {
	Roster(ctx context.Context) ([]model.RosterEntry, error)
	Endline(ctx context.Context) ([]model.EndlineEntry, error)
	Crosswalk(ctx context.Context) ([]model.RenumberingEntry, error)
}

// Inputs holds everything one enrichment pass reads.
type Inputs struct {
	Reports   []model.RawReport
	Events    []model.Event
	Roster    []model.RosterEntry
	Endline   []model.EndlineEntry
	Crosswalk []model.RenumberingEntry

	// Region is the default phone region for sender join keys.
	Region string
}

// Stats counts what an enrichment pass did.
type Stats struct {
	Reports         int `json:"reports"`
	Messages        int `json:"messages"`
	Training        int `json:"training"`
	Invalid         int `json:"invalid"`
	Unmatched       int `json:"unmatched"`
	DiscardedEvents int `json:"discarded_events"`
}

// Enrich runs every stage over in. Roster and endline reporting numbers are
// translated through the crosswalk before joining.
func Enrich(in Inputs) ([]model.Message, Stats) {
	cw := NewCrosswalk(in.Crosswalk)
	roster := TranslateNumbers(in.Roster, cw,
		func(r model.RosterEntry) string { return r.ReportingNumber },
		func(r *model.RosterEntry, n string) { r.ReportingNumber = n })
	endline := TranslateNumbers(in.Endline, cw,
		func(e model.EndlineEntry) string { return e.ReportingNumber },
		func(e *model.EndlineEntry, n string) { e.ReportingNumber = n })

	entries := make([]model.Entry, len(in.Reports))
	for i, r := range in.Reports {
		entries[i] = ConvertEntry(r)
	}
	entries = Dedupe(entries)

	messages := make([]model.Message, len(entries))
	for i, e := range entries {
		messages[i] = model.NewMessage(e)
	}

	messages = TranslateNumbers(messages, cw,
		func(m model.Message) string { return phone.Canonical(m.SenderPhone, in.Region) },
		func(m *model.Message, n string) { m.PaymentPhone = n })
	messages = MergeWorkerInfo(messages, roster)
	messages = MergeEndline(messages, endline)
	messages = AddServiceDate(messages)
	reporting := ReportingNumbers(roster)
	messages = AssignTesterNumbers(messages, reporting)
	messages = AssignTrainingMessages(messages)
	messages = AssignInvalidMessages(messages)

	var stats Stats
	messages, stats.DiscardedEvents = AddEvents(messages, in.Events)

	stats.Reports = len(in.Reports)
	stats.Messages = len(messages)
	for _, m := range messages {
		if m.Training {
			stats.Training++
		}
		if m.Invalid {
			stats.Invalid++
		}
		if _, ok := reporting[m.PaymentPhone]; !ok {
			stats.Unmatched++
		}
	}
	return messages, stats
}

// Pipeline loads inputs from its sources and enriches them.
type Pipeline struct {
	reports    ReportSource
	events     EventSource
	references ReferenceSource
	region     string
	loc        *time.Location
}

// New creates a Pipeline over the given sources. region is the default
// phone region used to canonicalise join keys; empty keeps exact matching.
// Report timestamps are resolved in loc, or as loaded when loc is nil.
func New(reports ReportSource, events EventSource, references ReferenceSource, region string, loc *time.Location) *Pipeline {
	return &Pipeline{reports: reports, events: events, references: references, region: region, loc: loc}
}

// Load reads all sources concurrently. Any source error aborts the load.
func (p *Pipeline) Load(ctx context.Context) (Inputs, error) {
	var in Inputs
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		in.Reports, err = p.reports.RawReports(gCtx)
		return eris.Wrap(err, "pipeline: load raw reports")
	})
	g.Go(func() error {
		var err error
		in.Events, err = p.events.Events(gCtx)
		return eris.Wrap(err, "pipeline: load events")
	})
	g.Go(func() error {
		var err error
		in.Roster, err = p.references.Roster(gCtx)
		return eris.Wrap(err, "pipeline: load roster")
	})
	g.Go(func() error {
		var err error
		in.Endline, err = p.references.Endline(gCtx)
		return eris.Wrap(err, "pipeline: load endline")
	})
	g.Go(func() error {
		var err error
		in.Crosswalk, err = p.references.Crosswalk(gCtx)
		return eris.Wrap(err, "pipeline: load crosswalk")
	})

	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

// Run loads every source and returns the enriched message set.
func (p *Pipeline) Run(ctx context.Context) ([]model.Message, Stats, error) {
	in, err := p.Load(ctx)
	if err != nil {
		return nil, Stats{}, err
	}

	zap.L().Info("pipeline: loaded sources",
		zap.Int("reports", len(in.Reports)),
		zap.Int("events", len(in.Events)),
		zap.Int("roster", len(in.Roster)),
		zap.Int("endline", len(in.Endline)),
		zap.Int("crosswalk", len(in.Crosswalk)),
	)

	messages, stats := Enrich(Canonicalize(in, p.region, p.loc))
	zap.L().Info("pipeline: enriched messages",
		zap.Int("messages", stats.Messages),
		zap.Int("training", stats.Training),
		zap.Int("invalid", stats.Invalid),
		zap.Int("discarded_events", stats.DiscardedEvents),
	)
	return messages, stats, nil
}
