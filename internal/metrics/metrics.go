// Package metrics records call-center run results for Prometheus. Runs are
// batch jobs, so results are pushed to a Pushgateway rather than scraped.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rotisserie/eris"

	"github.com/healthworkers/callcenter/internal/callcenter"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// MessagesTotal is the size of the enriched message set.
var MessagesTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "callcenter",
	Name:      "messages",
	Help:      "Enriched messages after deduplication",
})

// PipelineMessages breaks the enriched set down by classification.
var PipelineMessages = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "callcenter",
	Name:      "pipeline_messages",
	Help:      "Enriched messages by classification (training, invalid, unmatched)",
}, []string{"class"})

// DiscardedEvents counts events whose record or kind was unknown.
var DiscardedEvents = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "callcenter",
	Name:      "discarded_events",
	Help:      "Call outcome events that matched no message",
})

// EligibleMessages is the size of the recent, non-training window.
var EligibleMessages = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "callcenter",
	Name:      "eligible_messages",
	Help:      "Messages inside the outreach window",
})

// CallsNeeded is the sum of positive per-phone quotas.
var CallsNeeded = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "callcenter",
	Name:      "calls_needed",
	Help:      "Calls owed across all payment phones",
})

// CallsQueued counts calls written per district queue.
var CallsQueued = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "callcenter",
	Name:      "calls_queued",
	Help:      "Calls written to each district queue",
}, []string{"district"})

// TrainingQueued is the size of the test queue batch.
var TrainingQueued = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "callcenter",
	Name:      "training_queued",
	Help:      "Training messages written to the test queue",
})

// RunDurationSeconds is the wall time of the last run.
var RunDurationSeconds = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "callcenter",
	Name:      "run_duration_seconds",
	Help:      "Wall time of the last run",
})

// LastSuccess is the Unix time the last run finished without error.
var LastSuccess = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "callcenter",
	Name:      "last_success_timestamp_seconds",
	Help:      "Unix time of the last successful run",
})

// Record sets every gauge from s.
func Record(s *callcenter.Summary, elapsed time.Duration, finished time.Time) {
	MessagesTotal.Set(float64(s.Pipeline.Messages))
	PipelineMessages.WithLabelValues("training").Set(float64(s.Pipeline.Training))
	PipelineMessages.WithLabelValues("invalid").Set(float64(s.Pipeline.Invalid))
	PipelineMessages.WithLabelValues("unmatched").Set(float64(s.Pipeline.Unmatched))
	DiscardedEvents.Set(float64(s.Pipeline.DiscardedEvents))
	EligibleMessages.Set(float64(s.Eligible))
	CallsNeeded.Set(float64(s.Needed))

	CallsQueued.Reset()
	for district, n := range s.Districts {
		CallsQueued.WithLabelValues(district).Set(float64(n))
	}
	TrainingQueued.Set(float64(s.Training))
	RunDurationSeconds.Set(elapsed.Seconds())
	if !s.DryRun {
		LastSuccess.Set(float64(finished.Unix()))
	}
}

// Push sends the registry to the Pushgateway at url under job.
func Push(ctx context.Context, url, job string) error {
	err := push.New(url, job).Gatherer(Registry).PushContext(ctx)
	return eris.Wrapf(err, "metrics: push to %s", url)
}
