package callcenter

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/model"
	"github.com/healthworkers/callcenter/internal/pipeline"
)

// Enricher produces the enriched message set for one run.
type Enricher interface {
	Run(ctx context.Context) ([]model.Message, pipeline.Stats, error)
}

// Options configures a Runner.
type Options struct {
	Threshold      float64
	Since          time.Duration
	TrainingSample int
	TestDistrict   string
	DryRun         bool
	SkipTraining   bool
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:      0.2,
		Since:          4 * 7 * 24 * time.Hour,
		TrainingSample: 500,
		TestDistrict:   "Test",
	}
}

// Summary reports what one run selected and wrote.
type Summary struct {
	RunID     string            `json:"run_id"`
	Pipeline  pipeline.Stats    `json:"pipeline"`
	Eligible  int               `json:"eligible"`
	Phones    int               `json:"phones"`
	Needed    int               `json:"needed"`
	Selected  int               `json:"selected"`
	Districts map[string]int    `json:"districts"`
	Training  int               `json:"training"`
	DryRun    bool              `json:"dry_run"`
	Quotas    []model.CallQuota `json:"-"`
}

// Runner composes enrichment, quota, selection and distribution.
type Runner struct {
	enricher    Enricher
	distributor *Distributor
	rng         Shuffler
	now         func() time.Time
	opts        Options
}

// NewRunner creates a Runner. A nil rng uses a randomly seeded PCG source.
func NewRunner(enricher Enricher, sink QueueSink, rng Shuffler, opts Options) *Runner {
	if rng == nil {
		rng = NewRand()
	}
	return &Runner{
		enricher:    enricher,
		distributor: NewDistributor(sink),
		rng:         rng,
		now:         time.Now,
		opts:        opts,
	}
}

// NewRand returns a randomly seeded generator.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Select enriches, filters to the window and picks this run's calls.
func (r *Runner) Select(ctx context.Context) ([]model.Message, []model.Message, *Summary, error) {
	summary := &Summary{RunID: uuid.New().String(), DryRun: r.opts.DryRun}

	messages, stats, err := r.enricher.Run(ctx)
	if err != nil {
		return nil, nil, nil, eris.Wrap(err, "callcenter: enrich")
	}
	summary.Pipeline = stats

	window := Window(messages, r.now(), r.opts.Since)
	quotas := Quotas(window, r.opts.Threshold)
	picks := PickNeededCalls(quotas, window, r.rng)

	summary.Eligible = len(window)
	summary.Phones = len(quotas)
	summary.Quotas = quotas
	for _, q := range quotas {
		summary.Needed += max(q.Needed, 0)
	}
	summary.Selected = len(picks)

	return picks, Training(messages), summary, nil
}

// Run executes one full pass and writes the district and test queues.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	log := zap.L().With(zap.String("component", "callcenter"))

	picks, training, summary, err := r.Select(ctx)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("run_id", summary.RunID))
	log.Info("callcenter: selected calls",
		zap.Int("eligible", summary.Eligible),
		zap.Int("phones", summary.Phones),
		zap.Int("selected", summary.Selected),
	)

	batch := TrainingBatch(training, r.opts.TrainingSample, r.opts.TestDistrict, r.rng)
	if r.opts.SkipTraining {
		batch = nil
	}
	summary.Training = len(batch)

	if r.opts.DryRun {
		parts, _ := Partition(picks)
		summary.Districts = make(map[string]int, len(parts))
		for d, msgs := range parts {
			summary.Districts[d] = len(msgs)
		}
		log.Info("callcenter: dry run, queues untouched")
		return summary, nil
	}

	summary.Districts, err = r.distributor.Write(ctx, picks, batch)
	if err != nil {
		return nil, eris.Wrap(err, "callcenter: write queues")
	}
	log.Info("callcenter: wrote queues",
		zap.Int("districts", len(summary.Districts)),
		zap.String("test_district", r.opts.TestDistrict),
		zap.Int("training", len(batch)),
	)

	return summary, nil
}
