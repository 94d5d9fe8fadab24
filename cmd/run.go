package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/callcenter"
	"github.com/healthworkers/callcenter/internal/metrics"
)

var (
	runThreshold    float64
	runWeeks        int
	runDryRun       bool
	runSkipTraining bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Select this period's calls and replace the district queues",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		opts := outreachOptions()
		if cmd.Flags().Changed("threshold") {
			opts.Threshold = runThreshold
		}
		if cmd.Flags().Changed("weeks") {
			opts.Since = time.Duration(runWeeks) * 7 * 24 * time.Hour
		}
		opts.DryRun = runDryRun
		opts.SkipTraining = runSkipTraining

		summary, err := runCallCenter(cmd.Context(), opts)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func runCallCenter(ctx context.Context, opts callcenter.Options) (*callcenter.Summary, error) {
	started := time.Now()

	p, st, _, err := initPipeline(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	var sink callcenter.QueueSink
	if !opts.DryRun {
		rs, err := initSink(ctx)
		if err != nil {
			return nil, err
		}
		defer rs.Close()
		sink = rs
	}

	summary, err := callcenter.NewRunner(p, sink, nil, opts).Run(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "call center run")
	}

	metrics.Record(summary, time.Since(started), time.Now())
	if cfg.Metrics.PushgatewayURL != "" {
		if err := metrics.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			zap.L().Warn("metrics push failed", zap.Error(err))
		}
	}

	zap.L().Info("call center run complete",
		zap.String("run_id", summary.RunID),
		zap.Int("selected", summary.Selected),
		zap.Int("training", summary.Training),
		zap.Bool("dry_run", summary.DryRun),
		zap.Duration("elapsed", time.Since(started)),
	)
	return summary, nil
}

func init() {
	runCmd.Flags().Float64Var(&runThreshold, "threshold", 0, "target share of each worker's reports to call (overrides outreach.threshold)")
	runCmd.Flags().IntVar(&runWeeks, "weeks", 0, "outreach window in weeks (overrides outreach.weeks_since)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "select calls without touching the queues")
	runCmd.Flags().BoolVar(&runSkipTraining, "skip-training", false, "do not rewrite the test queue")
	rootCmd.AddCommand(runCmd)
}
