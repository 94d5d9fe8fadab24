package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/healthworkers/callcenter/internal/callcenter"
	"github.com/healthworkers/callcenter/internal/model"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Print each payment phone's reports, calls made and calls still needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("quota"); err != nil {
			return err
		}
		return printQuotas(cmd.Context(), outreachOptions(), os.Stdout)
	},
}

func printQuotas(ctx context.Context, opts callcenter.Options, w io.Writer) error {
	p, st, _, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	opts.DryRun = true
	_, _, summary, err := callcenter.NewRunner(p, nil, nil, opts).Select(ctx)
	if err != nil {
		return err
	}

	quotas := summary.Quotas
	if quotas == nil {
		quotas = []model.CallQuota{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(quotas)
}

func init() {
	rootCmd.AddCommand(quotaCmd)
}
