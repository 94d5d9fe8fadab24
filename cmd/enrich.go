package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/callcenter"
	"github.com/healthworkers/callcenter/internal/model"
	"github.com/healthworkers/callcenter/internal/objstore"
)

var enrichOut string

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Export the fully enriched message set as CSV",
	Long: "Writes every enriched message to CSV. --out takes a local path, \"-\" for stdout, " +
		"or s3://bucket/key, which uploads to key-YYYY-MM-DD_HH:MM.csv.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("enrich"); err != nil {
			return err
		}
		return exportEnriched(cmd.Context(), enrichOut, os.Stdout)
	},
}

func exportEnriched(ctx context.Context, out string, stdout io.Writer) error {
	p, st, obj, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	messages, stats, err := p.Run(ctx)
	if err != nil {
		return eris.Wrap(err, "enrich")
	}

	if bucket, prefix, ok := objstore.ParseURL(out); ok {
		if obj == nil {
			return eris.Errorf("enrich: %s needs storage.endpoint", out)
		}
		return uploadCSV(ctx, obj, bucket, callcenter.ExportKey(prefix, time.Now()), messages)
	}

	w := stdout
	if out != "-" && out != "" {
		f, err := os.Create(out)
		if err != nil {
			return eris.Wrapf(err, "enrich: create %s", out)
		}
		defer f.Close()
		w = f
	}
	if err := callcenter.WriteCSV(w, messages); err != nil {
		return err
	}
	zap.L().Info("enrich: exported messages", zap.Int("messages", stats.Messages), zap.String("out", out))
	return nil
}

func uploadCSV(ctx context.Context, obj *objstore.Client, bucket, key string, messages []model.Message) error {
	var buf bytes.Buffer
	if err := callcenter.WriteCSV(&buf, messages); err != nil {
		return err
	}
	return obj.Upload(ctx, bucket, key, "text/csv", &buf, int64(buf.Len()))
}

func init() {
	enrichCmd.Flags().StringVar(&enrichOut, "out", "-", "output path, - for stdout, or s3://bucket/key")
	rootCmd.AddCommand(enrichCmd)
}
