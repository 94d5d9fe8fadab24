package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/healthworkers/callcenter/internal/fetcher"
	"github.com/healthworkers/callcenter/internal/store"
)

var importPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Append raw reports from an XLSX or CSV export to the report store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("import"); err != nil {
			return err
		}
		_, err := importReports(cmd.Context(), importPath)
		return err
	},
}

func importReports(ctx context.Context, path string) (int64, error) {
	loc, err := location()
	if err != nil {
		return 0, err
	}
	table, err := fetcher.ReadTable(path)
	if err != nil {
		return 0, eris.Wrap(err, "import: read reports")
	}
	reports, err := store.ReportsFromTable(table, loc)
	if err != nil {
		return 0, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	n, err := st.InsertReports(ctx, reports)
	if err != nil {
		return 0, eris.Wrap(err, "import: insert reports")
	}
	zap.L().Info("import complete", zap.Int64("reports", n), zap.String("path", path))
	return n, nil
}

func init() {
	importCmd.Flags().StringVar(&importPath, "file", "", "path to the report export (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
