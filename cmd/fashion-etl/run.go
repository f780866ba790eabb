package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/maltedev/fashion-etl/internal/dataset"
	"github.com/maltedev/fashion-etl/internal/etl"
	"github.com/maltedev/fashion-etl/internal/storage"
	"github.com/spf13/cobra"
)

var (
	previewRows int
	skipLoad    bool
)

func init() {
	runCmd.Flags().IntVar(&previewRows, "preview", 0, "print the first N cleaned rows")
	runCmd.Flags().BoolVar(&skipLoad, "skip-load", false, "stop before writing to the sinks")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawls the catalog, transforms the data and loads it into every enabled sink.",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, cleanup, err := etl.Build(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		report, runErr := runner.Run(cmd.Context(), etl.RunOptions{SkipLoad: skipLoad})
		if report != nil {
			if previewRows > 0 && report.Table != nil {
				printPreview(report.Table, previewRows)
			}
			log.Info("run finished",
				"pages", report.Pages,
				"raw", report.RawCount,
				"clean", report.CleanCount,
				"no_data", report.NoData,
				"sinks", report.Sinks)
		}
		return runErr
	},
}

func printPreview(t *dataset.Table, n int) {
	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)

	header := table.Row{}
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	w.AppendHeader(header)

	for i := 0; i < t.Len() && i < n; i++ {
		row := table.Row{}
		for _, cell := range storage.FormatRow(t.Row(i)) {
			row = append(row, cell)
		}
		w.AppendRow(row)
	}

	w.AppendFooter(table.Row{"rows", t.Len()})
	w.SetStyle(table.StyleRounded)
	w.Render()
}
