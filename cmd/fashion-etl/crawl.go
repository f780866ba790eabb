package main

import (
	"encoding/json"
	"os"

	"github.com/maltedev/fashion-etl/internal/etl"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawls the catalog and prints the raw records as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		crawler, cleanup, err := etl.BuildCrawler(cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		result := crawler.Crawl(cmd.Context())

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Products)
	},
}
