// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wikicite/internal/analyze"
	"github.com/pdiddy/wikicite/internal/statsstore"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze every article in a directory",
	Long: `Batch analyzes every *.wiki and *.txt file of the input directory and writes
one statistics record per article to the configured sink (a local directory or
an S3 bucket). With the file sink, articles whose statistics are newer than the
source are skipped. Per-article failures are reported and counted; an identity
cache outage with --resolve stops the run.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("input-dir", "", "directory of article files (default: batch.input_dir)")
	batchCmd.Flags().Int("workers", 0, "articles analyzed concurrently (default: GOMAXPROCS)")
	batchCmd.Flags().Bool("check-urls", false, "include the distinct URL list in each record")
	batchCmd.Flags().Bool("resolve", false, "look up identities in the identity cache")
	viper.BindPFlag("batch.input_dir", batchCmd.Flags().Lookup("input-dir"))
	viper.BindPFlag("batch.workers", batchCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	checkURLs, _ := cmd.Flags().GetBool("check-urls")
	resolve, _ := cmd.Flags().GetBool("resolve")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	an, err := a.analyzer()
	if err != nil {
		return err
	}
	sink, err := statsstore.Open(cmd.Context(), a.cfg.Stats)
	if err != nil {
		return fmt.Errorf("opening statistics sink: %w", err)
	}

	opts := analyze.BatchOptions{
		Options: analyze.Options{CheckURLs: checkURLs},
		Workers: a.cfg.Batch.Workers,
	}
	if resolve {
		c, err := a.openCache(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()
		opts.Cache = c
	}

	out := cmd.OutOrStdout()
	summary, err := an.AnalyzeAll(cmd.Context(), a.cfg.Batch.InputDir, sink, opts, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d analyzed, %d skipped, %d failed (%d total)\n",
		summary.Analyzed, summary.Skipped, summary.Failed, summary.Total())
	if summary.HasFailures() {
		return fmt.Errorf("%d article(s) failed analysis", summary.Failed)
	}
	return nil
}
