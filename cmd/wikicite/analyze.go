// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikicite/internal/analyze"
	"github.com/pdiddy/wikicite/internal/linkcheck"
	"github.com/pdiddy/wikicite/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Analyze the references of one article",
	Long: `Analyze reads article markup from a file or stdin and prints its citation
statistics. With --detailed every reference is printed with its facets, URLs,
normalized fields and identity. With --resolve identities are looked up in the
identity cache; the command fails if the cache is unreachable. With
--check-urls every distinct URL is probed for liveness.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("format", "yaml", "output format: yaml or json")
	analyzeCmd.Flags().Bool("detailed", false, "print every analyzed reference")
	analyzeCmd.Flags().Bool("check-urls", false, "probe every distinct URL")
	analyzeCmd.Flags().Bool("resolve", false, "look up identities in the identity cache")

	rootCmd.AddCommand(analyzeCmd)
}

// analyzeReport is the output of the analyze command.
type analyzeReport struct {
	Statistics types.ArticleStatistics   `json:"statistics" yaml:"statistics"`
	References []types.AnalyzedReference `json:"references,omitempty" yaml:"references,omitempty"`
	Resolved   int                       `json:"resolved,omitempty" yaml:"resolved,omitempty"`
	Links      []linkcheck.Result        `json:"links,omitempty" yaml:"links,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	detailed, _ := cmd.Flags().GetBool("detailed")
	checkURLs, _ := cmd.Flags().GetBool("check-urls")
	resolve, _ := cmd.Flags().GetBool("resolve")

	markup, err := readArticle(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	an, err := a.analyzer()
	if err != nil {
		return err
	}
	res, err := an.AnalyzeDetailed(markup, analyze.Options{CheckURLs: checkURLs})
	if err != nil {
		return err
	}

	report := analyzeReport{Statistics: res.Statistics}
	if resolve {
		c, err := a.openCache(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()
		if report.Resolved, err = analyze.Resolve(cmd.Context(), res, c); err != nil {
			return err
		}
	}
	if detailed {
		report.References = res.References
	}
	if checkURLs && len(res.Statistics.URLs) > 0 {
		checker := linkcheck.New(a.cfg.LinkCheck, a.logger.Named("linkcheck"))
		report.Links = checker.CheckAll(cmd.Context(), res.Statistics.URLs)
	}

	return writeOutput(cmd.OutOrStdout(), format, report)
}

// readArticle reads the named file, or stdin when no file or "-" is given.
func readArticle(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading article: %w", err)
	}
	return string(data), nil
}
