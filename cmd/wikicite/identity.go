// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wikicite/pkg/types"
)

var identityCmd = &cobra.Command{
	Use:   "identity [template markup...]",
	Short: "Compute the identity hashes of one reference",
	Long: `Identity normalizes one citation template, given as arguments or on stdin,
and prints its normalized fields with the identity and website identity hashes.
With --lookup the identity is also looked up in the identity cache.`,
	RunE: runIdentity,
}

func init() {
	identityCmd.Flags().String("format", "yaml", "output format: yaml or json")
	identityCmd.Flags().Bool("lookup", false, "look up the identity in the identity cache")

	rootCmd.AddCommand(identityCmd)
}

// identityReport is the output of the identity command.
type identityReport struct {
	Reference       *types.NormalizedReference `json:"reference" yaml:"reference"`
	Anomalies       []types.Anomaly            `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
	Field           string                     `json:"field,omitempty" yaml:"field,omitempty"`
	Identity        string                     `json:"identity,omitempty" yaml:"identity,omitempty"`
	WebsiteIdentity string                     `json:"website_identity,omitempty" yaml:"website_identity,omitempty"`
	HasHash         bool                       `json:"has_hash" yaml:"has_hash"`
	ExternalID      string                     `json:"external_id,omitempty" yaml:"external_id,omitempty"`
}

func runIdentity(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	lookup, _ := cmd.Flags().GetBool("lookup")

	markup := strings.Join(args, " ")
	if markup == "" {
		var err error
		if markup, err = readArticle(cmd.InOrStdin(), nil); err != nil {
			return err
		}
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
	ref, anomalies, err := an.NormalizeTemplate(markup)
	if err != nil {
		return err
	}

	h := an.Hasher()
	report := identityReport{Reference: ref, Anomalies: anomalies}
	report.Field, _, _ = h.Selected(ref)
	report.Identity, report.HasHash = h.Identity(ref)
	report.WebsiteIdentity, _ = h.WebsiteIdentity(ref)

	if lookup && report.HasHash {
		c, err := a.openCache(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()
		if report.ExternalID, _, err = c.Lookup(cmd.Context(), report.Identity); err != nil {
			return fmt.Errorf("looking up identity: %w", err)
		}
	}
	return writeOutput(cmd.OutOrStdout(), format, report)
}
