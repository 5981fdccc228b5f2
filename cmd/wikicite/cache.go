// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Administer the identity cache",
	Long: `Cache inspects and edits the identity cache, which maps identity hashes to
external item ids. Entries are normally only added; delete and flush exist for
administrative repair.`,
}

var cacheGetCmd = &cobra.Command{
	Use:   "get <hash>",
	Short: "Print the external id stored for a hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		c, err := a.openCache(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		id, ok, err := c.Lookup(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no entry for %s", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var cacheSetCmd = &cobra.Command{
	Use:   "set <hash> <external-id>",
	Short: "Record an external id for a hash unless one exists",
	Long: `Set records hash → external-id. When the hash is already mapped the existing
id is kept and printed instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		c, err := a.openCache(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		id, inserted, err := c.Insert(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if inserted {
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %s -> %s\n", args[0], id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "exists   %s -> %s\n", args[0], id)
		}
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <hash>",
	Short: "Remove one entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		c, err := a.openCache(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()
		return c.Delete(cmd.Context(), args[0])
	},
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Remove every entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("flush removes every identity; pass --yes to confirm")
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		c, err := a.openCache(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()
		return c.Flush(cmd.Context())
	},
}

func init() {
	cacheFlushCmd.Flags().Bool("yes", false, "confirm flushing the whole cache")

	cacheCmd.AddCommand(cacheGetCmd, cacheSetCmd, cacheDeleteCmd, cacheFlushCmd)
	rootCmd.AddCommand(cacheCmd)
}
