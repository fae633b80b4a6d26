package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCollectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"col"},
		Short:   "Inspect or reset stored collections",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List collections with their storage key and record count",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKEY\tRECORDS")
			for _, c := range e.store.Collections() {
				n, err := c.Count(cmd.Context())
				if err != nil {
					return fmt.Errorf("count %s: %w", c.Name(), err)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", c.Name(), c.Key(), n)
			}
			return w.Flush()
		}),
	}

	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Print the stored JSON of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			c, err := e.store.Collection(args[0])
			if err != nil {
				return err
			}
			raw, found, err := c.Raw(cmd.Context())
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintln(cmd.OutOrStdout(), "[]")
				return nil
			}
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, []byte(raw), "", "  "); err != nil {
				// Unparseable values are shown as stored.
				fmt.Fprintln(cmd.OutOrStdout(), raw)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return nil
		}),
	}

	var all bool
	reset := &cobra.Command{
		Use:   "reset [name]",
		Short: "Delete every record of a collection, or of all with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("pass exactly one collection name or --all")
			}
			targets := e.store.Collections()
			if !all {
				c, err := e.store.Collection(args[0])
				if err != nil {
					return err
				}
				targets = targets[:0]
				targets = append(targets, c)
			}
			for _, c := range targets {
				if err := c.Reset(cmd.Context()); err != nil {
					return fmt.Errorf("reset %s: %w", c.Name(), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", c.Name())
			}
			return nil
		}),
	}
	reset.Flags().BoolVar(&all, "all", false, "reset every collection")

	cmd.AddCommand(list, show, reset)
	return cmd
}
