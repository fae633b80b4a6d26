package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-api/internal/repository"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo records into empty collections",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			added, err := repository.Seed(cmd.Context(), e.store, time.Now())
			if err != nil {
				return err
			}
			if len(added) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to seed; every collection already has records")
				return nil
			}
			names := make([]string, 0, len(added))
			for name := range added {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", name, added[name])
			}
			return nil
		}),
	}
}
