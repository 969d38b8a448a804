package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slab-build/slab/internal/app"
)

func (c *CLI) newGCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Evict cached layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")
			olderThan, _ := cmd.Flags().GetDuration("older-than")

			if !all && olderThan == 0 {
				// Without a selection nothing would be evicted.
				return cmd.Help()
			}

			removed, err := c.app.GC(cmd.Context(), app.GCOptions{
				All:       all,
				OlderThan: olderThan,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "evicted %d layers\n", removed)
			return nil
		},
	}
	cmd.Flags().BoolP("all", "a", false, "Evict every cached layer")
	cmd.Flags().Duration("older-than", 0, "Evict layers unused for longer than this duration")
	return cmd
}
