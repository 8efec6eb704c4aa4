package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/memdebug/snapshot"
)

func newShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <snapshot>",
		Short: "Print the heap dump of a snapshot",
		Long: `The show command prints the live allocations of a snapshot grouped
by call site, followed by the byte and allocation totals.

Example:
  memdump show heap.mdsn
  memdump show heap.mdsn --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := snapshot.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load snapshot: %w", err)
			}
			g.printVerbose(cmd, "Loaded %d entries taken at %s\n", len(s.Entries), s.Taken)

			out := cmd.OutOrStdout()
			if g.jsonOut {
				return printJSON(out, s)
			}
			return s.WriteHeap(out, g.reportOptions(out))
		},
	}
}
