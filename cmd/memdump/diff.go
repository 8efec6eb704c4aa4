package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/memdebug/snapshot"
)

func newDiffCmd(g *globalFlags) *cobra.Command {
	var growthOnly bool

	cmd := &cobra.Command{
		Use:   "diff <before> <after>",
		Short: "Compare two snapshots per call site",
		Long: `The diff command compares two snapshots and prints the change in live
allocations and bytes for every call site, largest growth first.

Example:
  memdump diff before.mdsn after.mdsn
  memdump diff before.mdsn after.mdsn --growth-only --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := snapshot.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}
			after, err := snapshot.Load(args[1])
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[1], err)
			}

			deltas := snapshot.Diff(before, after)
			if growthOnly {
				kept := deltas[:0]
				for _, d := range deltas {
					if d.Bytes() > 0 || d.Count() > 0 {
						kept = append(kept, d)
					}
				}
				deltas = kept
			}

			out := cmd.OutOrStdout()
			if g.jsonOut {
				return printJSON(out, deltas)
			}
			return writeDeltas(out, deltas)
		},
	}
	cmd.Flags().BoolVar(&growthOnly, "growth-only", false, "Only show call sites that grew")
	return cmd
}

func writeDeltas(w io.Writer, deltas []snapshot.Delta) error {
	if len(deltas) == 0 {
		_, err := fmt.Fprintln(w, "No differences.")
		return err
	}
	for _, d := range deltas {
		if _, err := fmt.Fprintf(w, "%+d allocations %+d bytes in file: %s in function: %s() on line: %d\n",
			d.Count(), d.Bytes(), d.Site.File, d.Site.Function, d.Site.Line); err != nil {
			return err
		}
	}
	return nil
}
