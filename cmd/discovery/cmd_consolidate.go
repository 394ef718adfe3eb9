package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var consolidateFlags engineFlags

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Summarize each profile across every pair of a case",
	RunE:  runConsolidate,
}

func init() {
	consolidateFlags.register(consolidateCmd)
}

func runConsolidate(cmd *cobra.Command, _ []string) error {
	result, err := consolidateFlags.run()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if consolidateFlags.asJSON {
		return writeJSON(out, result.Consolidated)
	}

	for _, cp := range result.Consolidated {
		s := cp.Summary
		fmt.Fprintf(out, "%s\n", cp.Profile)
		fmt.Fprintf(out, "  Pairs:          %d\n", s.DatasetCount)
		fmt.Fprintf(out, "  Interrogatories: %d (avg %.1f, min %d, max %d)\n",
			s.TotalInterrogatories, s.AveragePerPair, s.MinPairTotal, s.MaxPairTotal)
		fmt.Fprintf(out, "  Flags:          %d unique, %d in every pair\n", s.UniqueFlags, len(s.FlagsInAllPairs))
		if len(cp.TopFlags) > 0 {
			fmt.Fprintf(out, "  Top flags:\n")
			for _, f := range cp.TopFlags {
				fmt.Fprintf(out, "    %-32s %4d  (%d pair(s))\n", f.Name, f.Count, f.PairCount)
			}
		}
	}
	return nil
}
