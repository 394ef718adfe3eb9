package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var runFlags engineFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the interrogatory sets of every pair and profile",
	RunE:  runRun,
}

func init() {
	runFlags.register(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	result, err := runFlags.run()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if runFlags.asJSON {
		return writeJSON(out, result)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	for _, pr := range result.Pairs {
		fmt.Fprintf(out, "%s\n", pr.Name)
		for _, res := range pr.Profiles {
			if res.Failed() {
				fmt.Fprintf(out, "  %-10s FAILED: %v\n", res.Profile, res.Err)
				continue
			}
			fmt.Fprintf(out, "  %-10s %d interrogatories in %d set(s)\n", res.Profile, res.Dataset.Total, len(res.Sets))
			for _, s := range res.Sets {
				mark := ""
				if s.Oversized {
					mark = " (oversized)"
				}
				names := make([]string, 0, len(s.Flags))
				for _, f := range s.Flags {
					names = append(names, f.Name)
				}
				fmt.Fprintf(out, "    %s: %d%s\n", s.Filename(pr.Pair, res.Dataset.FilenameSuffix), s.Total, mark)
				fmt.Fprintf(out, "      %s\n", strings.Join(names, ", "))
			}
		}
	}
	if failures := result.Failures(); len(failures) > 0 {
		return fmt.Errorf("%d pair/profile combination(s) failed", len(failures))
	}
	return nil
}
