package main

import (
	"fmt"

	"discovery-backend/models"
	"discovery-backend/profiles"

	"github.com/spf13/cobra"
)

var profilesFlags struct {
	typ string
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the discovery profiles and their count tables",
	RunE:  runProfiles,
}

func init() {
	profilesCmd.Flags().StringVar(&profilesFlags.typ, "type", "", "Show the count table of one profile")
}

func runProfiles(cmd *cobra.Command, _ []string) error {
	registry, err := profiles.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if profilesFlags.typ == "" {
		for _, p := range registry.All() {
			fmt.Fprintf(out, "%-10s %-40s %-24s %3d flags, first set: %v\n",
				p.Type(), p.Name(), p.Template(), p.Counts().Len(), p.FirstSetOnly())
		}
		fmt.Fprintf(out, "vocabulary: %d flags\n", len(registry.Vocabulary()))
		return nil
	}

	p, err := registry.Get(models.ProfileType(profilesFlags.typ))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%s, %q)\n", p.Name(), p.Template(), p.FilenameSuffix())
	for _, e := range p.Counts().Entries() {
		mark := ""
		if e.FirstSetOnly {
			mark = "  first set only"
		}
		fmt.Fprintf(out, "  %-40s %3d%s\n", e.Name, e.Count, mark)
	}
	if missing := profiles.Audit(p); len(missing) > 0 {
		fmt.Fprintf(out, "unmapped: %v\n", missing)
	}
	return nil
}
