package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"discovery-backend/models"
	"discovery-backend/pipeline"
	"discovery-backend/profiles"
	"discovery-backend/taxonomy"

	"github.com/spf13/cobra"
)

// engineFlags are shared by every command that runs the pipeline
type engineFlags struct {
	casePath  string
	profiles  []string
	ceiling   int
	oversize  string
	household string
	workers   int
	asJSON    bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.casePath, "case", "", "Case JSON file (required)")
	fs.StringSliceVar(&f.profiles, "profile", nil, "Restrict to profiles (srogs, pods, admissions)")
	fs.IntVar(&f.ceiling, "ceiling", pipeline.DefaultCeiling, "Maximum interrogatories per set")
	fs.StringVar(&f.oversize, "oversize", string(pipeline.OversizeAccept), "First-set overflow policy (accept, reject)")
	fs.StringVar(&f.household, "household", string(pipeline.HouseholdIgnore), "Non-head plaintiff policy (ignore, merge)")
	fs.IntVar(&f.workers, "workers", 0, "Parallel pair/profile jobs (default: number of CPUs)")
	fs.BoolVar(&f.asJSON, "json", false, "Print JSON instead of text")
	_ = cmd.MarkFlagRequired("case")
}

func (f *engineFlags) options() (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	var err error
	if opts.Oversize, err = pipeline.ParseOversizePolicy(f.oversize); err != nil {
		return opts, err
	}
	if opts.Household, err = pipeline.ParseHouseholdPolicy(f.household); err != nil {
		return opts, err
	}
	if f.ceiling <= 0 {
		return opts, fmt.Errorf("--ceiling must be positive, got %d", f.ceiling)
	}
	opts.Ceiling = f.ceiling
	if f.workers > 0 {
		opts.Workers = f.workers
	}
	for _, p := range f.profiles {
		opts.Profiles = append(opts.Profiles, models.ProfileType(p))
	}
	return opts, nil
}

// run loads the case file and executes the pipeline
func (f *engineFlags) run() (*pipeline.CaseResult, error) {
	opts, err := f.options()
	if err != nil {
		return nil, err
	}
	c, err := loadCase(f.casePath)
	if err != nil {
		return nil, err
	}
	catalog, err := taxonomy.Default()
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	registry, err := profiles.Load()
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	return pipeline.NewEngine(catalog, registry, opts).Run(c)
}

func loadCase(path string) (*models.Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case: %w", err)
	}
	var c models.Case
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse case %s: %w", path, err)
	}
	return &c, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
