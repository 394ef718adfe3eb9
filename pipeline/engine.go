// Package pipeline turns a case's parties and selected issues into numbered
// discovery document sets for each of the three profiles.
package pipeline

import (
	"log"
	"runtime"

	"discovery-backend/models"
	"discovery-backend/profiles"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Taxonomy validates that an option code belongs to a category code.
type Taxonomy interface {
	Validate(category, option string) error
}

// Options configures an Engine.
type Options struct {
	Ceiling   int
	Oversize  OversizePolicy
	Household HouseholdPolicy
	Workers   int
	TopFlags  int
	// Profiles restricts the run to these profile types; empty means all.
	Profiles []models.ProfileType
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		Ceiling:   DefaultCeiling,
		Oversize:  OversizeAccept,
		Household: HouseholdIgnore,
		Workers:   runtime.NumCPU(),
		TopFlags:  DefaultTopFlags,
	}
}

// Engine runs the discovery pipeline. It holds only immutable configuration
// and is safe for concurrent use.
type Engine struct {
	taxonomy Taxonomy
	registry *profiles.Registry
	opts     Options
}

// NewEngine creates an engine over the given taxonomy and profile registry.
func NewEngine(taxonomy Taxonomy, registry *profiles.Registry, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Household == "" {
		opts.Household = HouseholdIgnore
	}
	return &Engine{taxonomy: taxonomy, registry: registry, opts: opts}
}

// Options returns the engine's configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// ProfileResult is the outcome of one (pair, profile).
type ProfileResult struct {
	Profile models.ProfileType        `json:"profile"`
	Dataset *models.ProfiledDataset   `json:"dataset,omitempty"`
	Flags   models.FlagMap            `json:"-"`
	Sets    []models.InterrogatorySet `json:"sets"`
	Err     error                     `json:"-"`
	Error   string                    `json:"error,omitempty"`
}

// Failed reports whether this (pair, profile) produced no sets.
func (r ProfileResult) Failed() bool {
	return r.Err != nil
}

// PairResult holds every profile's outcome for one pair.
type PairResult struct {
	Pair     models.PartyPairDataset `json:"pair"`
	Name     string                  `json:"name"`
	Profiles []ProfileResult         `json:"profiles"`
}

// CaseResult is the full output of a pipeline run.
type CaseResult struct {
	CaseID       uuid.UUID                     `json:"case_id"`
	Pairs        []PairResult                  `json:"pairs"`
	Consolidated []*models.ConsolidatedProfile `json:"consolidated"`
	Warnings     []string                      `json:"warnings,omitempty"`
}

// Failures lists every (pair, profile) that failed.
func (r *CaseResult) Failures() models.PairFailures {
	var out models.PairFailures
	for _, pr := range r.Pairs {
		for _, res := range pr.Profiles {
			if res.Failed() {
				out = append(out, models.PairFailure{PairName: pr.Name, Profile: res.Profile, Error: res.Err.Error()})
			}
		}
	}
	return out
}

// Datasets returns the successful datasets of profile t in pair order.
func (r *CaseResult) Datasets(t models.ProfileType) []*models.ProfiledDataset {
	var out []*models.ProfiledDataset
	for _, pr := range r.Pairs {
		for _, res := range pr.Profiles {
			if res.Profile == t && !res.Failed() {
				out = append(out, res.Dataset)
			}
		}
	}
	return out
}

// Validate checks the case-wide inputs: every selected option must be known
// to the taxonomy, and there must be a head of household and a defendant.
func (e *Engine) Validate(c *models.Case) error {
	if c == nil {
		return &ValidationError{Err: ErrNilCase}
	}
	for _, p := range c.Plaintiffs {
		for _, cat := range p.Issues.Categories() {
			for _, opt := range p.Issues[cat] {
				if err := e.taxonomy.Validate(cat, opt); err != nil {
					return &ValidationError{Plaintiff: p.FullName(), Category: cat, Option: opt, Err: err}
				}
			}
		}
	}
	if len(c.HeadsOfHousehold()) == 0 {
		return &ValidationError{Err: ErrNoHeadOfHousehold}
	}
	if len(c.Defendants) == 0 {
		return &ValidationError{Err: ErrNoDefendants}
	}
	return nil
}

func (e *Engine) activeProfiles() ([]profiles.Profile, error) {
	if len(e.opts.Profiles) == 0 {
		return e.registry.All(), nil
	}
	var out []profiles.Profile
	for _, t := range e.opts.Profiles {
		p, err := e.registry.Get(t)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Run executes the pipeline for one case. Input validation errors fail the
// whole run; any other failure is confined to its (pair, profile) slot.
// Pairs and profiles run concurrently, but every result is written to a
// fixed slot so the output does not depend on scheduling.
func (e *Engine) Run(c *models.Case) (*CaseResult, error) {
	if err := e.Validate(c); err != nil {
		return nil, err
	}
	active, err := e.activeProfiles()
	if err != nil {
		return nil, err
	}
	pairs, err := EnumeratePairs(c, e.opts.Household)
	if err != nil {
		return nil, err
	}

	result := &CaseResult{CaseID: c.ID, Pairs: make([]PairResult, len(pairs))}
	for _, p := range UnrepresentedPlaintiffs(c, e.opts.Household) {
		result.Warnings = append(result.Warnings,
			"issues selected by "+p.FullName()+" are not represented: plaintiff is not head of household")
	}

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	for i := range pairs {
		result.Pairs[i] = PairResult{
			Pair:     pairs[i],
			Name:     pairs[i].Name(),
			Profiles: make([]ProfileResult, len(active)),
		}
		for j, prof := range active {
			i, j, prof := i, j, prof
			g.Go(func() error {
				result.Pairs[i].Profiles[j] = e.runProfile(pairs[i], prof)
				return nil
			})
		}
	}
	_ = g.Wait() // errors are kept per slot

	for _, prof := range active {
		result.Consolidated = append(result.Consolidated,
			Consolidate(prof.Type(), result.Datasets(prof.Type()), e.opts.TopFlags))
	}
	return result, nil
}

// runProfile runs one profile for one pair.
func (e *Engine) runProfile(pair models.PartyPairDataset, p profiles.Profile) ProfileResult {
	res := ProfileResult{Profile: p.Type()}
	fail := func(err error) ProfileResult {
		log.Printf("Warning: %s discovery for %q failed: %v", p.Type(), pair.Name(), err)
		res.Err = err
		res.Error = err.Error()
		return res
	}

	flags, err := DeriveFlags(pair, p)
	if err != nil {
		return fail(err)
	}
	res.Flags = flags

	ds, err := Transform(pair, flags, p)
	if err != nil {
		return fail(err)
	}
	res.Dataset = ds

	sets, err := Split(ds, SplitOptions{Ceiling: e.opts.Ceiling, Oversize: e.opts.Oversize})
	if err != nil {
		return fail(err)
	}
	res.Sets = sets
	return res
}
