package models

import (
	"sort"
	"strconv"

	"github.com/google/uuid"
)

// ProfileType identifies one of the three discovery document types
type ProfileType string

const (
	ProfileSROGs      ProfileType = "srogs"
	ProfilePODs       ProfileType = "pods"
	ProfileAdmissions ProfileType = "admissions"
)

// ProfileTypes lists every profile in generation order
var ProfileTypes = []ProfileType{ProfileSROGs, ProfilePODs, ProfileAdmissions}

// PartyPairDataset is one head-of-household plaintiff paired with one defendant
type PartyPairDataset struct {
	Index           int            `json:"index"`
	CaseID          uuid.UUID      `json:"case_id"`
	PropertyAddress string         `json:"property_address"`
	City            string         `json:"city"`
	FilingCounty    string         `json:"filing_county"`
	FilingCity      string         `json:"filing_city,omitempty"`
	Plaintiff       Plaintiff      `json:"plaintiff"`
	Defendant       Defendant      `json:"defendant"`
	Issues          IssueSelection `json:"issues"`
	// Label overrides the pair name when two pairs of a case share one
	Label string `json:"label,omitempty"`
}

// BaseName returns "Plaintiff v. Defendant" built from the party names
func (p PartyPairDataset) BaseName() string {
	return p.Plaintiff.FullName() + " v. " + p.Defendant.FullName()
}

// Name returns the pair label used in exports, e.g. "Jane Doe v. Acme LLC"
func (p PartyPairDataset) Name() string {
	if p.Label != "" {
		return p.Label
	}
	return p.BaseName()
}

// FlagMap holds the derived flags for one pair under one profile
type FlagMap map[string]bool

// Names returns the set flags in sorted order
func (f FlagMap) Names() []string {
	names := make([]string, 0, len(f))
	for name, on := range f {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is set
func (f FlagMap) Has(name string) bool {
	return f[name]
}

// FlagCount is a resolved flag with its interrogatory count
type FlagCount struct {
	Name         string `json:"name"`
	Count        int    `json:"count"`
	Position     int    `json:"position"` // declaration order within the profile
	FirstSetOnly bool   `json:"first_set_only,omitempty"`
}

// ProfiledDataset is a pair dataset resolved against one profile
type ProfiledDataset struct {
	Pair           PartyPairDataset `json:"pair"`
	Profile        ProfileType      `json:"profile"`
	Template       string           `json:"template"`
	FilenameSuffix string           `json:"filename_suffix"`
	Flags          []FlagCount      `json:"flags"`
	FirstSetOnly   []string         `json:"first_set_only"`
	Total          int              `json:"total"`
}

// FlagCounts returns the flag to count mapping
func (d *ProfiledDataset) FlagCounts() map[string]int {
	out := make(map[string]int, len(d.Flags))
	for _, f := range d.Flags {
		out[f.Name] = f.Count
	}
	return out
}

// InterrogatorySet is one numbered, count-bounded document set
type InterrogatorySet struct {
	Number    int         `json:"number"`
	Flags     []FlagCount `json:"flags"`
	Total     int         `json:"total"`
	Oversized bool        `json:"oversized,omitempty"`
}

// Filename returns the document name the renderer writes for this set
func (s InterrogatorySet) Filename(pair PartyPairDataset, suffix string) string {
	return pair.Name() + " - " + suffix + " Set " + strconv.Itoa(s.Number)
}

// DatasetSummary is one pair's row in a consolidated export
type DatasetSummary struct {
	PairName string         `json:"pair_name"`
	Total    int            `json:"total"`
	Flags    map[string]int `json:"flags"`
}

// ConsolidatedFlag aggregates one flag across every pair of a case
type ConsolidatedFlag struct {
	Name      string   `json:"name"`
	Count     int      `json:"count"`
	PairCount int      `json:"pair_count"`
	PairNames []string `json:"pair_names"`
	Position  int      `json:"-"`
}

// ConsolidationSummary holds case-wide statistics for one profile
type ConsolidationSummary struct {
	DatasetCount         int      `json:"dataset_count"`
	TotalInterrogatories int      `json:"total_interrogatories"`
	AveragePerPair       float64  `json:"average_per_pair"`
	UniqueFlags          int      `json:"unique_flags"`
	FlagsInAllPairs      []string `json:"flags_in_all_pairs"`
	FlagsInSomePairs     []string `json:"flags_in_some_pairs"`
	MaxPairTotal         int      `json:"max_pair_total"`
	MinPairTotal         int      `json:"min_pair_total"`
}

// ConsolidatedProfile aggregates every profiled dataset of one type across a case
type ConsolidatedProfile struct {
	Profile  ProfileType          `json:"profile"`
	Datasets []DatasetSummary     `json:"datasets"`
	Flags    []ConsolidatedFlag   `json:"flags"`
	TopFlags []ConsolidatedFlag   `json:"top_flags"`
	Summary  ConsolidationSummary `json:"summary"`
}
