package pipeline

import (
	"fmt"
	"sort"

	"discovery-backend/models"
)

// DefaultCeiling is the maximum interrogatory count of one document set.
const DefaultCeiling = 120

// OversizePolicy decides what to do when the first-set-only bundle alone
// exceeds the ceiling. The bundle is never split across sets.
type OversizePolicy string

const (
	// OversizeAccept keeps the bundle whole in set 1 and marks it Oversized.
	OversizeAccept OversizePolicy = "accept"
	// OversizeReject fails the (pair, profile) with ErrFirstSetOverflow.
	OversizeReject OversizePolicy = "reject"
)

// ParseOversizePolicy validates a policy name; "" selects OversizeAccept.
func ParseOversizePolicy(s string) (OversizePolicy, error) {
	switch OversizePolicy(s) {
	case "", OversizeAccept:
		return OversizeAccept, nil
	case OversizeReject:
		return OversizeReject, nil
	default:
		return "", fmt.Errorf("unknown oversize policy %q", s)
	}
}

// SplitOptions configures Split.
type SplitOptions struct {
	Ceiling  int
	Oversize OversizePolicy
}

func (o SplitOptions) withDefaults() SplitOptions {
	if o.Ceiling <= 0 {
		o.Ceiling = DefaultCeiling
	}
	if o.Oversize == "" {
		o.Oversize = OversizeAccept
	}
	return o
}

// Split partitions ds into numbered sets. First-set-only flags open set 1
// together; the remaining flags fill sets greedily in declaration order,
// opening a new set whenever the next flag would push the current one over
// the ceiling. Every flag lands in exactly one set and the set totals sum to
// ds.Total. A dataset with no flags yields no sets.
func Split(ds *models.ProfiledDataset, opts SplitOptions) ([]models.InterrogatorySet, error) {
	opts = opts.withDefaults()
	if ds == nil || len(ds.Flags) == 0 {
		return nil, nil
	}

	firstOnly := make(map[string]bool, len(ds.FirstSetOnly))
	for _, name := range ds.FirstSetOnly {
		firstOnly[name] = true
	}

	ordered := append([]models.FlagCount(nil), ds.Flags...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	var bundle, repeatable []models.FlagCount
	for _, f := range ordered {
		if f.FirstSetOnly || firstOnly[f.Name] {
			bundle = append(bundle, f)
		} else {
			repeatable = append(repeatable, f)
		}
	}

	current := models.InterrogatorySet{Number: 1}
	for _, f := range bundle {
		current.Flags = append(current.Flags, f)
		current.Total += f.Count
	}
	if current.Total > opts.Ceiling {
		if opts.Oversize == OversizeReject {
			return nil, &ConfigError{
				Profile: ds.Profile,
				Pair:    ds.Pair.Name(),
				Err:     fmt.Errorf("%w: %d > %d", ErrFirstSetOverflow, current.Total, opts.Ceiling),
			}
		}
		current.Oversized = true
	}

	var sets []models.InterrogatorySet
	for _, f := range repeatable {
		if f.Count > opts.Ceiling {
			return nil, &ConfigError{
				Profile: ds.Profile,
				Pair:    ds.Pair.Name(),
				Flag:    f.Name,
				Err:     fmt.Errorf("%w: %d > %d", ErrFlagExceedsCeiling, f.Count, opts.Ceiling),
			}
		}
		if len(current.Flags) > 0 && current.Total+f.Count > opts.Ceiling {
			sets = append(sets, current)
			current = models.InterrogatorySet{Number: len(sets) + 1}
		}
		current.Flags = append(current.Flags, f)
		current.Total += f.Count
	}
	sets = append(sets, current)

	if err := checkPartition(ds, sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// checkPartition verifies the split kept every flag exactly once and
// preserved the total.
func checkPartition(ds *models.ProfiledDataset, sets []models.InterrogatorySet) error {
	seen := make(map[string]int, len(ds.Flags))
	total := 0
	for _, s := range sets {
		for _, f := range s.Flags {
			seen[f.Name]++
		}
		total += s.Total
	}
	if total != ds.Total {
		return fmt.Errorf("split of %s for %q: set totals %d != dataset total %d", ds.Profile, ds.Pair.Name(), total, ds.Total)
	}
	if len(seen) != len(ds.Flags) {
		return fmt.Errorf("split of %s for %q: %d distinct flags placed, want %d", ds.Profile, ds.Pair.Name(), len(seen), len(ds.Flags))
	}
	for name, n := range seen {
		if n != 1 {
			return fmt.Errorf("split of %s for %q: flag %q placed %d times", ds.Profile, ds.Pair.Name(), name, n)
		}
	}
	return nil
}
