package pipeline

import (
	"fmt"
	"strconv"

	"discovery-backend/models"
)

// HouseholdPolicy decides what happens to issues selected by plaintiffs who
// are not head of household.
type HouseholdPolicy string

const (
	// HouseholdIgnore enumerates heads of household only; other plaintiffs'
	// selections are reported as unrepresented.
	HouseholdIgnore HouseholdPolicy = "ignore"
	// HouseholdMerge unions a non-head plaintiff's selections into the head
	// of household sharing the same unit number. It never adds pairs.
	HouseholdMerge HouseholdPolicy = "merge"
)

// ParseHouseholdPolicy validates a policy name; "" selects HouseholdIgnore.
func ParseHouseholdPolicy(s string) (HouseholdPolicy, error) {
	switch HouseholdPolicy(s) {
	case "", HouseholdIgnore:
		return HouseholdIgnore, nil
	case HouseholdMerge:
		return HouseholdMerge, nil
	default:
		return "", fmt.Errorf("unknown household policy %q", s)
	}
}

// EnumeratePairs builds one dataset per head-of-household plaintiff and
// defendant, plaintiff-major, both in input order.
func EnumeratePairs(c *models.Case, policy HouseholdPolicy) ([]models.PartyPairDataset, error) {
	if c == nil {
		return nil, &ValidationError{Err: ErrNilCase}
	}
	heads := c.HeadsOfHousehold()
	if len(heads) == 0 {
		return nil, &ValidationError{Err: ErrNoHeadOfHousehold}
	}
	if len(c.Defendants) == 0 {
		return nil, &ValidationError{Err: ErrNoDefendants}
	}

	var members map[int][]models.Plaintiff
	if policy == HouseholdMerge {
		members = householdMembers(c)
	}

	pairs := make([]models.PartyPairDataset, 0, len(heads)*len(c.Defendants))
	for i, head := range c.Plaintiffs {
		if !head.IsHeadOfHousehold {
			continue
		}
		issues := head.Issues.Clone()
		for _, member := range members[i] {
			issues = issues.Merge(member.Issues)
		}
		for _, def := range c.Defendants {
			pairs = append(pairs, models.PartyPairDataset{
				Index:           len(pairs),
				CaseID:          c.ID,
				PropertyAddress: c.PropertyAddress,
				City:            c.City,
				FilingCounty:    c.FilingCounty,
				FilingCity:      c.FilingCity,
				Plaintiff:       head,
				Defendant:       def,
				Issues:          issues.Clone(),
			})
		}
	}
	labelDuplicates(pairs)
	return pairs, nil
}

// labelDuplicates numbers pairs whose party names coincide, in pair order,
// so every pair of a case has a distinct name.
func labelDuplicates(pairs []models.PartyPairDataset) {
	total := make(map[string]int, len(pairs))
	for _, p := range pairs {
		total[p.BaseName()]++
	}
	seen := make(map[string]int, len(pairs))
	for i := range pairs {
		base := pairs[i].BaseName()
		if total[base] < 2 {
			continue
		}
		seen[base]++
		pairs[i].Label = base + " (" + strconv.Itoa(seen[base]) + ")"
	}
}

// householdMembers maps each head-of-household unit number to the non-head
// plaintiffs of that unit. When several heads share a unit, only the first
// in input order receives its members.
func householdMembers(c *models.Case) map[int][]models.Plaintiff {
	firstHead := make(map[string]int)
	for i, p := range c.Plaintiffs {
		if p.IsHeadOfHousehold && p.UnitNumber != "" {
			if _, ok := firstHead[p.UnitNumber]; !ok {
				firstHead[p.UnitNumber] = i
			}
		}
	}
	members := make(map[int][]models.Plaintiff)
	for _, p := range c.Plaintiffs {
		if p.IsHeadOfHousehold {
			continue
		}
		if head, ok := firstHead[p.UnitNumber]; ok {
			members[head] = append(members[head], p)
		}
	}
	return members
}

// UnrepresentedPlaintiffs lists non-head plaintiffs whose selected issues do
// not reach any pair under policy.
func UnrepresentedPlaintiffs(c *models.Case, policy HouseholdPolicy) []models.Plaintiff {
	if c == nil {
		return nil
	}
	headUnits := make(map[string]bool)
	for _, h := range c.HeadsOfHousehold() {
		if h.UnitNumber != "" {
			headUnits[h.UnitNumber] = true
		}
	}
	var out []models.Plaintiff
	for _, p := range c.Plaintiffs {
		if p.IsHeadOfHousehold || p.Issues.Empty() {
			continue
		}
		if policy == HouseholdMerge && p.UnitNumber != "" && headUnits[p.UnitNumber] {
			continue
		}
		out = append(out, p)
	}
	return out
}
