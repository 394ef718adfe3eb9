package pipeline

import (
	"testing"

	"discovery-backend/models"
	"discovery-backend/profiles"
	"discovery-backend/taxonomy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testCaseID = uuid.MustParse("5b0c5d1e-7f7a-4c1e-9a55-1c2d3e4f5a6b")

func plaintiff(first, last, unit string, head bool, issues models.IssueSelection) models.Plaintiff {
	return models.Plaintiff{FirstName: first, LastName: last, UnitNumber: unit, IsHeadOfHousehold: head, Issues: issues}
}

func defendant(first, last string, owner, manager bool) models.Defendant {
	return models.Defendant{FirstName: first, LastName: last, IsOwner: owner, IsManager: manager}
}

// losAngelesCase is one tenant with rats and mold against one owner.
func losAngelesCase() *models.Case {
	return &models.Case{
		ID:              testCaseID,
		PropertyAddress: "1331 Yorkshire Pl",
		City:            "Los Angeles",
		State:           "CA",
		FilingCounty:    "Los Angeles",
		Plaintiffs: []models.Plaintiff{
			plaintiff("Maria", "Lopez", "4", true, models.IssueSelection{
				"vermin":    {"rats_mice"},
				"structure": {"mold_growth"},
			}),
		},
		Defendants: []models.Defendant{defendant("Sunset", "Holdings LLC", true, false)},
	}
}

// everythingCase selects every option of the catalog.
func everythingCase(t *testing.T) *models.Case {
	t.Helper()
	cat, err := taxonomy.Default()
	require.NoError(t, err)
	all := models.IssueSelection{}
	for _, c := range cat.Categories() {
		for _, o := range c.Options {
			all[c.Code] = append(all[c.Code], o.Code)
		}
	}
	c := losAngelesCase()
	c.Plaintiffs[0].Issues = all
	c.Defendants[0].IsManager = true
	return c
}

func testEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	cat, err := taxonomy.Default()
	require.NoError(t, err)
	return NewEngine(cat, profiles.MustLoad(), opts)
}

func mustProfile(t *testing.T, typ models.ProfileType) profiles.Profile {
	t.Helper()
	p, err := profiles.MustLoad().Get(typ)
	require.NoError(t, err)
	return p
}

func setNames(s models.InterrogatorySet) []string {
	names := make([]string, 0, len(s.Flags))
	for _, f := range s.Flags {
		names = append(names, f.Name)
	}
	return names
}

// requirePartition checks the properties every set list must satisfy.
func requirePartition(t *testing.T, ds *models.ProfiledDataset, sets []models.InterrogatorySet, ceiling int) {
	t.Helper()
	placed := map[string]int{}
	sum := 0
	for i, s := range sets {
		require.Equal(t, i+1, s.Number)
		setTotal := 0
		for _, f := range s.Flags {
			placed[f.Name]++
			setTotal += f.Count
		}
		require.Equal(t, setTotal, s.Total, "set %d total", s.Number)
		if !s.Oversized {
			require.LessOrEqual(t, s.Total, ceiling, "set %d", s.Number)
		}
		sum += s.Total
	}
	require.Equal(t, ds.Total, sum)
	require.Len(t, placed, len(ds.Flags))
	for name, n := range placed {
		require.Equal(t, 1, n, name)
	}
	if len(sets) == 0 {
		return
	}
	first := map[string]bool{}
	for _, name := range setNames(sets[0]) {
		first[name] = true
	}
	for _, f := range ds.Flags {
		for _, fso := range ds.FirstSetOnly {
			if f.Name == fso {
				require.True(t, first[f.Name], "%s must be in set 1", f.Name)
			}
		}
	}
}
