package pipeline

import (
	"sort"

	"discovery-backend/models"
)

// DefaultTopFlags is the number of ranked flags kept in a consolidated profile.
const DefaultTopFlags = 10

// Consolidate aggregates every dataset of profile t across a case. Datasets
// of another profile are skipped. The inputs are not modified.
func Consolidate(t models.ProfileType, datasets []*models.ProfiledDataset, topN int) *models.ConsolidatedProfile {
	if topN <= 0 {
		topN = DefaultTopFlags
	}
	cp := &models.ConsolidatedProfile{
		Profile:  t,
		Datasets: []models.DatasetSummary{},
		Flags:    []models.ConsolidatedFlag{},
		TopFlags: []models.ConsolidatedFlag{},
		Summary: models.ConsolidationSummary{
			FlagsInAllPairs:  []string{},
			FlagsInSomePairs: []string{},
		},
	}

	byName := make(map[string]*models.ConsolidatedFlag)
	for _, ds := range datasets {
		if ds == nil || ds.Profile != t {
			continue
		}
		name := ds.Pair.Name()
		cp.Datasets = append(cp.Datasets, models.DatasetSummary{
			PairName: name,
			Total:    ds.Total,
			Flags:    ds.FlagCounts(),
		})

		s := &cp.Summary
		if s.DatasetCount == 0 || ds.Total > s.MaxPairTotal {
			s.MaxPairTotal = ds.Total
		}
		if s.DatasetCount == 0 || ds.Total < s.MinPairTotal {
			s.MinPairTotal = ds.Total
		}
		s.DatasetCount++
		s.TotalInterrogatories += ds.Total

		for _, f := range ds.Flags {
			cf, ok := byName[f.Name]
			if !ok {
				cf = &models.ConsolidatedFlag{Name: f.Name, Position: f.Position}
				byName[f.Name] = cf
			}
			cf.Count += f.Count
			cf.PairCount++
			cf.PairNames = append(cf.PairNames, name)
		}
	}

	for _, cf := range byName {
		cp.Flags = append(cp.Flags, *cf)
	}
	sort.Slice(cp.Flags, func(i, j int) bool {
		if cp.Flags[i].Position != cp.Flags[j].Position {
			return cp.Flags[i].Position < cp.Flags[j].Position
		}
		return cp.Flags[i].Name < cp.Flags[j].Name
	})

	ranked := append([]models.ConsolidatedFlag(nil), cp.Flags...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	cp.TopFlags = append(cp.TopFlags, ranked...)

	s := &cp.Summary
	s.UniqueFlags = len(cp.Flags)
	if s.DatasetCount > 0 {
		s.AveragePerPair = float64(s.TotalInterrogatories) / float64(s.DatasetCount)
	}
	for _, cf := range cp.Flags {
		if cf.PairCount == s.DatasetCount {
			s.FlagsInAllPairs = append(s.FlagsInAllPairs, cf.Name)
		} else {
			s.FlagsInSomePairs = append(s.FlagsInSomePairs, cf.Name)
		}
	}
	return cp
}
