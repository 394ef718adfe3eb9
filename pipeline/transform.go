package pipeline

import (
	"discovery-backend/models"
	"discovery-backend/profiles"
)

// Transform resolves flags against p's count table. Flags come out in the
// profile's declaration order, so the result depends only on its inputs.
func Transform(pair models.PartyPairDataset, flags models.FlagMap, p profiles.Profile) (*models.ProfiledDataset, error) {
	ds := &models.ProfiledDataset{
		Pair:           pair,
		Profile:        p.Type(),
		Template:       p.Template(),
		FilenameSuffix: p.FilenameSuffix(),
		FirstSetOnly:   p.FirstSetOnly(),
	}

	counts := p.Counts()
	for _, name := range flags.Names() {
		if _, _, ok := counts.Lookup(name); !ok {
			return nil, &ConfigError{Profile: p.Type(), Pair: pair.Name(), Flag: name, Err: ErrUnmappedFlag}
		}
	}

	for pos, e := range counts.Entries() {
		if !flags.Has(e.Name) {
			continue
		}
		ds.Flags = append(ds.Flags, models.FlagCount{
			Name:         e.Name,
			Count:        e.Count,
			Position:     pos,
			FirstSetOnly: e.FirstSetOnly,
		})
		ds.Total += e.Count
	}
	return ds, nil
}
