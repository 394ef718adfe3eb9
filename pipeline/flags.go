package pipeline

import (
	"discovery-backend/models"
	"discovery-backend/profiles"
)

// DeriveFlags maps a pair's selected issues, defendant roles and property
// city onto p's flag vocabulary. Any derived flag without a count in p is a
// ConfigError; it is never dropped or counted as zero.
func DeriveFlags(pair models.PartyPairDataset, p profiles.Profile) (models.FlagMap, error) {
	flags := make(models.FlagMap)
	counts := p.Counts()
	emit := func(name string) error {
		if _, _, ok := counts.Lookup(name); !ok {
			return &ConfigError{Profile: p.Type(), Pair: pair.Name(), Flag: name, Err: ErrUnmappedFlag}
		}
		flags[name] = true
		return nil
	}

	selected := false
	for _, cat := range pair.Issues.Categories() {
		for _, opt := range pair.Issues[cat] {
			names, ok := p.Rules().Lookup(cat, opt)
			if !ok {
				return nil, &ConfigError{Profile: p.Type(), Pair: pair.Name(), Flag: cat + "/" + opt, Err: ErrNoRule}
			}
			selected = true
			for _, name := range names {
				if err := emit(name); err != nil {
					return nil, err
				}
			}
		}
	}

	if general := p.GeneralFlag(); selected && general != "" {
		if err := emit(general); err != nil {
			return nil, err
		}
	}

	for _, name := range p.RoleFlags(pair.Defendant) {
		if err := emit(name); err != nil {
			return nil, err
		}
	}

	if geo := p.GeographyFlag(pair.City); geo != "" {
		if err := emit(geo); err != nil {
			return nil, err
		}
	}

	return flags, nil
}
