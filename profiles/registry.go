package profiles

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"discovery-backend/models"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml srogs.yaml pods.yaml admissions.yaml
var definitionFS embed.FS

var (
	ErrUnknownProfile    = errors.New("unknown discovery profile")
	ErrInvalidDefinition = errors.New("invalid profile definition")
)

type rulesFile struct {
	Categories []struct {
		Code    string              `yaml:"code"`
		Flag    string              `yaml:"flag"`
		Options map[string][]string `yaml:"options"`
	} `yaml:"categories"`
}

type profileFile struct {
	Type               models.ProfileType  `yaml:"type"`
	Name               string              `yaml:"name"`
	Template           string              `yaml:"template"`
	FilenameSuffix     string              `yaml:"filename_suffix"`
	GeneralFlag        string              `yaml:"general_flag"`
	Geography          bool                `yaml:"geography"`
	CollapseCategories []string            `yaml:"collapse_categories"`
	Overrides          map[string][]string `yaml:"overrides"`
	Flags              []CountEntry        `yaml:"flags"`
}

// Registry holds the loaded profiles and the fixed flag vocabulary.
type Registry struct {
	profiles   map[models.ProfileType]Profile
	vocabulary map[string]bool
}

// Load parses the embedded definitions and requires all three profiles.
func Load() (*Registry, error) {
	rules, err := definitionFS.ReadFile("rules.yaml")
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var defs [][]byte
	for _, t := range models.ProfileTypes {
		data, err := definitionFS.ReadFile(string(t) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("read profile %s: %w", t, err)
		}
		defs = append(defs, data)
	}
	r, err := Parse(rules, defs...)
	if err != nil {
		return nil, err
	}
	for _, t := range models.ProfileTypes {
		if _, ok := r.profiles[t]; !ok {
			return nil, fmt.Errorf("%w: %s not defined", ErrUnknownProfile, t)
		}
	}
	return r, nil
}

// MustLoad is Load for process start-up; it panics on a broken definition.
func MustLoad() *Registry {
	r, err := Load()
	if err != nil {
		panic(err)
	}
	return r
}

// Parse builds a registry from a base rule table and one or more profile
// definitions.
func Parse(rulesYAML []byte, profileYAMLs ...[]byte) (*Registry, error) {
	var rf rulesFile
	if err := yaml.Unmarshal(rulesYAML, &rf); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	r := &Registry{
		profiles:   make(map[models.ProfileType]Profile, len(profileYAMLs)),
		vocabulary: make(map[string]bool),
	}
	for _, f := range specialFlags() {
		r.vocabulary[f] = true
	}
	base := make(map[string]categoryRule, len(rf.Categories))
	for _, cat := range rf.Categories {
		if cat.Code == "" {
			return nil, fmt.Errorf("%w: rule category with empty code", ErrInvalidDefinition)
		}
		if _, dup := base[cat.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate rule category %q", ErrInvalidDefinition, cat.Code)
		}
		if cat.Flag != "" {
			r.vocabulary[cat.Flag] = true
		}
		for _, flags := range cat.Options {
			for _, f := range flags {
				r.vocabulary[f] = true
			}
		}
		base[cat.Code] = categoryRule{flag: cat.Flag, options: cat.Options}
	}

	for _, data := range profileYAMLs {
		var pf profileFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parse profile: %w", err)
		}
		p, err := r.build(pf, base)
		if err != nil {
			return nil, err
		}
		if _, dup := r.profiles[p.Type()]; dup {
			return nil, fmt.Errorf("%w: profile %s defined twice", ErrInvalidDefinition, p.Type())
		}
		r.profiles[p.Type()] = p
	}
	return r, nil
}

func (r *Registry) build(pf profileFile, base map[string]categoryRule) (Profile, error) {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidDefinition, pf.Type, fmt.Sprintf(format, args...))
	}
	if pf.Type == "" {
		return nil, fmt.Errorf("%w: profile without type", ErrInvalidDefinition)
	}
	if pf.Template == "" || pf.FilenameSuffix == "" {
		return nil, fail("template and filename_suffix are required")
	}
	if len(pf.Flags) == 0 {
		return nil, fail("empty count table")
	}

	var firstSetOnly []string
	seen := make(map[string]bool, len(pf.Flags))
	for _, e := range pf.Flags {
		switch {
		case e.Name == "":
			return nil, fail("count entry with empty name")
		case seen[e.Name]:
			return nil, fail("flag %q listed twice", e.Name)
		case e.Count <= 0:
			return nil, fail("flag %q has non-positive count %d", e.Name, e.Count)
		case !r.vocabulary[e.Name]:
			return nil, fail("flag %q is not in the vocabulary", e.Name)
		}
		seen[e.Name] = true
		if e.FirstSetOnly {
			firstSetOnly = append(firstSetOnly, e.Name)
		}
	}
	if pf.GeneralFlag != "" && !seen[pf.GeneralFlag] {
		return nil, fail("general flag %q has no count", pf.GeneralFlag)
	}

	rules, err := r.profileRules(pf, base)
	if err != nil {
		return nil, fail("%v", err)
	}

	def := definition{
		typ:          pf.Type,
		name:         pf.Name,
		template:     pf.Template,
		suffix:       pf.FilenameSuffix,
		general:      pf.GeneralFlag,
		rules:        rules,
		counts:       newCountTable(pf.Flags),
		firstSetOnly: firstSetOnly,
	}

	switch pf.Type {
	case models.ProfileSROGs:
		return &SROGs{definition: def}, nil
	case models.ProfilePODs:
		if pf.GeneralFlag != "" {
			return nil, fail("production of documents has no general flag")
		}
		return &ProductionOfDocuments{definition: def}, nil
	case models.ProfileAdmissions:
		a := &Admissions{definition: def, geography: map[string]string{}}
		if pf.Geography {
			for _, c := range GeographyCities {
				a.geography[c.Name] = c.Flag
			}
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, pf.Type)
	}
}

// profileRules copies the base table and applies collapses and overrides.
func (r *Registry) profileRules(pf profileFile, base map[string]categoryRule) (RuleTable, error) {
	rt := RuleTable{categories: make(map[string]categoryRule, len(base))}
	for code, cat := range base {
		opts := make(map[string][]string, len(cat.options))
		for opt, flags := range cat.options {
			opts[opt] = append([]string(nil), flags...)
		}
		rt.categories[code] = categoryRule{flag: cat.flag, options: opts}
	}

	for _, code := range pf.CollapseCategories {
		cat, ok := rt.categories[code]
		if !ok {
			return RuleTable{}, fmt.Errorf("collapse of unknown category %q", code)
		}
		if cat.flag == "" {
			return RuleTable{}, fmt.Errorf("category %q has no category flag to collapse into", code)
		}
		for opt := range cat.options {
			cat.options[opt] = nil
		}
	}

	keys := make([]string, 0, len(pf.Overrides))
	for k := range pf.Overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		code, opt, ok := strings.Cut(key, "/")
		if !ok {
			return RuleTable{}, fmt.Errorf("override key %q is not category/option", key)
		}
		cat, found := rt.categories[code]
		if !found {
			return RuleTable{}, fmt.Errorf("override of unknown category %q", code)
		}
		if _, found := cat.options[opt]; !found {
			return RuleTable{}, fmt.Errorf("override of unknown option %q", key)
		}
		for _, f := range pf.Overrides[key] {
			if !r.vocabulary[f] {
				return RuleTable{}, fmt.Errorf("override %q uses flag %q outside the vocabulary", key, f)
			}
		}
		cat.options[opt] = append([]string(nil), pf.Overrides[key]...)
	}
	return rt, nil
}

// Get returns the profile for t.
func (r *Registry) Get(t models.ProfileType) (Profile, error) {
	p, ok := r.profiles[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, t)
	}
	return p, nil
}

// All returns the loaded profiles in generation order.
func (r *Registry) All() []Profile {
	var out []Profile
	for _, t := range models.ProfileTypes {
		if p, ok := r.profiles[t]; ok {
			out = append(out, p)
		}
	}
	return out
}

// InVocabulary reports whether name is a known flag.
func (r *Registry) InVocabulary(name string) bool {
	return r.vocabulary[name]
}

// Vocabulary returns every known flag name, sorted.
func (r *Registry) Vocabulary() []string {
	out := make([]string, 0, len(r.vocabulary))
	for f := range r.vocabulary {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Audit lists the flags p can derive that have no count. A non-empty result
// means derivation will fail for any pair that selects the offending issue.
func Audit(p Profile) []string {
	var missing []string
	check := func(f string) {
		if _, _, ok := p.Counts().Lookup(f); !ok && !contains(missing, f) {
			missing = append(missing, f)
		}
	}
	for _, f := range p.Rules().Flags() {
		check(f)
	}
	if g := p.GeneralFlag(); g != "" {
		check(g)
	}
	for _, f := range p.RoleFlags(models.Defendant{IsOwner: true, IsManager: true}) {
		check(f)
	}
	for _, c := range GeographyCities {
		if f := p.GeographyFlag(c.Name); f != "" {
			check(f)
		}
	}
	sort.Strings(missing)
	return missing
}
