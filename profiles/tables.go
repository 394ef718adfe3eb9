package profiles

import "sort"

// CountEntry is one row of a profile's interrogatory-count table.
type CountEntry struct {
	Name         string `yaml:"name" json:"name"`
	Count        int    `yaml:"count" json:"count"`
	FirstSetOnly bool   `yaml:"first_set_only" json:"first_set_only,omitempty"`
}

// CountTable maps flags to interrogatory counts and remembers declaration order.
type CountTable struct {
	entries []CountEntry
	index   map[string]int
}

func newCountTable(entries []CountEntry) CountTable {
	t := CountTable{
		entries: append([]CountEntry(nil), entries...),
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range t.entries {
		t.index[e.Name] = i
	}
	return t
}

// Lookup returns the entry for name and its declaration position.
func (t CountTable) Lookup(name string) (CountEntry, int, bool) {
	i, ok := t.index[name]
	if !ok {
		return CountEntry{}, -1, false
	}
	return t.entries[i], i, true
}

// Entries returns the table rows in declaration order.
func (t CountTable) Entries() []CountEntry {
	return append([]CountEntry(nil), t.entries...)
}

// Len returns the number of flags in the table.
func (t CountTable) Len() int {
	return len(t.entries)
}

// RuleTable maps a selected (category, option) to flag names.
type RuleTable struct {
	categories map[string]categoryRule
}

type categoryRule struct {
	flag    string
	options map[string][]string
}

// Lookup returns the flags an option produces, followed by its category
// flag when the category defines one. ok is false for unknown pairs.
func (r RuleTable) Lookup(category, option string) (flags []string, ok bool) {
	cat, found := r.categories[category]
	if !found {
		return nil, false
	}
	optFlags, found := cat.options[option]
	if !found {
		return nil, false
	}
	flags = append(flags, optFlags...)
	if cat.flag != "" && !contains(flags, cat.flag) {
		flags = append(flags, cat.flag)
	}
	return flags, true
}

// Flags returns every flag the table can produce.
func (r RuleTable) Flags() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(f string) {
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, cat := range r.categories {
		add(cat.flag)
		for _, flags := range cat.options {
			for _, f := range flags {
				add(f)
			}
		}
	}
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
