package models

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IssueSelection maps a category code to the option codes a plaintiff selected in it
type IssueSelection map[string][]string

// Value implements driver.Valuer for JSONB
func (s IssueSelection) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(map[string][]string{})
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *IssueSelection) Scan(value interface{}) error {
	if value == nil {
		*s = make(IssueSelection)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*s = make(IssueSelection)
		return nil
	}

	if len(bytes) == 0 {
		*s = make(IssueSelection)
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// Categories returns the selected category codes in sorted order
func (s IssueSelection) Categories() []string {
	cats := make([]string, 0, len(s))
	for cat, opts := range s {
		if len(opts) > 0 {
			cats = append(cats, cat)
		}
	}
	sort.Strings(cats)
	return cats
}

// Empty reports whether no option is selected in any category
func (s IssueSelection) Empty() bool {
	for _, opts := range s {
		if len(opts) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy with options de-duplicated and sorted
func (s IssueSelection) Clone() IssueSelection {
	out := make(IssueSelection, len(s))
	for cat, opts := range s {
		if len(opts) == 0 {
			continue
		}
		out[cat] = uniqueSorted(opts)
	}
	return out
}

// Merge returns the union of s and other
func (s IssueSelection) Merge(other IssueSelection) IssueSelection {
	out := s.Clone()
	for cat, opts := range other {
		if len(opts) == 0 {
			continue
		}
		out[cat] = uniqueSorted(append(append([]string{}, out[cat]...), opts...))
	}
	return out
}

func uniqueSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Plaintiff represents a tenant party on a case
type Plaintiff struct {
	ID                uuid.UUID      `json:"id"`
	CaseID            uuid.UUID      `json:"case_id"`
	FirstName         string         `json:"first_name"`
	LastName          string         `json:"last_name"`
	UnitNumber        string         `json:"unit_number,omitempty"`
	IsHeadOfHousehold bool           `json:"is_head_of_household"`
	Issues            IssueSelection `json:"issues"`
	CreatedAt         time.Time      `json:"created_at"`
}

// FullName returns the display name used in pair names and exports
func (p Plaintiff) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Defendant represents a landlord-side party on a case
type Defendant struct {
	ID         uuid.UUID `json:"id"`
	CaseID     uuid.UUID `json:"case_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	EntityType string    `json:"entity_type,omitempty"` // "individual", "llc", "corporation", ...
	IsOwner    bool      `json:"is_owner"`
	IsManager  bool      `json:"is_manager"`
	CreatedAt  time.Time `json:"created_at"`
}

// FullName returns the display name used in pair names and exports
func (d Defendant) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// Case represents a habitability case with its normalized parties
type Case struct {
	ID              uuid.UUID   `json:"id"`
	PropertyAddress string      `json:"property_address"`
	City            string      `json:"city"`
	State           string      `json:"state"`
	ZipCode         string      `json:"zip_code"`
	FilingCounty    string      `json:"filing_county"`
	FilingCity      string      `json:"filing_city,omitempty"`
	Plaintiffs      []Plaintiff `json:"plaintiffs"`
	Defendants      []Defendant `json:"defendants"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// HeadsOfHousehold returns the plaintiffs marked head of household, in input order
func (c *Case) HeadsOfHousehold() []Plaintiff {
	var heads []Plaintiff
	for _, p := range c.Plaintiffs {
		if p.IsHeadOfHousehold {
			heads = append(heads, p)
		}
	}
	return heads
}
