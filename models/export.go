package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportKind distinguishes renderer payloads from consolidated reports
type ExportKind string

const (
	ExportKindSets         ExportKind = "sets"
	ExportKindConsolidated ExportKind = "consolidated"
)

// DiscoveryExport represents a stored output of a discovery job
type DiscoveryExport struct {
	ID          uuid.UUID   `json:"id"`
	CaseID      uuid.UUID   `json:"case_id"`
	JobID       uuid.UUID   `json:"job_id"`
	Kind        ExportKind  `json:"kind"`
	Profile     ProfileType `json:"profile"`
	PairName    *string     `json:"pair_name,omitempty"`
	SetCount    int         `json:"set_count"`
	Total       int         `json:"total"`
	Filename    string      `json:"filename"`
	MimeType    string      `json:"mime_type"`
	Size        int64       `json:"size"`
	StoragePath string      `json:"storage_path"`
	CreatedAt   time.Time   `json:"created_at"`
}

// SetsPayload is the renderer input for one (pair, profile)
type SetsPayload struct {
	CaseID         uuid.UUID          `json:"case_id"`
	PairName       string             `json:"pair_name"`
	Plaintiff      Plaintiff          `json:"plaintiff"`
	Defendant      Defendant          `json:"defendant"`
	Profile        ProfileType        `json:"profile"`
	Template       string             `json:"template"`
	FilenameSuffix string             `json:"filename_suffix"`
	Total          int                `json:"total"`
	Sets           []InterrogatorySet `json:"sets"`
	// Filenames holds the document name of each set, in set order
	Filenames []string `json:"filenames"`
}

// NewSetsPayload builds the renderer input for one profiled dataset
func NewSetsPayload(ds *ProfiledDataset, sets []InterrogatorySet) SetsPayload {
	p := SetsPayload{
		CaseID:         ds.Pair.CaseID,
		PairName:       ds.Pair.Name(),
		Plaintiff:      ds.Pair.Plaintiff,
		Defendant:      ds.Pair.Defendant,
		Profile:        ds.Profile,
		Template:       ds.Template,
		FilenameSuffix: ds.FilenameSuffix,
		Total:          ds.Total,
		Sets:           sets,
		Filenames:      make([]string, 0, len(sets)),
	}
	for _, s := range sets {
		p.Filenames = append(p.Filenames, s.Filename(ds.Pair, ds.FilenameSuffix))
	}
	return p
}
