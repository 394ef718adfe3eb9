package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DiscoveryJobStatus represents the status of a discovery job
type DiscoveryJobStatus string

const (
	JobStatusPending    DiscoveryJobStatus = "pending"
	JobStatusInProgress DiscoveryJobStatus = "in_progress"
	JobStatusCompleted  DiscoveryJobStatus = "completed"
	JobStatusFailed     DiscoveryJobStatus = "failed"
)

// JobStep represents a step in the discovery assembly process
type JobStep struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // "pending", "in_progress", "completed", "failed"
	Description string `json:"description,omitempty"`
}

// JobSteps represents a list of job steps
type JobSteps []JobStep

// Value implements driver.Valuer for JSONB
func (g JobSteps) Value() (driver.Value, error) {
	return json.Marshal(g)
}

// Scan implements sql.Scanner for JSONB
func (g *JobSteps) Scan(value interface{}) error {
	if value == nil {
		*g = make(JobSteps, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*g = make(JobSteps, 0)
		return nil
	}

	if len(bytes) == 0 {
		*g = make(JobSteps, 0)
		return nil
	}

	return json.Unmarshal(bytes, g)
}

// PairFailure records a (pair, profile) that failed while the rest of the case succeeded
type PairFailure struct {
	PairName string      `json:"pair_name"`
	Profile  ProfileType `json:"profile"`
	Error    string      `json:"error"`
}

// PairFailures is stored as JSONB on the job row
type PairFailures []PairFailure

// Value implements driver.Valuer for JSONB
func (f PairFailures) Value() (driver.Value, error) {
	if f == nil {
		return json.Marshal([]PairFailure{})
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner for JSONB
func (f *PairFailures) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	if len(bytes) == 0 {
		*f = make(PairFailures, 0)
		return nil
	}
	return json.Unmarshal(bytes, f)
}

// DiscoveryJob represents a discovery assembly job for one case
type DiscoveryJob struct {
	ID           uuid.UUID          `json:"id"`
	CaseID       uuid.UUID          `json:"case_id"`
	Status       DiscoveryJobStatus `json:"status"`
	CurrentStep  *string            `json:"current_step,omitempty"`
	Steps        JobSteps           `json:"steps"`
	Failures     PairFailures       `json:"failures"`
	ErrorMessage *string            `json:"error_message,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
}
