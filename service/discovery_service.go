package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"discovery-backend/models"
	"discovery-backend/pipeline"
	"discovery-backend/storage"

	"github.com/google/uuid"
)

// CaseStore loads cases with their parties
type CaseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error)
}

// JobStore persists discovery jobs
type JobStore interface {
	Create(ctx context.Context, job *models.DiscoveryJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DiscoveryJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DiscoveryJobStatus) error
	UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.JobSteps) error
	RecordFailures(ctx context.Context, id uuid.UUID, failures models.PairFailures) error
	Complete(ctx context.Context, id uuid.UUID) error
	Fail(ctx context.Context, id uuid.UUID, errorMessage string) error
}

// ExportStore persists export records
type ExportStore interface {
	Create(ctx context.Context, e *models.DiscoveryExport) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DiscoveryExport, error)
	ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.DiscoveryExport, error)
	ListByJobID(ctx context.Context, jobID uuid.UUID) ([]*models.DiscoveryExport, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DiscoveryService runs the discovery pipeline for stored cases and keeps
// the resulting exports
type DiscoveryService struct {
	caseRepo   CaseStore
	jobRepo    JobStore
	exportRepo ExportStore
	storage    storage.Storage
	engine     *pipeline.Engine
}

// DiscoveryServiceOption is a functional option for DiscoveryService
type DiscoveryServiceOption func(*DiscoveryService)

// DiscoveryWithCaseRepository sets the case repository
func DiscoveryWithCaseRepository(repo CaseStore) DiscoveryServiceOption {
	return func(s *DiscoveryService) {
		s.caseRepo = repo
	}
}

// DiscoveryWithJobRepository sets the discovery job repository
func DiscoveryWithJobRepository(repo JobStore) DiscoveryServiceOption {
	return func(s *DiscoveryService) {
		s.jobRepo = repo
	}
}

// DiscoveryWithExportRepository sets the export repository
func DiscoveryWithExportRepository(repo ExportStore) DiscoveryServiceOption {
	return func(s *DiscoveryService) {
		s.exportRepo = repo
	}
}

// DiscoveryWithStorage sets the export storage backend
func DiscoveryWithStorage(st storage.Storage) DiscoveryServiceOption {
	return func(s *DiscoveryService) {
		s.storage = st
	}
}

// DiscoveryWithEngine sets the pipeline engine
func DiscoveryWithEngine(e *pipeline.Engine) DiscoveryServiceOption {
	return func(s *DiscoveryService) {
		s.engine = e
	}
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(opts ...DiscoveryServiceOption) *DiscoveryService {
	s := &DiscoveryService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateDiscoveryRequest represents a request to assemble discovery for a case
type GenerateDiscoveryRequest struct {
	CaseID uuid.UUID
}

// GenerateDiscoveryResult represents the result of creating a discovery job
type GenerateDiscoveryResult struct {
	JobID uuid.UUID
}

// GetJobStatusRequest represents a request to get job status
type GetJobStatusRequest struct {
	JobID uuid.UUID
}

// GetJobStatusResult represents the result of getting job status
type GetJobStatusResult struct {
	Job *models.DiscoveryJob
}

// PreviewDiscoveryRequest runs the pipeline on an unsaved case
type PreviewDiscoveryRequest struct {
	Case *models.Case
}

// ListExportsRequest represents a request to list a case's exports
type ListExportsRequest struct {
	CaseID uuid.UUID
}

// ListExportsResult holds a case's exports, newest first
type ListExportsResult struct {
	Exports []*models.DiscoveryExport
}

var (
	ErrCaseNotFound        = errors.New("case not found")
	ErrJobCreationFailed   = errors.New("failed to create discovery job")
	ErrJobNotFound         = errors.New("discovery job not found")
	ErrExportNotFound      = errors.New("export not found")
	ErrServiceNotAvailable = errors.New("discovery service is not fully configured")
)

const (
	stepValidate    = "Validating Case"
	stepAssemble    = "Assembling Interrogatory Sets"
	stepConsolidate = "Consolidating Profiles"
	stepStore       = "Storing Exports"
)

// GenerateDiscovery validates the case, creates a job and returns immediately.
// The caller runs ProcessDiscovery in the background.
func (s *DiscoveryService) GenerateDiscovery(
	ctx context.Context,
	req GenerateDiscoveryRequest,
) (*GenerateDiscoveryResult, error) {
	if s.caseRepo == nil || s.jobRepo == nil || s.engine == nil {
		return nil, ErrServiceNotAvailable
	}

	c, err := s.caseRepo.GetByID(ctx, req.CaseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	// Input errors are reported synchronously; no job is created
	if err := s.engine.Validate(c); err != nil {
		return nil, err
	}

	job := &models.DiscoveryJob{
		ID:       uuid.New(),
		CaseID:   req.CaseID,
		Status:   models.JobStatusPending,
		Steps:    initializeSteps(),
		Failures: models.PairFailures{},
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, ErrJobCreationFailed
	}

	return &GenerateDiscoveryResult{
		JobID: job.ID,
	}, nil
}

// GetJobStatus retrieves the status of a discovery job
func (s *DiscoveryService) GetJobStatus(
	ctx context.Context,
	req GetJobStatusRequest,
) (*GetJobStatusResult, error) {
	if s.jobRepo == nil {
		return nil, ErrServiceNotAvailable
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, ErrJobNotFound
	}

	return &GetJobStatusResult{
		Job: job,
	}, nil
}

// PreviewDiscovery runs the pipeline without touching storage
func (s *DiscoveryService) PreviewDiscovery(
	ctx context.Context,
	req PreviewDiscoveryRequest,
) (*pipeline.CaseResult, error) {
	if s.engine == nil {
		return nil, ErrServiceNotAvailable
	}
	return s.engine.Run(req.Case)
}

func initializeSteps() models.JobSteps {
	return models.JobSteps{
		{Name: stepValidate, Status: "pending", Description: "Checking parties and selected issues"},
		{Name: stepAssemble, Status: "pending", Description: "Deriving flags and splitting sets for every pair and profile"},
		{Name: stepConsolidate, Status: "pending", Description: "Aggregating each profile across the case"},
		{Name: stepStore, Status: "pending", Description: "Writing renderer payloads and consolidated exports"},
	}
}

// ProcessDiscovery performs the pipeline run and export upload. It runs in a
// goroutine; progress and the final outcome are written to the job.
func (s *DiscoveryService) ProcessDiscovery(
	ctx context.Context,
	jobID uuid.UUID,
) error {
	if s.caseRepo == nil || s.jobRepo == nil || s.exportRepo == nil || s.storage == nil || s.engine == nil {
		return ErrServiceNotAvailable
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load discovery job: %w", err)
	}

	if err := s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusInProgress); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	// 1. Load and validate the case
	if err := s.updateStepStatus(ctx, jobID, stepValidate, "in_progress"); err != nil {
		return s.fail(ctx, jobID, "failed to update step", err)
	}
	c, err := s.caseRepo.GetByID(ctx, job.CaseID)
	if err != nil {
		return s.fail(ctx, jobID, "failed to load case", err)
	}
	if err := s.engine.Validate(c); err != nil {
		_ = s.updateStepStatus(ctx, jobID, stepValidate, "failed")
		return s.fail(ctx, jobID, "invalid case", err)
	}
	if err := s.updateStepStatus(ctx, jobID, stepValidate, "completed"); err != nil {
		return s.fail(ctx, jobID, "failed to update step", err)
	}

	// 2. Run the pipeline
	if err := s.updateStepStatus(ctx, jobID, stepAssemble, "in_progress"); err != nil {
		return s.fail(ctx, jobID, "failed to update step", err)
	}
	result, err := s.engine.Run(c)
	if err != nil {
		return s.fail(ctx, jobID, "discovery run failed", err)
	}
	for _, w := range result.Warnings {
		log.Printf("Warning: case %s: %s", c.ID, w)
	}
	failures := result.Failures()
	if len(failures) > 0 {
		if err := s.jobRepo.RecordFailures(ctx, jobID, failures); err != nil {
			log.Printf("Warning: failed to record pair failures for job %s: %v", jobID, err)
		}
	}
	if err := s.updateStepStatus(ctx, jobID, stepAssemble, "completed"); err != nil {
		return s.fail(ctx, jobID, "failed to update step", err)
	}

	// 3. Consolidation is part of the run; the step only reports it
	if err := s.updateStepStatus(ctx, jobID, stepConsolidate, "completed"); err != nil {
		return s.fail(ctx, jobID, "failed to update step", err)
	}

	// 4. Store exports
	if err := s.updateStepStatus(ctx, jobID, stepStore, "in_progress"); err != nil {
		return s.fail(ctx, jobID, "failed to update step", err)
	}
	if err := s.storeExports(ctx, job, result); err != nil {
		s.discardExports(ctx, jobID)
		return s.fail(ctx, jobID, "failed to store exports", err)
	}
	if err := s.updateStepStatus(ctx, jobID, stepStore, "completed"); err != nil {
		return s.fail(ctx, jobID, "failed to update step", err)
	}

	if err := s.jobRepo.Complete(ctx, jobID); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return nil
}

// storeExports uploads one payload per successful (pair, profile) and one
// consolidated report per profile, recording each upload
func (s *DiscoveryService) storeExports(ctx context.Context, job *models.DiscoveryJob, result *pipeline.CaseResult) error {
	for _, pr := range result.Pairs {
		for _, res := range pr.Profiles {
			if res.Failed() {
				continue
			}
			pairName := pr.Name
			payload := models.NewSetsPayload(res.Dataset, res.Sets)
			export := &models.DiscoveryExport{
				CaseID:   job.CaseID,
				JobID:    job.ID,
				Kind:     models.ExportKindSets,
				Profile:  res.Profile,
				PairName: &pairName,
				SetCount: len(res.Sets),
				Total:    res.Dataset.Total,
				Filename: pr.Name + " - " + res.Dataset.FilenameSuffix + ".json",
			}
			if err := s.upload(ctx, export, payload); err != nil {
				return err
			}
		}
	}

	for _, cp := range result.Consolidated {
		export := &models.DiscoveryExport{
			CaseID:   job.CaseID,
			JobID:    job.ID,
			Kind:     models.ExportKindConsolidated,
			Profile:  cp.Profile,
			Total:    cp.Summary.TotalInterrogatories,
			Filename: "Consolidated " + string(cp.Profile) + ".json",
		}
		if err := s.upload(ctx, export, cp); err != nil {
			return err
		}
	}
	return nil
}

func (s *DiscoveryService) upload(ctx context.Context, export *models.DiscoveryExport, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", export.Filename, err)
	}

	export.ID = uuid.New()
	key := storage.Key{
		CaseID:   export.CaseID,
		JobID:    export.JobID,
		ExportID: export.ID,
		Profile:  string(export.Profile),
		Filename: export.Filename,
	}
	path, err := s.storage.Upload(ctx, key, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", export.Filename, err)
	}

	export.MimeType = "application/json"
	export.Size = int64(len(data))
	export.StoragePath = path
	if err := s.exportRepo.Create(ctx, export); err != nil {
		if delErr := s.storage.Delete(ctx, path); delErr != nil {
			log.Printf("Warning: failed to remove orphaned export %s: %v", path, delErr)
		}
		return fmt.Errorf("failed to record %s: %w", export.Filename, err)
	}
	return nil
}

// discardExports removes everything a failed job already stored, so a case
// never lists a partial set of exports
func (s *DiscoveryService) discardExports(ctx context.Context, jobID uuid.UUID) {
	exports, err := s.exportRepo.ListByJobID(ctx, jobID)
	if err != nil {
		log.Printf("Warning: failed to list exports of failed job %s: %v", jobID, err)
		return
	}
	for _, e := range exports {
		if err := s.storage.Delete(ctx, e.StoragePath); err != nil {
			log.Printf("Warning: failed to remove export %s: %v", e.StoragePath, err)
		}
		if err := s.exportRepo.Delete(ctx, e.ID); err != nil {
			log.Printf("Warning: failed to delete export record %s: %v", e.ID, err)
		}
	}
}

// ListExports returns every stored export of a case
func (s *DiscoveryService) ListExports(
	ctx context.Context,
	req ListExportsRequest,
) (*ListExportsResult, error) {
	if s.exportRepo == nil {
		return nil, ErrServiceNotAvailable
	}

	exports, err := s.exportRepo.ListByCaseID(ctx, req.CaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	if exports == nil {
		exports = []*models.DiscoveryExport{}
	}

	return &ListExportsResult{Exports: exports}, nil
}

// OpenExport returns an export record and a reader over its content. The
// caller closes the reader.
func (s *DiscoveryService) OpenExport(ctx context.Context, id uuid.UUID) (*models.DiscoveryExport, io.ReadCloser, error) {
	if s.exportRepo == nil || s.storage == nil {
		return nil, nil, ErrServiceNotAvailable
	}

	export, err := s.exportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, ErrExportNotFound
	}

	rc, err := s.storage.Download(ctx, export.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrExportNotFound
		}
		return nil, nil, err
	}
	return export, rc, nil
}

// updateStepStatus updates the status of a specific step in the job
func (s *DiscoveryService) updateStepStatus(ctx context.Context, jobID uuid.UUID, stepName, status string) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	steps := job.Steps
	var currentStep string
	if job.CurrentStep != nil {
		currentStep = *job.CurrentStep
	}

	for i := range steps {
		if steps[i].Name == stepName {
			steps[i].Status = status
			if status == "in_progress" {
				currentStep = stepName
			}
			break
		}
	}

	return s.jobRepo.UpdateProgress(ctx, jobID, currentStep, steps)
}

// fail marks the job failed and returns the wrapped cause
func (s *DiscoveryService) fail(ctx context.Context, jobID uuid.UUID, msg string, cause error) error {
	err := fmt.Errorf("%s: %w", msg, cause)
	if failErr := s.jobRepo.Fail(ctx, jobID, err.Error()); failErr != nil {
		log.Printf("Warning: failed to mark job %s as failed: %v", jobID, failErr)
	}
	return err
}
