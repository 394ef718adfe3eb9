package service

import (
	"context"
	"errors"
	"fmt"

	"discovery-backend/models"

	"github.com/google/uuid"
)

// CaseRepository stores cases with their parties
type CaseRepository interface {
	CaseStore
	Create(ctx context.Context, c *models.Case) error
}

// SelectionValidator checks issue selections against the taxonomy
type SelectionValidator interface {
	ValidateSelection(sel models.IssueSelection) error
}

// CaseService handles intake of cases
type CaseService struct {
	caseRepo  CaseRepository
	validator SelectionValidator
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

// WithCaseRepository sets the case repository
func WithCaseRepository(repo CaseRepository) CaseServiceOption {
	return func(s *CaseService) {
		s.caseRepo = repo
	}
}

// WithSelectionValidator sets the issue taxonomy used to vet selections
func WithSelectionValidator(v SelectionValidator) CaseServiceOption {
	return func(s *CaseService) {
		s.validator = v
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) *CaseService {
	s := &CaseService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var ErrInvalidCase = errors.New("invalid case")

// CreateCaseRequest represents a request to create a case
type CreateCaseRequest struct {
	Case *models.Case
}

// CreateCaseResult represents the result of creating a case
type CreateCaseResult struct {
	Case *models.Case
}

// CreateCase vets party names and issue selections, then stores the case.
// A case without a head of household is accepted here; discovery rejects it.
func (s *CaseService) CreateCase(ctx context.Context, req CreateCaseRequest) (*CreateCaseResult, error) {
	if s.caseRepo == nil {
		return nil, ErrServiceNotAvailable
	}
	c := req.Case
	if c == nil {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidCase)
	}
	if c.PropertyAddress == "" || c.City == "" {
		return nil, fmt.Errorf("%w: property_address and city are required", ErrInvalidCase)
	}
	for i, p := range c.Plaintiffs {
		if p.FullName() == "" {
			return nil, fmt.Errorf("%w: plaintiff %d has no name", ErrInvalidCase, i+1)
		}
		if s.validator != nil {
			if err := s.validator.ValidateSelection(p.Issues); err != nil {
				return nil, fmt.Errorf("%w: plaintiff %s: %v", ErrInvalidCase, p.FullName(), err)
			}
		}
		if c.Plaintiffs[i].Issues == nil {
			c.Plaintiffs[i].Issues = models.IssueSelection{}
		}
	}
	for i, d := range c.Defendants {
		if d.FullName() == "" {
			return nil, fmt.Errorf("%w: defendant %d has no name", ErrInvalidCase, i+1)
		}
	}

	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	return &CreateCaseResult{Case: c}, nil
}

// GetCaseRequest represents a request to get a case
type GetCaseRequest struct {
	ID uuid.UUID
}

// GetCaseResult represents the result of getting a case
type GetCaseResult struct {
	Case *models.Case
}

// GetCase retrieves a case with its parties
func (s *CaseService) GetCase(ctx context.Context, req GetCaseRequest) (*GetCaseResult, error) {
	if s.caseRepo == nil {
		return nil, ErrServiceNotAvailable
	}

	c, err := s.caseRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	return &GetCaseResult{Case: c}, nil
}
