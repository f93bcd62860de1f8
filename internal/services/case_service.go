package services

import (
	"context"
	"fmt"
	"time"

	"lexmart/internal/common"
	"lexmart/internal/models"
	"lexmart/internal/repositories"

	"github.com/google/uuid"
)

// Case lifecycle states.
const (
	CaseStatusOpen     = "open"
	CaseStatusOnHold   = "on_hold"
	CaseStatusClosed   = "closed"
	CaseStatusArchived = "archived"
)

// CaseServiceInterface defines the interface for case service
type CaseServiceInterface interface {
	CreateCase(ctx context.Context, legalCase *models.Case) error
	GetCaseByID(ctx context.Context, tenantID, caseID uuid.UUID) (*models.Case, error)
	ListCases(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Case, error)
	GetCasesByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*models.Case, error)
	UpdateCase(ctx context.Context, legalCase *models.Case) error
	CloseCase(ctx context.Context, tenantID, caseID uuid.UUID) error
	DeleteCase(ctx context.Context, tenantID, caseID uuid.UUID) error
}

type caseService struct {
	caseRepo   repositories.CaseRepository
	clientRepo repositories.ClientRepository
}

// NewCaseService creates a new case service
func NewCaseService(caseRepo repositories.CaseRepository, clientRepo repositories.ClientRepository) CaseServiceInterface {
	return &caseService{caseRepo: caseRepo, clientRepo: clientRepo}
}

func validateCase(legalCase *models.Case) error {
	if err := common.ValidateRequiredString(legalCase.CaseNumber, "case_number"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(legalCase.Title, "title"); err != nil {
		return err
	}
	return common.ValidateCaseStatus(legalCase.Status)
}

func (s *caseService) CreateCase(ctx context.Context, legalCase *models.Case) error {
	if legalCase.Status == "" {
		legalCase.Status = CaseStatusOpen
	}
	if err := validateCase(legalCase); err != nil {
		return err
	}

	// The client must exist within the tenant before a case can reference it.
	if _, err := s.clientRepo.GetByID(ctx, legalCase.TenantID, legalCase.ClientID); err != nil {
		return common.SecureErrorMessage("load client for case", err)
	}

	if legalCase.ID == uuid.Nil {
		legalCase.ID = uuid.New()
	}
	if legalCase.OpenedDate.IsZero() {
		legalCase.OpenedDate = time.Now()
	}
	legalCase.CreatedAt = time.Now()
	legalCase.UpdatedAt = time.Now()

	if err := s.caseRepo.Create(ctx, legalCase); err != nil {
		return common.SecureErrorMessage("create case", err)
	}
	return nil
}

func (s *caseService) GetCaseByID(ctx context.Context, tenantID, caseID uuid.UUID) (*models.Case, error) {
	return s.caseRepo.GetByID(ctx, tenantID, caseID)
}

func (s *caseService) ListCases(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Case, error) {
	return s.caseRepo.List(ctx, tenantID, limit, offset)
}

func (s *caseService) GetCasesByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*models.Case, error) {
	return s.caseRepo.GetByClientID(ctx, tenantID, clientID)
}

func (s *caseService) UpdateCase(ctx context.Context, legalCase *models.Case) error {
	if err := validateCase(legalCase); err != nil {
		return err
	}
	legalCase.UpdatedAt = time.Now()

	if err := s.caseRepo.Update(ctx, legalCase); err != nil {
		return common.SecureErrorMessage("update case", err)
	}
	return nil
}

// CloseCase moves an open or on-hold case to closed and stamps the closing
// date.
func (s *caseService) CloseCase(ctx context.Context, tenantID, caseID uuid.UUID) error {
	legalCase, err := s.caseRepo.GetByID(ctx, tenantID, caseID)
	if err != nil {
		return common.SecureErrorMessage("load case for closing", err)
	}
	if legalCase.Status != CaseStatusOpen && legalCase.Status != CaseStatusOnHold {
		return fmt.Errorf("case cannot be closed from status %s", legalCase.Status)
	}

	now := time.Now()
	legalCase.Status = CaseStatusClosed
	legalCase.ClosedDate = &now
	legalCase.UpdatedAt = now

	if err := s.caseRepo.Update(ctx, legalCase); err != nil {
		return common.SecureErrorMessage("close case", err)
	}
	return nil
}

func (s *caseService) DeleteCase(ctx context.Context, tenantID, caseID uuid.UUID) error {
	if err := s.caseRepo.Delete(ctx, tenantID, caseID); err != nil {
		return common.SecureErrorMessage("delete case", err)
	}
	return nil
}
