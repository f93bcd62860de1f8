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

// ClientServiceInterface defines the interface for client service
type ClientServiceInterface interface {
	CreateClient(ctx context.Context, client *models.Client) error
	GetClientByID(ctx context.Context, tenantID, clientID uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error)
	UpdateClient(ctx context.Context, client *models.Client) error
	DeleteClient(ctx context.Context, tenantID, clientID uuid.UUID) error
}

type clientService struct {
	clientRepo repositories.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(clientRepo repositories.ClientRepository) ClientServiceInterface {
	return &clientService{clientRepo: clientRepo}
}

func validateClient(client *models.Client) error {
	if err := common.ValidateRequiredString(client.Name, "name"); err != nil {
		return err
	}
	if err := common.ValidateClientType(client.ClientType); err != nil {
		return err
	}
	if client.GSTIN != nil {
		if err := common.ValidateGSTIN(common.SafeString(client.GSTIN), "gstin"); err != nil {
			return err
		}
	}
	// State codes are the two-digit GST codes; length is the only check the
	// service performs, the full list lives with the tax configuration.
	if client.StateCode != nil && len(common.SafeString(client.StateCode)) != 2 {
		return fmt.Errorf("state_code must be a 2-digit GST state code")
	}
	return nil
}

func (s *clientService) CreateClient(ctx context.Context, client *models.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}

	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	if client.Status == "" {
		client.Status = "active"
	}
	client.CreatedAt = time.Now()
	client.UpdatedAt = time.Now()

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return common.SecureErrorMessage("create client", err)
	}
	return nil
}

func (s *clientService) GetClientByID(ctx context.Context, tenantID, clientID uuid.UUID) (*models.Client, error) {
	return s.clientRepo.GetByID(ctx, tenantID, clientID)
}

func (s *clientService) ListClients(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error) {
	return s.clientRepo.List(ctx, tenantID, limit, offset)
}

func (s *clientService) UpdateClient(ctx context.Context, client *models.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}
	client.UpdatedAt = time.Now()

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return common.SecureErrorMessage("update client", err)
	}
	return nil
}

func (s *clientService) DeleteClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	if err := s.clientRepo.Delete(ctx, tenantID, clientID); err != nil {
		return common.SecureErrorMessage("delete client", err)
	}
	return nil
}
