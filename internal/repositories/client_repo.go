package repositories

import (
	"context"

	"lexmart/internal/models"

	"github.com/google/uuid"
)

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error)
}

type clientRepo struct {
	db Querier
}

func NewClientRepo(db Querier) ClientRepository {
	return &clientRepo{db: db}
}

const clientColumns = `id, tenant_id, name, email, phone, client_type, gstin, state_code, tds_applicable, billing_address, status, created_at, updated_at`

func scanClient(row interface{ Scan(dest ...any) error }) (*models.Client, error) {
	client := &models.Client{}
	err := row.Scan(&client.ID, &client.TenantID, &client.Name, &client.Email, &client.Phone, &client.ClientType, &client.GSTIN, &client.StateCode, &client.TDSApplicable, &client.BillingAddress, &client.Status, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *clientRepo) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (id, tenant_id, name, email, phone, client_type, gstin, state_code, tds_applicable, billing_address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, client.ID, client.TenantID, client.Name, client.Email, client.Phone, client.ClientType, client.GSTIN, client.StateCode, client.TDSApplicable, client.BillingAddress, client.Status)
	return err
}

func (r *clientRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE tenant_id = $1 AND id = $2`
	return scanClient(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *clientRepo) Update(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $1, email = $2, phone = $3, client_type = $4, gstin = $5, state_code = $6, tds_applicable = $7, billing_address = $8, status = $9, updated_at = NOW()
		WHERE tenant_id = $10 AND id = $11
	`
	_, err := r.db.Exec(ctx, query, client.Name, client.Email, client.Phone, client.ClientType, client.GSTIN, client.StateCode, client.TDSApplicable, client.BillingAddress, client.Status, client.TenantID, client.ID)
	return err
}

func (r *clientRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM clients WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *clientRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE tenant_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}
