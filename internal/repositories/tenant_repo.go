package repositories

import (
	"context"

	"lexmart/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type tenantRepo struct {
	db Querier
}

func NewTenantRepo(db Querier) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT id, name, subdomain, gstin, state_code, status, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&tenant.ID, &tenant.Name, &tenant.Subdomain, &tenant.GSTIN, &tenant.StateCode, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// ListActiveIDs is used by background jobs that iterate every firm.
func (r *tenantRepo) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT id FROM tenants WHERE status = 'active'`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
