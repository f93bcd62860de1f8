package repositories

import (
	"context"

	"lexmart/internal/models"

	"github.com/google/uuid"
)

type CaseRepository interface {
	Create(ctx context.Context, legalCase *models.Case) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Case, error)
	Update(ctx context.Context, legalCase *models.Case) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Case, error)
	GetByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*models.Case, error)
}

type caseRepo struct {
	db Querier
}

func NewCaseRepo(db Querier) CaseRepository {
	return &caseRepo{db: db}
}

const caseColumns = `id, tenant_id, client_id, case_number, title, description, practice_area, court_name, status, assigned_to, opened_date, closed_date, created_at, updated_at`

func scanCase(row interface{ Scan(dest ...any) error }) (*models.Case, error) {
	legalCase := &models.Case{}
	err := row.Scan(&legalCase.ID, &legalCase.TenantID, &legalCase.ClientID, &legalCase.CaseNumber, &legalCase.Title, &legalCase.Description, &legalCase.PracticeArea, &legalCase.CourtName, &legalCase.Status, &legalCase.AssignedTo, &legalCase.OpenedDate, &legalCase.ClosedDate, &legalCase.CreatedAt, &legalCase.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return legalCase, nil
}

func (r *caseRepo) Create(ctx context.Context, legalCase *models.Case) error {
	query := `
		INSERT INTO cases (id, tenant_id, client_id, case_number, title, description, practice_area, court_name, status, assigned_to, opened_date, closed_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, legalCase.ID, legalCase.TenantID, legalCase.ClientID, legalCase.CaseNumber, legalCase.Title, legalCase.Description, legalCase.PracticeArea, legalCase.CourtName, legalCase.Status, legalCase.AssignedTo, legalCase.OpenedDate, legalCase.ClosedDate)
	return err
}

func (r *caseRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE tenant_id = $1 AND id = $2`
	return scanCase(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *caseRepo) Update(ctx context.Context, legalCase *models.Case) error {
	query := `
		UPDATE cases
		SET title = $1, description = $2, practice_area = $3, court_name = $4, status = $5, assigned_to = $6, opened_date = $7, closed_date = $8, updated_at = NOW()
		WHERE tenant_id = $9 AND id = $10
	`
	_, err := r.db.Exec(ctx, query, legalCase.Title, legalCase.Description, legalCase.PracticeArea, legalCase.CourtName, legalCase.Status, legalCase.AssignedTo, legalCase.OpenedDate, legalCase.ClosedDate, legalCase.TenantID, legalCase.ID)
	return err
}

func (r *caseRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM cases WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *caseRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Case, error) {
	query := `
		SELECT ` + caseColumns + `
		FROM cases
		WHERE tenant_id = $1
		ORDER BY opened_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		legalCase, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, legalCase)
	}
	return cases, rows.Err()
}

func (r *caseRepo) GetByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*models.Case, error) {
	query := `
		SELECT ` + caseColumns + `
		FROM cases
		WHERE tenant_id = $1 AND client_id = $2
		ORDER BY opened_date DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		legalCase, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, legalCase)
	}
	return cases, rows.Err()
}
