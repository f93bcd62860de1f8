package repositories

import (
	"context"
	"time"

	"lexmart/internal/models"

	"github.com/google/uuid"
)

type ReportTemplateRepository interface {
	Create(ctx context.Context, template *models.ReportTemplate) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ReportTemplate, error)
	ListVisible(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.ReportTemplate, error)
	Update(ctx context.Context, template *models.ReportTemplate) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type reportTemplateRepo struct {
	db Querier
}

func NewReportTemplateRepo(db Querier) ReportTemplateRepository {
	return &reportTemplateRepo{db: db}
}

func (r *reportTemplateRepo) Create(ctx context.Context, template *models.ReportTemplate) error {
	query := `
		INSERT INTO report_templates (id, tenant_id, name, description, template_type, query_definition, parameters, created_by, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, template.ID, template.TenantID, template.Name, template.Description, template.TemplateType, template.QueryDefinition, template.Parameters, template.CreatedBy, template.IsPublic)
	return err
}

func (r *reportTemplateRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ReportTemplate, error) {
	template := &models.ReportTemplate{}
	query := `
		SELECT id, tenant_id, name, description, template_type, query_definition, parameters, created_by, is_public, created_at, updated_at
		FROM report_templates
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&template.ID, &template.TenantID, &template.Name, &template.Description, &template.TemplateType, &template.QueryDefinition, &template.Parameters, &template.CreatedBy, &template.IsPublic, &template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return template, nil
}

// ListVisible returns templates the caller may see: their own plus public
// ones within the tenant.
func (r *reportTemplateRepo) ListVisible(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.ReportTemplate, error) {
	query := `
		SELECT id, tenant_id, name, description, template_type, query_definition, parameters, created_by, is_public, created_at, updated_at
		FROM report_templates
		WHERE tenant_id = $1 AND (is_public = TRUE OR created_by = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.ReportTemplate
	for rows.Next() {
		template := &models.ReportTemplate{}
		if err := rows.Scan(&template.ID, &template.TenantID, &template.Name, &template.Description, &template.TemplateType, &template.QueryDefinition, &template.Parameters, &template.CreatedBy, &template.IsPublic, &template.CreatedAt, &template.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}

func (r *reportTemplateRepo) Update(ctx context.Context, template *models.ReportTemplate) error {
	template.UpdatedAt = time.Now()
	query := `
		UPDATE report_templates
		SET name = $1, description = $2, template_type = $3, query_definition = $4, parameters = $5, is_public = $6, updated_at = NOW()
		WHERE tenant_id = $7 AND id = $8
	`
	_, err := r.db.Exec(ctx, query, template.Name, template.Description, template.TemplateType, template.QueryDefinition, template.Parameters, template.IsPublic, template.TenantID, template.ID)
	return err
}

func (r *reportTemplateRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM report_templates WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}
