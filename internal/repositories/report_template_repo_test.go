package repositories

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"lexmart/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func stringPtr(s string) *string { return &s }

type ReportTemplateRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     ReportTemplateRepository
	tenantID uuid.UUID
	userID   uuid.UUID
	context  context.Context
}

func (suite *ReportTemplateRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewReportTemplateRepo(mock)
	suite.tenantID = uuid.New()
	suite.userID = uuid.New()
	suite.context = context.Background()
}

func (suite *ReportTemplateRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestReportTemplateRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ReportTemplateRepoTestSuite))
}

func (suite *ReportTemplateRepoTestSuite) sampleTemplate() *models.ReportTemplate {
	return &models.ReportTemplate{
		ID:              uuid.New(),
		TenantID:        suite.tenantID,
		Name:            "Open Cases",
		Description:     stringPtr("Cases still in progress"),
		TemplateType:    "custom",
		QueryDefinition: json.RawMessage(`{"data_source":"cases","columns":[{"field":"id"}]}`),
		Parameters:      json.RawMessage(`{"status":"open"}`),
		CreatedBy:       suite.userID,
		IsPublic:        false,
	}
}

func (suite *ReportTemplateRepoTestSuite) TestCreate_Success() {
	template := suite.sampleTemplate()

	suite.mock.ExpectExec(`
		INSERT INTO report_templates \(id, tenant_id, name, description, template_type, query_definition, parameters, created_by, is_public, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, NOW\(\), NOW\(\)\)
	`).WithArgs(template.ID, template.TenantID, template.Name, template.Description, template.TemplateType, template.QueryDefinition, template.Parameters, template.CreatedBy, template.IsPublic).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, template)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *ReportTemplateRepoTestSuite) TestGetByID_Success() {
	template := suite.sampleTemplate()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "tenant_id", "name", "description", "template_type", "query_definition", "parameters", "created_by", "is_public", "created_at", "updated_at"}).
		AddRow(template.ID, template.TenantID, template.Name, template.Description, template.TemplateType, template.QueryDefinition, template.Parameters, template.CreatedBy, template.IsPublic, now, now)

	suite.mock.ExpectQuery(`
		SELECT id, tenant_id, name, description, template_type, query_definition, parameters, created_by, is_public, created_at, updated_at
		FROM report_templates
		WHERE tenant_id = \$1 AND id = \$2
	`).WithArgs(suite.tenantID, template.ID).WillReturnRows(rows)

	got, err := suite.repo.GetByID(suite.context, suite.tenantID, template.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), template.Name, got.Name)
	assert.Equal(suite.T(), template.QueryDefinition, got.QueryDefinition)
	assert.False(suite.T(), got.IsPublic)
}

func (suite *ReportTemplateRepoTestSuite) TestGetByID_NotFound() {
	templateID := uuid.New()

	suite.mock.ExpectQuery(`
		SELECT id, tenant_id, name, description, template_type, query_definition, parameters, created_by, is_public, created_at, updated_at
		FROM report_templates
		WHERE tenant_id = \$1 AND id = \$2
	`).WithArgs(suite.tenantID, templateID).WillReturnError(pgx.ErrNoRows)

	got, err := suite.repo.GetByID(suite.context, suite.tenantID, templateID)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), got)
}

func (suite *ReportTemplateRepoTestSuite) TestGetByID_TenantIsolation() {
	otherTenant := uuid.New()
	templateID := uuid.New()

	suite.mock.ExpectQuery(`
		SELECT id, tenant_id, name, description, template_type, query_definition, parameters, created_by, is_public, created_at, updated_at
		FROM report_templates
		WHERE tenant_id = \$1 AND id = \$2
	`).WithArgs(otherTenant, templateID).WillReturnError(pgx.ErrNoRows)

	_, err := suite.repo.GetByID(suite.context, otherTenant, templateID)
	assert.Error(suite.T(), err)
}

func (suite *ReportTemplateRepoTestSuite) TestListVisible() {
	template := suite.sampleTemplate()
	publicTemplate := suite.sampleTemplate()
	publicTemplate.Name = "Firm Revenue"
	publicTemplate.CreatedBy = uuid.New()
	publicTemplate.IsPublic = true
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "tenant_id", "name", "description", "template_type", "query_definition", "parameters", "created_by", "is_public", "created_at", "updated_at"}).
		AddRow(template.ID, template.TenantID, template.Name, template.Description, template.TemplateType, template.QueryDefinition, template.Parameters, template.CreatedBy, template.IsPublic, now, now).
		AddRow(publicTemplate.ID, publicTemplate.TenantID, publicTemplate.Name, publicTemplate.Description, publicTemplate.TemplateType, publicTemplate.QueryDefinition, publicTemplate.Parameters, publicTemplate.CreatedBy, publicTemplate.IsPublic, now, now)

	suite.mock.ExpectQuery(`
		SELECT id, tenant_id, name, description, template_type, query_definition, parameters, created_by, is_public, created_at, updated_at
		FROM report_templates
		WHERE tenant_id = \$1 AND \(is_public = TRUE OR created_by = \$2\)
		ORDER BY created_at DESC
		LIMIT \$3 OFFSET \$4
	`).WithArgs(suite.tenantID, suite.userID, 20, 0).WillReturnRows(rows)

	templates, err := suite.repo.ListVisible(suite.context, suite.tenantID, suite.userID, 20, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), templates, 2)
	assert.Equal(suite.T(), "Open Cases", templates[0].Name)
	assert.Equal(suite.T(), "Firm Revenue", templates[1].Name)
}

func (suite *ReportTemplateRepoTestSuite) TestUpdate_Success() {
	template := suite.sampleTemplate()
	template.Name = "Open Cases v2"
	template.IsPublic = true

	suite.mock.ExpectExec(`
		UPDATE report_templates
		SET name = \$1, description = \$2, template_type = \$3, query_definition = \$4, parameters = \$5, is_public = \$6, updated_at = NOW\(\)
		WHERE tenant_id = \$7 AND id = \$8
	`).WithArgs(template.Name, template.Description, template.TemplateType, template.QueryDefinition, template.Parameters, template.IsPublic, template.TenantID, template.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Update(suite.context, template)
	assert.NoError(suite.T(), err)
}

func (suite *ReportTemplateRepoTestSuite) TestDelete_Success() {
	templateID := uuid.New()

	suite.mock.ExpectExec(`DELETE FROM report_templates WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID, templateID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, suite.tenantID, templateID)
	assert.NoError(suite.T(), err)
}
