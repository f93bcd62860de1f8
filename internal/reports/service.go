package reports

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"lexmart/internal/caching"
	"lexmart/internal/common"
	"lexmart/internal/models"
	"lexmart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const templateCacheTTL = 10 * time.Minute

// Querier is the storage collaborator the executor runs against. Satisfied
// by *pgxpool.Pool and pgxmock.PgxPoolIface.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Column describes one result column.
type Column struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// ReportResult is the executed report payload.
type ReportResult struct {
	Rows      []map[string]interface{} `json:"rows"`
	Columns   []Column                 `json:"columns"`
	TotalRows int                      `json:"totalRows"`
}

// TemplateInput carries the caller-editable fields of a report template.
type TemplateInput struct {
	Name         string                 `json:"name"`
	Description  *string                `json:"description"`
	TemplateType string                 `json:"template_type"`
	Definition   QueryDefinition        `json:"query_definition"`
	Parameters   map[string]interface{} `json:"parameters"`
	IsPublic     bool                   `json:"is_public"`
}

// ReportService builds, executes, persists and exports reports.
type ReportService interface {
	BuildQuery(def QueryDefinition) (string, []interface{}, error)
	ExecuteReport(ctx context.Context, tenantID uuid.UUID, def QueryDefinition, params map[string]interface{}) (*ReportResult, error)

	SaveTemplate(ctx context.Context, tenantID, userID uuid.UUID, input TemplateInput) (*models.ReportTemplate, error)
	ListTemplates(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.ReportTemplate, error)
	GetTemplate(ctx context.Context, tenantID, userID, templateID uuid.UUID) (*models.ReportTemplate, error)
	UpdateTemplate(ctx context.Context, tenantID, userID, templateID uuid.UUID, input TemplateInput) (*models.ReportTemplate, error)
	DeleteTemplate(ctx context.Context, tenantID, userID, templateID uuid.UUID) error
	ExecuteTemplate(ctx context.Context, tenantID, userID, templateID uuid.UUID, params map[string]interface{}) (*ReportResult, error)

	PrebuiltReports() []PrebuiltReport
	ExecutePrebuilt(ctx context.Context, tenantID uuid.UUID, key string, params map[string]interface{}) (*ReportResult, error)
}

type reportService struct {
	db           Querier
	registry     Registry
	builder      *Builder
	templateRepo repositories.ReportTemplateRepository
	cacheSvc     caching.CacheService
	queryTimeout time.Duration
}

// NewReportService creates a new report service. queryTimeout bounds every
// report execution; zero means the 30s default.
func NewReportService(db Querier, registry Registry, templateRepo repositories.ReportTemplateRepository, cacheSvc caching.CacheService, queryTimeout time.Duration) ReportService {
	if queryTimeout <= 0 {
		queryTimeout = 30 * time.Second
	}
	return &reportService{
		db:           db,
		registry:     registry,
		builder:      NewBuilder(registry),
		templateRepo: templateRepo,
		cacheSvc:     cacheSvc,
		queryTimeout: queryTimeout,
	}
}

func (s *reportService) BuildQuery(def QueryDefinition) (string, []interface{}, error) {
	return s.builder.Build(def)
}

// ExecuteReport runs the definition scoped to the caller's tenant. The
// tenant predicate is forced into the query by the builder; it is never
// part of the caller-supplied definition.
func (s *reportService) ExecuteReport(ctx context.Context, tenantID uuid.UUID, def QueryDefinition, params map[string]interface{}) (*ReportResult, error) {
	if tenantID == uuid.Nil {
		return nil, errAccessDenied("report execution requires a tenant")
	}

	resolved, err := applyParameters(def, params)
	if err != nil {
		return nil, err
	}

	sqlText, args, err := s.builder.BuildForTenant(resolved, tenantID)
	if err != nil {
		return nil, err
	}

	descriptor, _ := s.registry.Descriptor(resolved.DataSource)

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, wrapExecutionError(ctx, err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]Column, len(fieldDescs))
	names := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		names[i] = string(fd.Name)
		columns[i] = Column{
			Name:  names[i],
			Type:  descriptor.FieldType(names[i]),
			Label: columnLabel(names[i]),
		}
	}

	result := &ReportResult{Columns: columns, Rows: []map[string]interface{}{}}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, wrapExecutionError(ctx, err)
		}
		row := make(map[string]interface{}, len(values))
		for i, v := range values {
			row[names[i]] = v
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapExecutionError(ctx, err)
	}

	result.TotalRows = len(result.Rows)
	return result, nil
}

func (s *reportService) SaveTemplate(ctx context.Context, tenantID, userID uuid.UUID, input TemplateInput) (*models.ReportTemplate, error) {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return nil, err
	}

	// Building the definition up front rejects invalid templates before
	// they are persisted.
	if _, _, err := s.builder.Build(input.Definition); err != nil {
		return nil, err
	}

	defJSON, err := json.Marshal(input.Definition)
	if err != nil {
		return nil, err
	}
	paramsJSON, err := marshalParameters(input.Parameters)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	template := &models.ReportTemplate{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Name:            input.Name,
		Description:     input.Description,
		TemplateType:    input.TemplateType,
		QueryDefinition: defJSON,
		Parameters:      paramsJSON,
		CreatedBy:       userID,
		IsPublic:        input.IsPublic,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.templateRepo.Create(ctx, template); err != nil {
		log.Printf("Failed to create report template: %v", err)
		return nil, common.SecureErrorMessage("save report template", err)
	}
	return template, nil
}

func (s *reportService) ListTemplates(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.ReportTemplate, error) {
	templates, err := s.templateRepo.ListVisible(ctx, tenantID, userID, limit, offset)
	if err != nil {
		log.Printf("Failed to list report templates: %v", err)
		return nil, common.SecureErrorMessage("list report templates", err)
	}
	return templates, nil
}

func (s *reportService) GetTemplate(ctx context.Context, tenantID, userID, templateID uuid.UUID) (*models.ReportTemplate, error) {
	template, err := s.loadTemplate(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	// Readable by the creator or anyone within the tenant when public.
	if !template.IsPublic && template.CreatedBy != userID {
		return nil, errAccessDenied("report template is private")
	}
	return template, nil
}

func (s *reportService) UpdateTemplate(ctx context.Context, tenantID, userID, templateID uuid.UUID, input TemplateInput) (*models.ReportTemplate, error) {
	template, err := s.loadTemplate(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	if template.CreatedBy != userID {
		return nil, errAccessDenied("only the creator may update a report template")
	}

	if _, _, err := s.builder.Build(input.Definition); err != nil {
		return nil, err
	}
	defJSON, err := json.Marshal(input.Definition)
	if err != nil {
		return nil, err
	}
	paramsJSON, err := marshalParameters(input.Parameters)
	if err != nil {
		return nil, err
	}

	template.Name = input.Name
	template.Description = input.Description
	template.TemplateType = input.TemplateType
	template.QueryDefinition = defJSON
	template.Parameters = paramsJSON
	template.IsPublic = input.IsPublic

	if err := s.templateRepo.Update(ctx, template); err != nil {
		log.Printf("Failed to update report template %s: %v", templateID, err)
		return nil, common.SecureErrorMessage("update report template", err)
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.DeleteReportTemplate(ctx, tenantID, templateID); err != nil {
			log.Printf("Failed to invalidate template cache %s: %v", templateID, err)
		}
	}
	return template, nil
}

func (s *reportService) DeleteTemplate(ctx context.Context, tenantID, userID, templateID uuid.UUID) error {
	template, err := s.loadTemplate(ctx, tenantID, templateID)
	if err != nil {
		return err
	}
	if template.CreatedBy != userID {
		return errAccessDenied("only the creator may delete a report template")
	}

	if err := s.templateRepo.Delete(ctx, tenantID, templateID); err != nil {
		log.Printf("Failed to delete report template %s: %v", templateID, err)
		return common.SecureErrorMessage("delete report template", err)
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.DeleteReportTemplate(ctx, tenantID, templateID); err != nil {
			log.Printf("Failed to invalidate template cache %s: %v", templateID, err)
		}
	}
	return nil
}

func (s *reportService) ExecuteTemplate(ctx context.Context, tenantID, userID, templateID uuid.UUID, params map[string]interface{}) (*ReportResult, error) {
	template, err := s.GetTemplate(ctx, tenantID, userID, templateID)
	if err != nil {
		return nil, err
	}

	var def QueryDefinition
	if err := json.Unmarshal(template.QueryDefinition, &def); err != nil {
		return nil, errInvalidFilter("stored query definition is malformed")
	}

	merged := map[string]interface{}{}
	if len(template.Parameters) > 0 {
		if err := json.Unmarshal(template.Parameters, &merged); err != nil {
			return nil, errInvalidFilter("stored template parameters are malformed")
		}
	}
	// Caller-supplied parameters win over template defaults.
	for k, v := range params {
		merged[k] = v
	}

	return s.ExecuteReport(ctx, tenantID, def, merged)
}

func (s *reportService) PrebuiltReports() []PrebuiltReport {
	return PrebuiltCatalog()
}

func (s *reportService) ExecutePrebuilt(ctx context.Context, tenantID uuid.UUID, key string, params map[string]interface{}) (*ReportResult, error) {
	for _, report := range PrebuiltCatalog() {
		if report.Key != key {
			continue
		}
		merged := map[string]interface{}{}
		for k, v := range report.Parameters {
			merged[k] = v
		}
		for k, v := range params {
			merged[k] = v
		}
		return s.ExecuteReport(ctx, tenantID, report.Definition, merged)
	}
	return nil, common.NewDomainError(CodeTemplateNotFound, "unknown pre-built report: "+key)
}

// loadTemplate fetches a template, trying the cache first.
func (s *reportService) loadTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*models.ReportTemplate, error) {
	if s.cacheSvc != nil {
		if cached, err := s.cacheSvc.GetReportTemplate(ctx, tenantID, templateID); err == nil && cached != nil {
			return cached, nil
		}
	}

	template, err := s.templateRepo.GetByID(ctx, tenantID, templateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewDomainError(CodeTemplateNotFound, "report template not found")
		}
		log.Printf("Failed to load report template %s: %v", templateID, err)
		return nil, common.SecureErrorMessage("load report template", err)
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetReportTemplate(ctx, tenantID, template, templateCacheTTL); err != nil {
			log.Printf("Failed to cache report template %s: %v", templateID, err)
		}
	}
	return template, nil
}

// applyParameters substitutes {{name}} placeholders in filter values. The
// definition itself is never mutated.
func applyParameters(def QueryDefinition, params map[string]interface{}) (QueryDefinition, error) {
	if len(def.Filters) == 0 {
		return def, nil
	}

	filters := make([]Filter, len(def.Filters))
	copy(filters, def.Filters)
	for i, filter := range filters {
		value, err := resolveParameterValue(filter.Value, params)
		if err != nil {
			return def, err
		}
		filters[i].Value = value
	}
	def.Filters = filters
	return def, nil
}

func resolveParameterValue(value interface{}, params map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		if strings.HasPrefix(v, "{{") && strings.HasSuffix(v, "}}") {
			name := strings.TrimSpace(v[2 : len(v)-2])
			resolved, ok := params[name]
			if !ok {
				return nil, errInvalidFilter("missing report parameter: " + name)
			}
			return resolved, nil
		}
		return v, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			resolved, err := resolveParameterValue(item, params)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}

func marshalParameters(params map[string]interface{}) (json.RawMessage, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	return json.Marshal(params)
}

func wrapExecutionError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return common.WrapDomainError(CodeQueryTimeout, "report query exceeded its time budget", err)
	}
	return common.WrapDomainError(CodeQueryExecution, "report query failed", err)
}

// columnLabel turns a column name into a display label: underscores become
// spaces and each word is capitalized.
func columnLabel(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
