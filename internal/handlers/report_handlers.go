package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"lexmart/internal/caching"
	"lexmart/internal/common"
	"lexmart/internal/reports"
	"lexmart/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	reportRateLimit  = 30 // executions per user per window
	reportRateWindow = time.Minute
	exportLinkExpiry = time.Hour
)

// ReportHandlers handles HTTP requests for custom and pre-built reports
type ReportHandlers struct {
	reportService reports.ReportService
	cacheSvc      caching.CacheService
	minioSvc      services.MinioService
}

// NewReportHandlers creates a new report handlers instance
func NewReportHandlers(reportService reports.ReportService, cacheSvc caching.CacheService, minioSvc services.MinioService) *ReportHandlers {
	return &ReportHandlers{
		reportService: reportService,
		cacheSvc:      cacheSvc,
		minioSvc:      minioSvc,
	}
}

// respondReportError maps typed report errors onto HTTP statuses, keeping
// the stable error code in the response envelope.
func respondReportError(c echo.Context, err error) error {
	var domainErr *common.DomainError
	if !errors.As(err, &domainErr) {
		return common.SendServerError(c, err.Error())
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case reports.CodeUnknownDataSource, reports.CodeInvalidFilter, reports.CodeUnsupportedFormat:
		status = http.StatusBadRequest
	case reports.CodeAccessDenied:
		status = http.StatusForbidden
	case reports.CodeTemplateNotFound:
		status = http.StatusNotFound
	case reports.CodeQueryTimeout:
		status = http.StatusGatewayTimeout
	}

	return c.JSON(status, common.CreateErrorResponse(domainErr.Code, domainErr.Message, nil))
}

// checkRateLimit enforces the per-user report execution budget. A cache
// outage never blocks report execution.
func (h *ReportHandlers) checkRateLimit(c echo.Context) error {
	if h.cacheSvc == nil {
		return nil
	}
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return nil
	}
	key := "report_exec:" + userID.String()

	// The post-increment count decides admission, so concurrent requests
	// cannot race past the budget between a read and a write.
	count, err := h.cacheSvc.IncrementRateLimit(ctx, key, reportRateWindow)
	if err != nil {
		log.Printf("Rate limit check failed for user %s: %v", userID, err)
		return nil
	}
	if count > reportRateLimit {
		return echo.NewHTTPError(http.StatusTooManyRequests, "report execution limit reached, retry later")
	}
	return nil
}

// ListDataSources handles GET /reports/data-sources
func (h *ReportHandlers) ListDataSources(c echo.Context) error {
	return c.JSON(http.StatusOK, reports.DefaultRegistry())
}

// PreviewQuery handles POST /reports/preview. It compiles a definition to
// SQL without executing it, for the report designer UI.
func (h *ReportHandlers) PreviewQuery(c echo.Context) error {
	var def reports.QueryDefinition
	if err := c.Bind(&def); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	sql, args, err := h.reportService.BuildQuery(def)
	if err != nil {
		return respondReportError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sql":  sql,
		"args": args,
	})
}

// ExecuteReport handles POST /reports/execute
func (h *ReportHandlers) ExecuteReport(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	if err := h.checkRateLimit(c); err != nil {
		return err
	}

	var req struct {
		Definition reports.QueryDefinition `json:"query_definition"`
		Parameters map[string]interface{}  `json:"parameters"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.reportService.ExecuteReport(ctx, tenantID, req.Definition, req.Parameters)
	if err != nil {
		return respondReportError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// ExportReport handles POST /reports/export. The rendered file is streamed
// back directly, or uploaded to object storage with a presigned link when
// ?upload=true.
func (h *ReportHandlers) ExportReport(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	if err := h.checkRateLimit(c); err != nil {
		return err
	}

	var req struct {
		Definition reports.QueryDefinition `json:"query_definition"`
		Parameters map[string]interface{}  `json:"parameters"`
		Format     string                  `json:"format"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.reportService.ExecuteReport(ctx, tenantID, req.Definition, req.Parameters)
	if err != nil {
		return respondReportError(c, err)
	}

	file, err := reports.Export(result, req.Format)
	if err != nil {
		return respondReportError(c, err)
	}

	if c.QueryParam("upload") == "true" {
		if h.minioSvc == nil {
			return common.SendServerError(c, "Object storage is not configured")
		}

		bucketName := "report-exports"
		objectName := fmt.Sprintf("%s/%d_%s", tenantID.String(), time.Now().UnixNano(), file.Filename)

		if err := h.minioSvc.EnsureBucketExists(ctx, bucketName); err != nil {
			return common.SendServerError(c, "Failed to prepare storage: "+err.Error())
		}
		if err := h.minioSvc.UploadObject(ctx, bucketName, objectName, file.ContentType, bytes.NewReader(file.Data), int64(len(file.Data))); err != nil {
			return common.SendServerError(c, "Failed to upload export: "+err.Error())
		}

		url, err := h.minioSvc.GetPresignedURL(ctx, bucketName, objectName, exportLinkExpiry)
		if err != nil {
			return common.SendServerError(c, "Failed to generate download URL: "+err.Error())
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"download_url": url,
			"filename":     file.Filename,
			"expires_in":   "1 hour",
		})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}

// CreateTemplate handles POST /reports/templates
func (h *ReportHandlers) CreateTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var input reports.TemplateInput
	if err := c.Bind(&input); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	template, err := h.reportService.SaveTemplate(ctx, tenantID, userID, input)
	if err != nil {
		return respondReportError(c, err)
	}

	return c.JSON(http.StatusCreated, template)
}

// ListTemplates handles GET /reports/templates
func (h *ReportHandlers) ListTemplates(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationParams(c)

	templates, err := h.reportService.ListTemplates(ctx, tenantID, userID, limit, offset)
	if err != nil {
		return respondReportError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"templates": templates,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetTemplate handles GET /reports/templates/:id
func (h *ReportHandlers) GetTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	templateID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	template, err := h.reportService.GetTemplate(ctx, tenantID, userID, templateID)
	if err != nil {
		return respondReportError(c, err)
	}

	return c.JSON(http.StatusOK, template)
}

// UpdateTemplate handles PUT /reports/templates/:id
func (h *ReportHandlers) UpdateTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	templateID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var input reports.TemplateInput
	if err := c.Bind(&input); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	template, err := h.reportService.UpdateTemplate(ctx, tenantID, userID, templateID, input)
	if err != nil {
		return respondReportError(c, err)
	}

	return c.JSON(http.StatusOK, template)
}

// DeleteTemplate handles DELETE /reports/templates/:id
func (h *ReportHandlers) DeleteTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	templateID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.reportService.DeleteTemplate(ctx, tenantID, userID, templateID); err != nil {
		return respondReportError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Report template deleted successfully",
	})
}

// ExecuteTemplate handles POST /reports/templates/:id/execute
func (h *ReportHandlers) ExecuteTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	if err := h.checkRateLimit(c); err != nil {
		return err
	}

	templateID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Parameters map[string]interface{} `json:"parameters"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.reportService.ExecuteTemplate(ctx, tenantID, userID, templateID, req.Parameters)
	if err != nil {
		return respondReportError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// ListPrebuiltReports handles GET /reports/prebuilt
func (h *ReportHandlers) ListPrebuiltReports(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"reports": h.reportService.PrebuiltReports(),
	})
}

// ExecutePrebuiltReport handles POST /reports/prebuilt/:key/execute
func (h *ReportHandlers) ExecutePrebuiltReport(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	if err := h.checkRateLimit(c); err != nil {
		return err
	}

	var req struct {
		Parameters map[string]interface{} `json:"parameters"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.reportService.ExecutePrebuilt(ctx, tenantID, c.Param("key"), req.Parameters)
	if err != nil {
		return respondReportError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
