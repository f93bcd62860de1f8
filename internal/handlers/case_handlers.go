package handlers

import (
	"net/http"
	"time"

	"lexmart/internal/common"
	"lexmart/internal/models"
	"lexmart/internal/services"

	"github.com/labstack/echo/v4"
)

// CaseHandlers handles HTTP requests for legal cases
type CaseHandlers struct {
	caseService services.CaseServiceInterface
}

// NewCaseHandlers creates a new case handlers instance
func NewCaseHandlers(caseService services.CaseServiceInterface) *CaseHandlers {
	return &CaseHandlers{caseService: caseService}
}

type caseRequest struct {
	ClientID     string  `json:"client_id"`
	CaseNumber   string  `json:"case_number"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	PracticeArea *string `json:"practice_area"`
	CourtName    *string `json:"court_name"`
	Status       string  `json:"status"`
	AssignedTo   *string `json:"assigned_to"`
	OpenedDate   *string `json:"opened_date"`
}

// CreateCase handles POST /cases
func (h *CaseHandlers) CreateCase(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req caseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	clientID, err := common.ValidateUUID(req.ClientID, "client_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	legalCase := &models.Case{
		TenantID:     tenantID,
		ClientID:     clientID,
		CaseNumber:   req.CaseNumber,
		Title:        req.Title,
		Description:  req.Description,
		PracticeArea: req.PracticeArea,
		CourtName:    req.CourtName,
		Status:       req.Status,
	}

	if req.AssignedTo != nil && *req.AssignedTo != "" {
		assignedTo, err := common.ValidateUUID(*req.AssignedTo, "assigned_to")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		legalCase.AssignedTo = &assignedTo
	}

	if req.OpenedDate != nil && *req.OpenedDate != "" {
		opened, err := time.Parse("2006-01-02", *req.OpenedDate)
		if err != nil {
			return common.SendValidationError(c, "opened_date", "must be a YYYY-MM-DD date")
		}
		legalCase.OpenedDate = opened
	}

	if err := h.caseService.CreateCase(ctx, legalCase); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, legalCase)
}

// ListCases handles GET /cases
func (h *CaseHandlers) ListCases(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationParams(c)

	// Optional client filter
	if clientParam := c.QueryParam("client_id"); clientParam != "" {
		clientID, err := common.ValidateUUID(clientParam, "client_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		cases, err := h.caseService.GetCasesByClientID(ctx, tenantID, clientID)
		if err != nil {
			return common.SendServerError(c, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"cases": cases})
	}

	cases, err := h.caseService.ListCases(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"cases":  cases,
		"limit":  limit,
		"offset": offset,
	})
}

// GetCaseByID handles GET /cases/:id
func (h *CaseHandlers) GetCaseByID(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	caseID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	legalCase, err := h.caseService.GetCaseByID(ctx, tenantID, caseID)
	if err != nil {
		return common.SendNotFoundError(c, "case")
	}

	return c.JSON(http.StatusOK, legalCase)
}

// UpdateCase handles PUT /cases/:id
func (h *CaseHandlers) UpdateCase(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	caseID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	legalCase, err := h.caseService.GetCaseByID(ctx, tenantID, caseID)
	if err != nil {
		return common.SendNotFoundError(c, "case")
	}

	var req caseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	legalCase.CaseNumber = req.CaseNumber
	legalCase.Title = req.Title
	legalCase.Description = req.Description
	legalCase.PracticeArea = req.PracticeArea
	legalCase.CourtName = req.CourtName
	if req.Status != "" {
		legalCase.Status = req.Status
	}

	if err := h.caseService.UpdateCase(ctx, legalCase); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, legalCase)
}

// CloseCase handles POST /cases/:id/close
func (h *CaseHandlers) CloseCase(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	caseID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.caseService.CloseCase(ctx, tenantID, caseID); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Case closed successfully",
	})
}

// DeleteCase handles DELETE /cases/:id
func (h *CaseHandlers) DeleteCase(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	caseID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.caseService.DeleteCase(ctx, tenantID, caseID); err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Case deleted successfully",
	})
}
