package handlers

import (
	"net/http"

	"lexmart/internal/common"
	"lexmart/internal/models"
	"lexmart/internal/services"

	"github.com/labstack/echo/v4"
)

// ClientHandlers handles HTTP requests for clients
type ClientHandlers struct {
	clientService  services.ClientServiceInterface
	invoiceService services.InvoiceServiceInterface
}

// NewClientHandlers creates a new client handlers instance
func NewClientHandlers(clientService services.ClientServiceInterface, invoiceService services.InvoiceServiceInterface) *ClientHandlers {
	return &ClientHandlers{
		clientService:  clientService,
		invoiceService: invoiceService,
	}
}

type clientRequest struct {
	Name           string  `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	ClientType     string  `json:"client_type"`
	GSTIN          *string `json:"gstin"`
	StateCode      *string `json:"state_code"`
	TDSApplicable  bool    `json:"tds_applicable"`
	BillingAddress *string `json:"billing_address"`
	Status         string  `json:"status"`
}

// CreateClient handles POST /clients
func (h *ClientHandlers) CreateClient(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	client := &models.Client{
		TenantID:       tenantID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		ClientType:     req.ClientType,
		GSTIN:          req.GSTIN,
		StateCode:      req.StateCode,
		TDSApplicable:  req.TDSApplicable,
		BillingAddress: req.BillingAddress,
		Status:         req.Status,
	}

	if err := h.clientService.CreateClient(ctx, client); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, client)
}

// ListClients handles GET /clients
func (h *ClientHandlers) ListClients(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationParams(c)

	clients, err := h.clientService.ListClients(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"clients": clients,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetClientByID handles GET /clients/:id
func (h *ClientHandlers) GetClientByID(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	clientID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	client, err := h.clientService.GetClientByID(ctx, tenantID, clientID)
	if err != nil {
		return common.SendNotFoundError(c, "client")
	}

	return c.JSON(http.StatusOK, client)
}

// UpdateClient handles PUT /clients/:id
func (h *ClientHandlers) UpdateClient(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	clientID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	client, err := h.clientService.GetClientByID(ctx, tenantID, clientID)
	if err != nil {
		return common.SendNotFoundError(c, "client")
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	client.Name = req.Name
	client.Email = req.Email
	client.Phone = req.Phone
	client.ClientType = req.ClientType
	client.GSTIN = req.GSTIN
	client.StateCode = req.StateCode
	client.TDSApplicable = req.TDSApplicable
	client.BillingAddress = req.BillingAddress
	if req.Status != "" {
		client.Status = req.Status
	}

	if err := h.clientService.UpdateClient(ctx, client); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /clients/:id
func (h *ClientHandlers) DeleteClient(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	clientID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.clientService.DeleteClient(ctx, tenantID, clientID); err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Client deleted successfully",
	})
}

// GetClientInvoices handles GET /clients/:id/invoices
func (h *ClientHandlers) GetClientInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	clientID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoices, err := h.invoiceService.GetInvoicesByClientID(ctx, tenantID, clientID)
	if err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
	})
}
