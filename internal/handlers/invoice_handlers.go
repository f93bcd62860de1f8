package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"lexmart/internal/common"
	"lexmart/internal/models"
	"lexmart/internal/services"

	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"
)

// InvoiceHandlers handles HTTP requests for invoices
type InvoiceHandlers struct {
	invoiceService services.InvoiceServiceInterface
	clientService  services.ClientServiceInterface
	minioSvc       services.MinioService
}

// NewInvoiceHandlers creates a new invoice handlers instance
func NewInvoiceHandlers(invoiceService services.InvoiceServiceInterface, clientService services.ClientServiceInterface, minioSvc services.MinioService) *InvoiceHandlers {
	return &InvoiceHandlers{
		invoiceService: invoiceService,
		clientService:  clientService,
		minioSvc:       minioSvc,
	}
}

// CreateInvoice handles POST /invoices
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		ClientID   string  `json:"client_id"`
		CaseID     *string `json:"case_id"`
		Subtotal   float64 `json:"subtotal"`
		IssuedDate *string `json:"issued_date"`
		GSTIN      *string `json:"gstin"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	clientID, err := common.ValidateUUID(req.ClientID, "client_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	input := services.CreateInvoiceInput{
		ClientID: clientID,
		Subtotal: req.Subtotal,
		GSTIN:    req.GSTIN,
	}

	if req.CaseID != nil && *req.CaseID != "" {
		caseID, err := common.ValidateUUID(*req.CaseID, "case_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		input.CaseID = &caseID
	}

	if req.IssuedDate != nil && *req.IssuedDate != "" {
		issued, err := time.Parse("2006-01-02", *req.IssuedDate)
		if err != nil {
			return common.SendValidationError(c, "issued_date", "must be a YYYY-MM-DD date")
		}
		input.IssuedDate = issued
	}

	invoice, err := h.invoiceService.CreateInvoice(ctx, tenantID, input)
	if err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, invoice)
}

// ListInvoices handles GET /invoices
func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationParams(c)

	invoices, err := h.invoiceService.ListInvoices(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetInvoiceByID handles GET /invoices/:id
func (h *InvoiceHandlers) GetInvoiceByID(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.GetInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		return common.SendNotFoundError(c, "invoice")
	}

	return c.JSON(http.StatusOK, invoice)
}

// RecalculateInvoice handles PUT /invoices/:id
func (h *InvoiceHandlers) RecalculateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Subtotal float64 `json:"subtotal"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	invoice, err := h.invoiceService.RecalculateInvoice(ctx, tenantID, invoiceID, req.Subtotal)
	if err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, invoice)
}

// UpdateInvoiceStatus handles PUT /invoices/:id/status
func (h *InvoiceHandlers) UpdateInvoiceStatus(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateInvoiceStatus(req.Status); err != nil {
		return common.SendValidationError(c, "status", err.Error())
	}

	if err := h.invoiceService.UpdateInvoiceStatus(ctx, tenantID, invoiceID, req.Status); err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Invoice status updated successfully",
	})
}

// DeleteInvoice handles DELETE /invoices/:id
func (h *InvoiceHandlers) DeleteInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.invoiceService.DeleteInvoice(ctx, tenantID, invoiceID); err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Invoice deleted successfully",
	})
}

// GetUnpaidInvoices handles GET /invoices/unpaid
func (h *InvoiceHandlers) GetUnpaidInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationParams(c)

	invoices, err := h.invoiceService.GetUnpaidInvoices(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetBillingAnalytics handles GET /invoices/analytics
func (h *InvoiceHandlers) GetBillingAnalytics(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	snapshot, err := h.invoiceService.BillingAnalytics(ctx, tenantID)
	if err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, snapshot)
}

// GetGSTReport handles GET /invoices/gst-report?start_date=...&end_date=...
func (h *InvoiceHandlers) GetGSTReport(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	startDate, err := time.Parse("2006-01-02", c.QueryParam("start_date"))
	if err != nil {
		return common.SendValidationError(c, "start_date", "must be a YYYY-MM-DD date")
	}
	endDate, err := time.Parse("2006-01-02", c.QueryParam("end_date"))
	if err != nil {
		return common.SendValidationError(c, "end_date", "must be a YYYY-MM-DD date")
	}

	rows, err := h.invoiceService.GetGSTReport(ctx, tenantID, startDate, endDate)
	if err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"rows":       rows,
		"start_date": startDate.Format("2006-01-02"),
		"end_date":   endDate.Format("2006-01-02"),
	})
}

// CalculateTax handles POST /tax/calculate. It previews the GST/TDS
// breakdown for a client and subtotal without creating an invoice.
func (h *InvoiceHandlers) CalculateTax(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		ClientID string  `json:"client_id"`
		Subtotal float64 `json:"subtotal"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	clientID, err := common.ValidateUUID(req.ClientID, "client_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	result, err := h.invoiceService.PreviewTax(ctx, tenantID, clientID, req.Subtotal)
	if err != nil {
		return common.SendServerError(c, err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

// GenerateInvoicePDF handles POST /invoices/:id/pdf. The PDF is pushed to
// object storage and a presigned download link is returned.
func (h *InvoiceHandlers) GenerateInvoicePDF(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.GetInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		return common.SendNotFoundError(c, "invoice")
	}

	client, err := h.clientService.GetClientByID(ctx, tenantID, invoice.ClientID)
	if err != nil {
		return common.SendServerError(c, err.Error())
	}

	pdfBytes, err := renderInvoicePDF(invoice, client)
	if err != nil {
		return common.SendServerError(c, fmt.Sprintf("Failed to generate PDF: %v", err))
	}

	bucketName := "invoices"
	objectName := fmt.Sprintf("%s/%s.pdf", tenantID.String(), invoice.InvoiceNumber)

	if err := h.minioSvc.EnsureBucketExists(ctx, bucketName); err != nil {
		return common.SendServerError(c, "Failed to prepare storage: "+err.Error())
	}
	if err := h.minioSvc.UploadObject(ctx, bucketName, objectName, "application/pdf", bytes.NewReader(pdfBytes), int64(len(pdfBytes))); err != nil {
		return common.SendServerError(c, "Failed to upload PDF to storage: "+err.Error())
	}

	pdfURL, err := h.minioSvc.GetPresignedURL(ctx, bucketName, objectName, 24*time.Hour)
	if err != nil {
		return common.SendServerError(c, "Failed to generate download URL: "+err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "PDF generated and uploaded successfully",
		"pdf_url":    pdfURL,
		"expires_in": "24 hours",
	})
}

// renderInvoicePDF creates a printable tax invoice.
func renderInvoicePDF(invoice *models.Invoice, client *models.Client) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "TAX INVOICE")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice Number: %s", invoice.InvoiceNumber))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice Date: %s", invoice.IssuedDate.Format("02-Jan-2006")))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Due Date: %s", invoice.DueDate.Format("02-Jan-2006")))
	pdf.Ln(8)

	if invoice.GSTIN != nil && *invoice.GSTIN != "" {
		pdf.Cell(0, 8, fmt.Sprintf("GSTIN: %s", *invoice.GSTIN))
		pdf.Ln(8)
	}

	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "BILL TO:")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, client.Name)
	pdf.Ln(6)
	if client.BillingAddress != nil && *client.BillingAddress != "" {
		pdf.Cell(0, 6, *client.BillingAddress)
		pdf.Ln(6)
	}
	if client.Email != nil && *client.Email != "" {
		pdf.Cell(0, 6, *client.Email)
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)

	pdf.CellFormat(130, 6, "Professional Fees:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", invoice.Subtotal), "", 0, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 9)
	if invoice.CGST != nil && *invoice.CGST > 0 {
		pdf.CellFormat(130, 5, "CGST:", "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 5, fmt.Sprintf("%.2f", *invoice.CGST), "", 0, "R", false, 0, "")
		pdf.Ln(5)
	}
	if invoice.SGST != nil && *invoice.SGST > 0 {
		pdf.CellFormat(130, 5, "SGST:", "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 5, fmt.Sprintf("%.2f", *invoice.SGST), "", 0, "R", false, 0, "")
		pdf.Ln(5)
	}
	if invoice.IGST != nil && *invoice.IGST > 0 {
		pdf.CellFormat(130, 5, "IGST:", "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 5, fmt.Sprintf("%.2f", *invoice.IGST), "", 0, "R", false, 0, "")
		pdf.Ln(5)
	}
	if invoice.TDSAmount != nil && *invoice.TDSAmount > 0 {
		pdf.CellFormat(130, 5, "Less TDS Withheld:", "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 5, fmt.Sprintf("-%.2f", *invoice.TDSAmount), "", 0, "R", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(130, 8, "AMOUNT PAYABLE:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", invoice.TotalAmount), "", 0, "R", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 5, "Payment is due within 30 days of the invoice date.")
	pdf.Ln(5)
	pdf.Cell(0, 5, "This is a computer generated invoice.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// paginationParams reads limit/offset query params with sane defaults.
func paginationParams(c echo.Context) (int, int) {
	limit := 10
	offset := 0

	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}
