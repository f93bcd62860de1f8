package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"lexmart/internal/analytics"
	"lexmart/internal/common"
	"lexmart/internal/models"
	"lexmart/internal/repositories"
	"lexmart/internal/tax"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice lifecycle states.
const (
	InvoiceStatusUnpaid    = "unpaid"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

const maxInvoiceSubtotal = 10000000.00

// CreateInvoiceInput carries the caller-supplied fields for a new invoice.
// All tax components are derived, never accepted from the caller.
type CreateInvoiceInput struct {
	ClientID   uuid.UUID  `json:"client_id"`
	CaseID     *uuid.UUID `json:"case_id"`
	Subtotal   float64    `json:"subtotal"`
	IssuedDate time.Time  `json:"issued_date"`
	GSTIN      *string    `json:"gstin"`
}

// InvoiceServiceInterface defines the interface for invoice service
type InvoiceServiceInterface interface {
	CreateInvoice(ctx context.Context, tenantID uuid.UUID, input CreateInvoiceInput) (*models.Invoice, error)
	GetInvoiceByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	RecalculateInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID, subtotal float64) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error
	UpdateInvoiceStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error
	GetInvoicesByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*models.Invoice, error)
	GetUnpaidInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	GetGSTReport(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]repositories.GSTReportRow, error)

	// Business logic methods
	PreviewTax(ctx context.Context, tenantID, clientID uuid.UUID, subtotal float64) (*tax.Result, error)
	MarkOverdueInvoices(ctx context.Context, tenantID uuid.UUID) error
	BillingAnalytics(ctx context.Context, tenantID uuid.UUID) (*analytics.BillingSnapshot, error)
}

type invoiceService struct {
	invoiceRepo  repositories.InvoiceRepository
	clientRepo   repositories.ClientRepository
	caseRepo     repositories.CaseRepository
	analyticsSvc *analytics.Service
	calculator   *tax.Calculator
	gstRate      float64
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(invoiceRepo repositories.InvoiceRepository, clientRepo repositories.ClientRepository, caseRepo repositories.CaseRepository, analyticsSvc *analytics.Service, taxCfg tax.Config) InvoiceServiceInterface {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		caseRepo:     caseRepo,
		analyticsSvc: analyticsSvc,
		calculator:   tax.NewCalculator(taxCfg),
		gstRate:      taxCfg.GSTRate.InexactFloat64(),
	}
}

func validateSubtotal(subtotal float64) error {
	if subtotal < 0 {
		return fmt.Errorf("subtotal cannot be negative")
	}
	if subtotal > maxInvoiceSubtotal {
		return fmt.Errorf("subtotal cannot exceed ₹1,00,00,000")
	}
	return nil
}

// computeTaxes derives the full tax breakdown for a client and subtotal.
func (s *invoiceService) computeTaxes(client *models.Client, subtotal float64) (*tax.Result, error) {
	result, err := s.calculator.Calculate(tax.Input{
		Subtotal:        decimal.NewFromFloat(subtotal),
		IsInterState:    s.calculator.IsInterState(common.SafeString(client.StateCode)),
		IsTDSApplicable: client.TDSApplicable,
		ClientType:      client.ClientType,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateInvoice derives taxes from the client's profile, assigns a
// sequential invoice number and persists the invoice as unpaid.
func (s *invoiceService) CreateInvoice(ctx context.Context, tenantID uuid.UUID, input CreateInvoiceInput) (*models.Invoice, error) {
	if err := validateSubtotal(input.Subtotal); err != nil {
		return nil, common.SecureErrorMessage("subtotal validation", err)
	}

	client, err := s.clientRepo.GetByID(ctx, tenantID, input.ClientID)
	if err != nil {
		return nil, common.SecureErrorMessage("load client for invoice", err)
	}

	if input.CaseID != nil {
		if _, err := s.caseRepo.GetByID(ctx, tenantID, *input.CaseID); err != nil {
			return nil, common.SecureErrorMessage("load case for invoice", err)
		}
	}

	// Invoice GSTIN defaults to the client's registration.
	gstin := input.GSTIN
	if gstin == nil {
		gstin = client.GSTIN
	}
	if gstin != nil {
		if err := common.ValidateGSTIN(common.SafeString(gstin), "GSTIN"); err != nil {
			return nil, common.SecureErrorMessage("GSTIN validation", err)
		}
	}

	taxes, err := s.computeTaxes(client, input.Subtotal)
	if err != nil {
		return nil, err
	}

	issuedDate := input.IssuedDate
	if issuedDate.IsZero() {
		issuedDate = time.Now()
	}

	invoiceNumber, err := s.invoiceRepo.GenerateInvoiceNumber(ctx, tenantID, issuedDate)
	if err != nil {
		return nil, common.SecureErrorMessage("generate invoice number", err)
	}

	cgst := taxes.CGST.InexactFloat64()
	sgst := taxes.SGST.InexactFloat64()
	igst := taxes.IGST.InexactFloat64()
	tds := taxes.TDSAmount.InexactFloat64()
	gstRate := s.gstRate

	now := time.Now()
	invoice := &models.Invoice{
		ID:            uuid.New(),
		TenantID:      tenantID,
		ClientID:      input.ClientID,
		CaseID:        input.CaseID,
		InvoiceNumber: invoiceNumber,
		GSTIN:         gstin,
		Subtotal:      input.Subtotal,
		GSTRate:       &gstRate,
		CGST:          &cgst,
		SGST:          &sgst,
		IGST:          &igst,
		TDSAmount:     &tds,
		TotalTax:      taxes.TotalTax.InexactFloat64(),
		TotalAmount:   taxes.GrandTotal.InexactFloat64(),
		Status:        InvoiceStatusUnpaid,
		IssuedDate:    issuedDate,
		DueDate:       issuedDate.AddDate(0, 0, 30),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, common.SecureErrorMessage("create invoice", err)
	}

	s.refreshAnalytics(tenantID)
	return invoice, nil
}

// GetInvoiceByID retrieves an invoice by ID
func (s *invoiceService) GetInvoiceByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*models.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
}

// ListInvoices retrieves invoices with pagination
func (s *invoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	return s.invoiceRepo.List(ctx, tenantID, limit, offset)
}

// RecalculateInvoice replaces the subtotal of an unpaid invoice and rederives
// every tax component from the client's current profile.
func (s *invoiceService) RecalculateInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID, subtotal float64) (*models.Invoice, error) {
	if err := validateSubtotal(subtotal); err != nil {
		return nil, common.SecureErrorMessage("subtotal validation", err)
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, common.SecureErrorMessage("load invoice for recalculation", err)
	}
	if invoice.Status != InvoiceStatusUnpaid {
		return nil, fmt.Errorf("only unpaid invoices can be recalculated, current status is %s", invoice.Status)
	}

	client, err := s.clientRepo.GetByID(ctx, tenantID, invoice.ClientID)
	if err != nil {
		return nil, common.SecureErrorMessage("load client for recalculation", err)
	}

	taxes, err := s.computeTaxes(client, subtotal)
	if err != nil {
		return nil, err
	}

	cgst := taxes.CGST.InexactFloat64()
	sgst := taxes.SGST.InexactFloat64()
	igst := taxes.IGST.InexactFloat64()
	tds := taxes.TDSAmount.InexactFloat64()
	gstRate := s.gstRate

	invoice.Subtotal = subtotal
	invoice.GSTRate = &gstRate
	invoice.CGST = &cgst
	invoice.SGST = &sgst
	invoice.IGST = &igst
	invoice.TDSAmount = &tds
	invoice.TotalTax = taxes.TotalTax.InexactFloat64()
	invoice.TotalAmount = taxes.GrandTotal.InexactFloat64()
	invoice.UpdatedAt = time.Now()

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, common.SecureErrorMessage("update invoice", err)
	}

	s.refreshAnalytics(tenantID)
	return invoice, nil
}

// DeleteInvoice deletes an invoice. Paid invoices are immutable records and
// must be cancelled instead.
func (s *invoiceService) DeleteInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return common.SecureErrorMessage("load invoice for deletion", err)
	}
	if invoice.Status == InvoiceStatusPaid {
		return fmt.Errorf("paid invoices cannot be deleted")
	}

	if err := s.invoiceRepo.Delete(ctx, tenantID, invoiceID); err != nil {
		return common.SecureErrorMessage("delete invoice", err)
	}

	s.refreshAnalytics(tenantID)
	return nil
}

// isValidStatusTransition validates invoice status transitions
func (s *invoiceService) isValidStatusTransition(currentStatus, newStatus string) bool {
	validTransitions := map[string][]string{
		InvoiceStatusUnpaid:    {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
		InvoiceStatusPaid:      {},
		InvoiceStatusOverdue:   {InvoiceStatusPaid, InvoiceStatusCancelled},
		InvoiceStatusCancelled: {},
	}

	allowed, exists := validTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

// UpdateInvoiceStatus updates invoice status and triggers analytics updates
func (s *invoiceService) UpdateInvoiceStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error {
	if err := common.ValidateInvoiceStatus(status); err != nil {
		return err
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return common.SecureErrorMessage("get invoice for status update", err)
	}

	if !s.isValidStatusTransition(invoice.Status, status) {
		return fmt.Errorf("invalid status transition from %s to %s", invoice.Status, status)
	}

	if status == InvoiceStatusPaid {
		now := time.Now()
		invoice.Status = status
		invoice.PaidDate = &now
		invoice.UpdatedAt = now

		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return common.SecureErrorMessage("update invoice with paid date", err)
		}
	} else {
		if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, tenantID, invoiceID, status); err != nil {
			return common.SecureErrorMessage("update invoice status", err)
		}
	}

	s.refreshAnalytics(tenantID)
	return nil
}

// GetInvoicesByClientID retrieves invoices for a specific client
func (s *invoiceService) GetInvoicesByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*models.Invoice, error) {
	return s.invoiceRepo.GetInvoicesByClientID(ctx, tenantID, clientID)
}

// GetUnpaidInvoices retrieves unpaid invoices
func (s *invoiceService) GetUnpaidInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	return s.invoiceRepo.GetUnpaidInvoices(ctx, tenantID, limit, offset)
}

// GetGSTReport returns the per-invoice GST rows for a filing period.
func (s *invoiceService) GetGSTReport(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]repositories.GSTReportRow, error) {
	if err := common.ValidateDateRange(startDate, endDate); err != nil {
		return nil, common.SecureErrorMessage("validate GST report range", err)
	}
	return s.invoiceRepo.GetGSTReportData(ctx, tenantID, startDate, endDate)
}

// PreviewTax computes the tax breakdown for a client and subtotal without
// persisting anything.
func (s *invoiceService) PreviewTax(ctx context.Context, tenantID, clientID uuid.UUID, subtotal float64) (*tax.Result, error) {
	if err := validateSubtotal(subtotal); err != nil {
		return nil, common.SecureErrorMessage("subtotal validation", err)
	}

	client, err := s.clientRepo.GetByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, common.SecureErrorMessage("load client for tax preview", err)
	}
	return s.computeTaxes(client, subtotal)
}

// MarkOverdueInvoices marks unpaid invoices as overdue once past due date.
func (s *invoiceService) MarkOverdueInvoices(ctx context.Context, tenantID uuid.UUID) error {
	// One page covers a firm's realistic open invoice volume.
	invoices, err := s.invoiceRepo.GetUnpaidInvoices(ctx, tenantID, 1000, 0)
	if err != nil {
		return common.SecureErrorMessage("retrieve invoices for overdue marking", err)
	}

	now := time.Now()
	for _, invoice := range invoices {
		if invoice.Status == InvoiceStatusUnpaid && now.After(invoice.DueDate) {
			if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, tenantID, invoice.ID, InvoiceStatusOverdue); err != nil {
				log.Printf("Failed to mark invoice %s as overdue: %v", invoice.ID, err)
			}
		}
	}

	return nil
}

// BillingAnalytics returns the tenant's billing snapshot.
func (s *invoiceService) BillingAnalytics(ctx context.Context, tenantID uuid.UUID) (*analytics.BillingSnapshot, error) {
	return s.analyticsSvc.TenantBilling(ctx, tenantID)
}

// refreshAnalytics recomputes the billing snapshot asynchronously.
func (s *invoiceService) refreshAnalytics(tenantID uuid.UUID) {
	if s.analyticsSvc == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in billing analytics refresh: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.analyticsSvc.CalculateTenantBilling(ctx, tenantID); err != nil {
			log.Printf("Failed to refresh billing analytics for tenant %s: %v", tenantID, err)
		}
	}()
}
