package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lexmart/internal/models"
	"lexmart/internal/repositories"
	"lexmart/internal/tax"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/suite"
)

type stubClientRepo struct {
	clients map[uuid.UUID]*models.Client
}

func (r *stubClientRepo) Create(ctx context.Context, client *models.Client) error {
	r.clients[client.ID] = client
	return nil
}

func (r *stubClientRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	client, ok := r.clients[id]
	if !ok || client.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	return client, nil
}

func (r *stubClientRepo) Update(ctx context.Context, client *models.Client) error { return nil }

func (r *stubClientRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error { return nil }

func (r *stubClientRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error) {
	return nil, nil
}

type stubCaseRepo struct {
	cases map[uuid.UUID]*models.Case
}

func (r *stubCaseRepo) Create(ctx context.Context, legalCase *models.Case) error { return nil }

func (r *stubCaseRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Case, error) {
	legalCase, ok := r.cases[id]
	if !ok || legalCase.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	return legalCase, nil
}

func (r *stubCaseRepo) Update(ctx context.Context, legalCase *models.Case) error { return nil }

func (r *stubCaseRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error { return nil }

func (r *stubCaseRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Case, error) {
	return nil, nil
}

func (r *stubCaseRepo) GetByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*models.Case, error) {
	return nil, nil
}

type stubInvoiceRepo struct {
	invoices      map[uuid.UUID]*models.Invoice
	nextNumber    int
	statusUpdates map[uuid.UUID]string
	deleted       map[uuid.UUID]bool
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{
		invoices:      make(map[uuid.UUID]*models.Invoice),
		nextNumber:    1,
		statusUpdates: make(map[uuid.UUID]string),
		deleted:       make(map[uuid.UUID]bool),
	}
}

func (r *stubInvoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	r.invoices[invoice.ID] = invoice
	return nil
}

func (r *stubInvoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	invoice, ok := r.invoices[id]
	if !ok || invoice.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	return invoice, nil
}

func (r *stubInvoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	r.invoices[invoice.ID] = invoice
	return nil
}

func (r *stubInvoiceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	delete(r.invoices, id)
	r.deleted[id] = true
	return nil
}

func (r *stubInvoiceRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	return nil, nil
}

func (r *stubInvoiceRepo) GetInvoicesByTenantAndDateRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]*models.Invoice, error) {
	return nil, nil
}

func (r *stubInvoiceRepo) GetInvoicesByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*models.Invoice, error) {
	return nil, nil
}

func (r *stubInvoiceRepo) GetUnpaidInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	var unpaid []*models.Invoice
	for _, invoice := range r.invoices {
		if invoice.TenantID == tenantID && invoice.Status == InvoiceStatusUnpaid {
			unpaid = append(unpaid, invoice)
		}
	}
	return unpaid, nil
}

func (r *stubInvoiceRepo) GetGSTReportData(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]repositories.GSTReportRow, error) {
	return nil, nil
}

func (r *stubInvoiceRepo) UpdateInvoiceStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error {
	r.statusUpdates[invoiceID] = status
	if invoice, ok := r.invoices[invoiceID]; ok {
		invoice.Status = status
	}
	return nil
}

func (r *stubInvoiceRepo) GenerateInvoiceNumber(ctx context.Context, tenantID uuid.UUID, issuedDate time.Time) (string, error) {
	number := r.nextNumber
	r.nextNumber++
	return fmt.Sprintf("INV-%d-%06d", issuedDate.Year(), number), nil
}

type InvoiceServiceTestSuite struct {
	suite.Suite
	invoiceRepo *stubInvoiceRepo
	clientRepo  *stubClientRepo
	caseRepo    *stubCaseRepo
	service     InvoiceServiceInterface
	tenantID    uuid.UUID
	ctx         context.Context
}

func (s *InvoiceServiceTestSuite) SetupTest() {
	s.invoiceRepo = newStubInvoiceRepo()
	s.clientRepo = &stubClientRepo{clients: make(map[uuid.UUID]*models.Client)}
	s.caseRepo = &stubCaseRepo{cases: make(map[uuid.UUID]*models.Case)}
	s.service = NewInvoiceService(s.invoiceRepo, s.clientRepo, s.caseRepo, nil, tax.DefaultConfig())
	s.tenantID = uuid.New()
	s.ctx = context.Background()
}

func (s *InvoiceServiceTestSuite) addClient(clientType, stateCode string, tdsApplicable bool) *models.Client {
	client := &models.Client{
		ID:            uuid.New(),
		TenantID:      s.tenantID,
		Name:          "Acme Legal Services",
		ClientType:    clientType,
		StateCode:     &stateCode,
		TDSApplicable: tdsApplicable,
		Status:        "active",
	}
	s.clientRepo.clients[client.ID] = client
	return client
}

func (s *InvoiceServiceTestSuite) TestCreateInvoiceIntraState() {
	client := s.addClient(models.ClientTypeIndividual, "29", false)

	invoice, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: 10000,
	})

	s.Require().NoError(err)
	s.Equal(InvoiceStatusUnpaid, invoice.Status)
	s.Equal(10000.0, invoice.Subtotal)
	s.Equal(900.0, *invoice.CGST)
	s.Equal(900.0, *invoice.SGST)
	s.Equal(0.0, *invoice.IGST)
	s.Equal(0.0, *invoice.TDSAmount)
	s.Equal(1800.0, invoice.TotalTax)
	s.Equal(11800.0, invoice.TotalAmount)
	s.Equal(invoice.IssuedDate.AddDate(0, 0, 30), invoice.DueDate)
}

func (s *InvoiceServiceTestSuite) TestCreateInvoiceInterState() {
	client := s.addClient(models.ClientTypeIndividual, "27", false)

	invoice, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: 10000,
	})

	s.Require().NoError(err)
	s.Equal(0.0, *invoice.CGST)
	s.Equal(0.0, *invoice.SGST)
	s.Equal(1800.0, *invoice.IGST)
	s.Equal(11800.0, invoice.TotalAmount)
}

func (s *InvoiceServiceTestSuite) TestCreateInvoiceTDSWithholding() {
	client := s.addClient(models.ClientTypeCompany, "29", true)

	invoice, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: 10000,
	})

	s.Require().NoError(err)
	s.Equal(1000.0, *invoice.TDSAmount)
	// TDS reduces the amount payable, not the tax liability
	s.Equal(1800.0, invoice.TotalTax)
	s.Equal(10800.0, invoice.TotalAmount)
}

func (s *InvoiceServiceTestSuite) TestCreateInvoiceTDSIgnoredForIndividuals() {
	client := s.addClient(models.ClientTypeIndividual, "29", true)

	invoice, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: 10000,
	})

	s.Require().NoError(err)
	s.Equal(0.0, *invoice.TDSAmount)
	s.Equal(11800.0, invoice.TotalAmount)
}

func (s *InvoiceServiceTestSuite) TestCreateInvoiceNegativeSubtotal() {
	client := s.addClient(models.ClientTypeIndividual, "29", false)

	_, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: -100,
	})
	s.Error(err)
}

func (s *InvoiceServiceTestSuite) TestCreateInvoiceSubtotalCap() {
	client := s.addClient(models.ClientTypeIndividual, "29", false)

	_, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: maxInvoiceSubtotal + 1,
	})
	s.Error(err)
}

func (s *InvoiceServiceTestSuite) TestCreateInvoiceUnknownClient() {
	_, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: uuid.New(),
		Subtotal: 1000,
	})
	s.Error(err)
}

func (s *InvoiceServiceTestSuite) TestCreateInvoiceUnknownCase() {
	client := s.addClient(models.ClientTypeIndividual, "29", false)
	caseID := uuid.New()

	_, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		CaseID:   &caseID,
		Subtotal: 1000,
	})
	s.Error(err)
}

func (s *InvoiceServiceTestSuite) TestCreateInvoiceGSTINDefaultsFromClient() {
	gstin := "29ABCDE1234F1Z5"
	client := s.addClient(models.ClientTypeCompany, "29", false)
	client.GSTIN = &gstin

	invoice, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: 5000,
	})

	s.Require().NoError(err)
	s.Require().NotNil(invoice.GSTIN)
	s.Equal(gstin, *invoice.GSTIN)
}

func (s *InvoiceServiceTestSuite) TestRecalculateInvoice() {
	client := s.addClient(models.ClientTypeIndividual, "29", false)
	invoice, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: 10000,
	})
	s.Require().NoError(err)

	updated, err := s.service.RecalculateInvoice(s.ctx, s.tenantID, invoice.ID, 20000)
	s.Require().NoError(err)
	s.Equal(20000.0, updated.Subtotal)
	s.Equal(1800.0, *updated.CGST)
	s.Equal(23600.0, updated.TotalAmount)
}

func (s *InvoiceServiceTestSuite) TestRecalculateRejectedForPaidInvoice() {
	client := s.addClient(models.ClientTypeIndividual, "29", false)
	invoice, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: 10000,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.UpdateInvoiceStatus(s.ctx, s.tenantID, invoice.ID, InvoiceStatusPaid))

	_, err = s.service.RecalculateInvoice(s.ctx, s.tenantID, invoice.ID, 20000)
	s.Error(err)
	s.Contains(err.Error(), "only unpaid invoices")
}

func (s *InvoiceServiceTestSuite) TestMarkPaidSetsPaidDate() {
	client := s.addClient(models.ClientTypeIndividual, "29", false)
	invoice, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: 10000,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.UpdateInvoiceStatus(s.ctx, s.tenantID, invoice.ID, InvoiceStatusPaid))

	stored := s.invoiceRepo.invoices[invoice.ID]
	s.Equal(InvoiceStatusPaid, stored.Status)
	s.NotNil(stored.PaidDate)
}

func (s *InvoiceServiceTestSuite) TestStatusTransitions() {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{InvoiceStatusUnpaid, InvoiceStatusPaid, true},
		{InvoiceStatusUnpaid, InvoiceStatusOverdue, true},
		{InvoiceStatusUnpaid, InvoiceStatusCancelled, true},
		{InvoiceStatusOverdue, InvoiceStatusPaid, true},
		{InvoiceStatusOverdue, InvoiceStatusCancelled, true},
		{InvoiceStatusOverdue, InvoiceStatusUnpaid, false},
		{InvoiceStatusPaid, InvoiceStatusUnpaid, false},
		{InvoiceStatusPaid, InvoiceStatusCancelled, false},
		{InvoiceStatusCancelled, InvoiceStatusUnpaid, false},
		{InvoiceStatusCancelled, InvoiceStatusPaid, false},
	}

	client := s.addClient(models.ClientTypeIndividual, "29", false)
	for _, tc := range cases {
		invoice, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
			ClientID: client.ID,
			Subtotal: 1000,
		})
		s.Require().NoError(err)
		s.invoiceRepo.invoices[invoice.ID].Status = tc.from

		err = s.service.UpdateInvoiceStatus(s.ctx, s.tenantID, invoice.ID, tc.to)
		if tc.allowed {
			s.NoError(err, "%s -> %s should be allowed", tc.from, tc.to)
		} else {
			s.Error(err, "%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoiceStatusRejectsUnknownStatus() {
	client := s.addClient(models.ClientTypeIndividual, "29", false)
	invoice, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: 1000,
	})
	s.Require().NoError(err)

	s.Error(s.service.UpdateInvoiceStatus(s.ctx, s.tenantID, invoice.ID, "refunded"))
}

func (s *InvoiceServiceTestSuite) TestDeletePaidInvoiceRejected() {
	client := s.addClient(models.ClientTypeIndividual, "29", false)
	invoice, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: 1000,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.service.UpdateInvoiceStatus(s.ctx, s.tenantID, invoice.ID, InvoiceStatusPaid))

	err = s.service.DeleteInvoice(s.ctx, s.tenantID, invoice.ID)
	s.Error(err)
	s.False(s.invoiceRepo.deleted[invoice.ID])
}

func (s *InvoiceServiceTestSuite) TestDeleteUnpaidInvoice() {
	client := s.addClient(models.ClientTypeIndividual, "29", false)
	invoice, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: 1000,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteInvoice(s.ctx, s.tenantID, invoice.ID))
	s.True(s.invoiceRepo.deleted[invoice.ID])
}

func (s *InvoiceServiceTestSuite) TestMarkOverdueInvoices() {
	client := s.addClient(models.ClientTypeIndividual, "29", false)

	pastDue, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID:   client.ID,
		Subtotal:   1000,
		IssuedDate: time.Now().AddDate(0, -2, 0),
	})
	s.Require().NoError(err)

	current, err := s.service.CreateInvoice(s.ctx, s.tenantID, CreateInvoiceInput{
		ClientID: client.ID,
		Subtotal: 1000,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.MarkOverdueInvoices(s.ctx, s.tenantID))

	s.Equal(InvoiceStatusOverdue, s.invoiceRepo.invoices[pastDue.ID].Status)
	s.Equal(InvoiceStatusUnpaid, s.invoiceRepo.invoices[current.ID].Status)
}

func (s *InvoiceServiceTestSuite) TestPreviewTaxDoesNotPersist() {
	client := s.addClient(models.ClientTypeCompany, "27", true)

	result, err := s.service.PreviewTax(s.ctx, s.tenantID, client.ID, 10000)
	s.Require().NoError(err)
	s.Equal("1800", result.IGST.String())
	s.Equal("1000", result.TDSAmount.String())
	s.Equal("10800", result.GrandTotal.String())
	s.Empty(s.invoiceRepo.invoices)
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}
