package repositories

import (
	"context"
	"testing"
	"time"

	"lexmart/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func float64Ptr(f float64) *float64 { return &f }

type InvoiceRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     InvoiceRepository
	tenantID uuid.UUID
	clientID uuid.UUID
	context  context.Context
}

func (suite *InvoiceRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewInvoiceRepo(mock)
	suite.tenantID = uuid.New()
	suite.clientID = uuid.New()
	suite.context = context.Background()
}

func (suite *InvoiceRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestInvoiceRepoTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceRepoTestSuite))
}

func (suite *InvoiceRepoTestSuite) sampleInvoice() *models.Invoice {
	issued := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	return &models.Invoice{
		ID:            uuid.New(),
		TenantID:      suite.tenantID,
		ClientID:      suite.clientID,
		InvoiceNumber: "INV-2026-000001",
		GSTIN:         stringPtr("29ABCDE1234F1Z5"),
		Subtotal:      10000,
		GSTRate:       float64Ptr(0.18),
		CGST:          float64Ptr(900),
		SGST:          float64Ptr(900),
		IGST:          float64Ptr(0),
		TDSAmount:     float64Ptr(0),
		TotalTax:      1800,
		TotalAmount:   11800,
		Status:        "unpaid",
		IssuedDate:    issued,
		DueDate:       issued.AddDate(0, 0, 30),
	}
}

func invoiceRowColumns() []string {
	return []string{"id", "tenant_id", "client_id", "case_id", "invoice_number", "gstin", "subtotal", "gst_rate", "cgst", "sgst", "igst", "tds_amount", "total_tax", "total_amount", "status", "issued_date", "paid_date", "due_date", "created_at", "updated_at"}
}

func invoiceRowValues(invoice *models.Invoice) []any {
	now := time.Now()
	return []any{invoice.ID, invoice.TenantID, invoice.ClientID, invoice.CaseID, invoice.InvoiceNumber, invoice.GSTIN, invoice.Subtotal, invoice.GSTRate, invoice.CGST, invoice.SGST, invoice.IGST, invoice.TDSAmount, invoice.TotalTax, invoice.TotalAmount, invoice.Status, invoice.IssuedDate, invoice.PaidDate, invoice.DueDate, now, now}
}

func (suite *InvoiceRepoTestSuite) TestCreate_Success() {
	invoice := suite.sampleInvoice()

	suite.mock.ExpectExec(`
		INSERT INTO invoices \(id, tenant_id, client_id, case_id, invoice_number, gstin, subtotal, gst_rate, cgst, sgst, igst, tds_amount, total_tax, total_amount, status, issued_date, paid_date, due_date, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10, \$11, \$12, \$13, \$14, \$15, \$16, \$17, \$18, NOW\(\), NOW\(\)\)
	`).WithArgs(invoice.ID, invoice.TenantID, invoice.ClientID, invoice.CaseID, invoice.InvoiceNumber, invoice.GSTIN, invoice.Subtotal, invoice.GSTRate, invoice.CGST, invoice.SGST, invoice.IGST, invoice.TDSAmount, invoice.TotalTax, invoice.TotalAmount, invoice.Status, invoice.IssuedDate, invoice.PaidDate, invoice.DueDate).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, invoice)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InvoiceRepoTestSuite) TestGetByID_Success() {
	invoice := suite.sampleInvoice()

	rows := pgxmock.NewRows(invoiceRowColumns()).AddRow(invoiceRowValues(invoice)...)

	suite.mock.ExpectQuery(`SELECT .+ FROM invoices WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID, invoice.ID).
		WillReturnRows(rows)

	got, err := suite.repo.GetByID(suite.context, suite.tenantID, invoice.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), invoice.InvoiceNumber, got.InvoiceNumber)
	assert.Equal(suite.T(), 11800.0, got.TotalAmount)
	assert.Equal(suite.T(), 900.0, *got.CGST)
}

func (suite *InvoiceRepoTestSuite) TestGetByID_NotFound() {
	invoiceID := uuid.New()

	suite.mock.ExpectQuery(`SELECT .+ FROM invoices WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID, invoiceID).
		WillReturnError(pgx.ErrNoRows)

	got, err := suite.repo.GetByID(suite.context, suite.tenantID, invoiceID)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), got)
}

func (suite *InvoiceRepoTestSuite) TestList_Pagination() {
	first := suite.sampleInvoice()
	second := suite.sampleInvoice()
	second.InvoiceNumber = "INV-2026-000002"

	rows := pgxmock.NewRows(invoiceRowColumns()).
		AddRow(invoiceRowValues(first)...).
		AddRow(invoiceRowValues(second)...)

	suite.mock.ExpectQuery(`
		SELECT .+
		FROM invoices
		WHERE tenant_id = \$1
		ORDER BY issued_date DESC
		LIMIT \$2 OFFSET \$3
	`).WithArgs(suite.tenantID, 10, 0).WillReturnRows(rows)

	invoices, err := suite.repo.List(suite.context, suite.tenantID, 10, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), invoices, 2)
}

func (suite *InvoiceRepoTestSuite) TestGetUnpaidInvoices() {
	invoice := suite.sampleInvoice()

	rows := pgxmock.NewRows(invoiceRowColumns()).AddRow(invoiceRowValues(invoice)...)

	suite.mock.ExpectQuery(`
		SELECT .+
		FROM invoices
		WHERE tenant_id = \$1 AND status IN \('unpaid', 'overdue'\)
		ORDER BY due_date ASC
		LIMIT \$2 OFFSET \$3
	`).WithArgs(suite.tenantID, 100, 0).WillReturnRows(rows)

	invoices, err := suite.repo.GetUnpaidInvoices(suite.context, suite.tenantID, 100, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), invoices, 1)
	assert.Equal(suite.T(), "unpaid", invoices[0].Status)
}

func (suite *InvoiceRepoTestSuite) TestGetGSTReportData() {
	invoice := suite.sampleInvoice()
	startDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "client_id", "invoice_number", "gstin", "subtotal", "gst_rate", "cgst", "sgst", "igst", "tds_amount", "total_amount", "status", "issued_date"}).
		AddRow(invoice.ID, invoice.ClientID, invoice.InvoiceNumber, invoice.GSTIN, invoice.Subtotal, invoice.GSTRate, invoice.CGST, invoice.SGST, invoice.IGST, invoice.TDSAmount, invoice.TotalAmount, invoice.Status, invoice.IssuedDate)

	suite.mock.ExpectQuery(`
		SELECT id, client_id, invoice_number, gstin, subtotal, gst_rate, cgst, sgst, igst, tds_amount, total_amount, status, issued_date
		FROM invoices
		WHERE tenant_id = \$1 AND issued_date >= \$2 AND issued_date <= \$3 AND status != 'cancelled'
		ORDER BY issued_date ASC
	`).WithArgs(suite.tenantID, startDate, endDate).WillReturnRows(rows)

	report, err := suite.repo.GetGSTReportData(suite.context, suite.tenantID, startDate, endDate)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), report, 1)
	assert.Equal(suite.T(), invoice.InvoiceNumber, report[0].InvoiceNumber)
	assert.Equal(suite.T(), 900.0, *report[0].CGST)
}

func (suite *InvoiceRepoTestSuite) TestUpdateInvoiceStatus() {
	invoiceID := uuid.New()

	suite.mock.ExpectExec(`UPDATE invoices SET status = \$1, updated_at = NOW\(\) WHERE tenant_id = \$2 AND id = \$3`).
		WithArgs("overdue", suite.tenantID, invoiceID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateInvoiceStatus(suite.context, suite.tenantID, invoiceID, "overdue")
	assert.NoError(suite.T(), err)
}

func (suite *InvoiceRepoTestSuite) TestGenerateInvoiceNumber() {
	issued := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"count"}).AddRow(41)

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM invoices WHERE tenant_id = \$1 AND EXTRACT\(YEAR FROM issued_date\) = \$2`).
		WithArgs(suite.tenantID, 2026).
		WillReturnRows(rows)

	number, err := suite.repo.GenerateInvoiceNumber(suite.context, suite.tenantID, issued)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INV-2026-000042", number)
}

func (suite *InvoiceRepoTestSuite) TestDelete() {
	invoiceID := uuid.New()

	suite.mock.ExpectExec(`DELETE FROM invoices WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID, invoiceID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, suite.tenantID, invoiceID)
	assert.NoError(suite.T(), err)
}
