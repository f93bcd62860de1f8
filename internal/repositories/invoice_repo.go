package repositories

import (
	"context"
	"fmt"
	"time"

	"lexmart/internal/models"

	"github.com/google/uuid"
)

// GSTReportRow represents a row in GST reporting
type GSTReportRow struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	ClientID      uuid.UUID `json:"client_id"`
	InvoiceNumber string    `json:"invoice_number"`
	GSTIN         *string   `json:"gstin"`
	Subtotal      float64   `json:"subtotal"`
	GSTRate       *float64  `json:"gst_rate"`
	CGST          *float64  `json:"cgst"`
	SGST          *float64  `json:"sgst"`
	IGST          *float64  `json:"igst"`
	TDSAmount     *float64  `json:"tds_amount"`
	TotalAmount   float64   `json:"total_amount"`
	Status        string    `json:"status"`
	IssuedDate    time.Time `json:"issued_date"`
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	GetInvoicesByTenantAndDateRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]*models.Invoice, error)
	GetInvoicesByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*models.Invoice, error)
	GetUnpaidInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	GetGSTReportData(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]GSTReportRow, error)
	UpdateInvoiceStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error
	GenerateInvoiceNumber(ctx context.Context, tenantID uuid.UUID, issuedDate time.Time) (string, error)
}

type invoiceRepo struct {
	db Querier
}

func NewInvoiceRepo(db Querier) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceColumns = `id, tenant_id, client_id, case_id, invoice_number, gstin, subtotal, gst_rate, cgst, sgst, igst, tds_amount, total_tax, total_amount, status, issued_date, paid_date, due_date, created_at, updated_at`

func scanInvoice(row interface{ Scan(dest ...any) error }) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	err := row.Scan(&invoice.ID, &invoice.TenantID, &invoice.ClientID, &invoice.CaseID, &invoice.InvoiceNumber, &invoice.GSTIN, &invoice.Subtotal, &invoice.GSTRate, &invoice.CGST, &invoice.SGST, &invoice.IGST, &invoice.TDSAmount, &invoice.TotalTax, &invoice.TotalAmount, &invoice.Status, &invoice.IssuedDate, &invoice.PaidDate, &invoice.DueDate, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (id, tenant_id, client_id, case_id, invoice_number, gstin, subtotal, gst_rate, cgst, sgst, igst, tds_amount, total_tax, total_amount, status, issued_date, paid_date, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, invoice.ID, invoice.TenantID, invoice.ClientID, invoice.CaseID, invoice.InvoiceNumber, invoice.GSTIN, invoice.Subtotal, invoice.GSTRate, invoice.CGST, invoice.SGST, invoice.IGST, invoice.TDSAmount, invoice.TotalTax, invoice.TotalAmount, invoice.Status, invoice.IssuedDate, invoice.PaidDate, invoice.DueDate)
	return err
}

func (r *invoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1 AND id = $2`
	return scanInvoice(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	query := `
		UPDATE invoices
		SET gstin = $1, subtotal = $2, gst_rate = $3, cgst = $4, sgst = $5, igst = $6, tds_amount = $7, total_tax = $8, total_amount = $9, status = $10, issued_date = $11, paid_date = $12, due_date = $13, updated_at = NOW()
		WHERE tenant_id = $14 AND id = $15
	`
	_, err := r.db.Exec(ctx, query, invoice.GSTIN, invoice.Subtotal, invoice.GSTRate, invoice.CGST, invoice.SGST, invoice.IGST, invoice.TDSAmount, invoice.TotalTax, invoice.TotalAmount, invoice.Status, invoice.IssuedDate, invoice.PaidDate, invoice.DueDate, invoice.TenantID, invoice.ID)
	return err
}

func (r *invoiceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM invoices WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *invoiceRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1
		ORDER BY issued_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepo) GetInvoicesByTenantAndDateRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND issued_date >= $2 AND issued_date <= $3
		ORDER BY issued_date DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepo) GetInvoicesByClientID(ctx context.Context, tenantID, clientID uuid.UUID) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND client_id = $2
		ORDER BY issued_date DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepo) GetUnpaidInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND status IN ('unpaid', 'overdue')
		ORDER BY due_date ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepo) GetGSTReportData(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]GSTReportRow, error) {
	query := `
		SELECT id, client_id, invoice_number, gstin, subtotal, gst_rate, cgst, sgst, igst, tds_amount, total_amount, status, issued_date
		FROM invoices
		WHERE tenant_id = $1 AND issued_date >= $2 AND issued_date <= $3 AND status != 'cancelled'
		ORDER BY issued_date ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []GSTReportRow
	for rows.Next() {
		var row GSTReportRow
		if err := rows.Scan(&row.InvoiceID, &row.ClientID, &row.InvoiceNumber, &row.GSTIN, &row.Subtotal, &row.GSTRate, &row.CGST, &row.SGST, &row.IGST, &row.TDSAmount, &row.TotalAmount, &row.Status, &row.IssuedDate); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}

func (r *invoiceRepo) UpdateInvoiceStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error {
	query := `UPDATE invoices SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, status, tenantID, invoiceID)
	return err
}

// GenerateInvoiceNumber produces sequential numbers per tenant and fiscal
// year, e.g. INV-2026-000042.
func (r *invoiceRepo) GenerateInvoiceNumber(ctx context.Context, tenantID uuid.UUID, issuedDate time.Time) (string, error) {
	year := issuedDate.Year()

	var count int
	query := `SELECT COUNT(*) FROM invoices WHERE tenant_id = $1 AND EXTRACT(YEAR FROM issued_date) = $2`
	if err := r.db.QueryRow(ctx, query, tenantID, year).Scan(&count); err != nil {
		return "", err
	}

	return fmt.Sprintf("INV-%d-%06d", year, count+1), nil
}
