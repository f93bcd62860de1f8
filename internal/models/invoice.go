package models

import (
	"time"

	"github.com/google/uuid"
)

type Invoice struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	TenantID      uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	ClientID      uuid.UUID  `json:"client_id" db:"client_id"`
	CaseID        *uuid.UUID `json:"case_id" db:"case_id"`
	InvoiceNumber string     `json:"invoice_number" db:"invoice_number"`
	GSTIN         *string    `json:"gstin" db:"gstin"`
	Subtotal      float64    `json:"subtotal" db:"subtotal"`
	GSTRate       *float64   `json:"gst_rate" db:"gst_rate"`
	CGST          *float64   `json:"cgst" db:"cgst"`
	SGST          *float64   `json:"sgst" db:"sgst"`
	IGST          *float64   `json:"igst" db:"igst"`
	TDSAmount     *float64   `json:"tds_amount" db:"tds_amount"`
	TotalTax      float64    `json:"total_tax" db:"total_tax"`
	TotalAmount   float64    `json:"total_amount" db:"total_amount"`
	Status        string     `json:"status" db:"status"`
	IssuedDate    time.Time  `json:"issued_date" db:"issued_date"`
	PaidDate      *time.Time `json:"paid_date" db:"paid_date"`
	DueDate       time.Time  `json:"due_date" db:"due_date"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}
