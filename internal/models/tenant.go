package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a law firm. StateCode is the firm's GST registration state and
// drives the inter-state vs intra-state tax decision on invoices.
type Tenant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Subdomain string    `json:"subdomain" db:"subdomain"`
	GSTIN     *string   `json:"gstin" db:"gstin"`
	StateCode *string   `json:"state_code" db:"state_code"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
