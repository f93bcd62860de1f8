package models

import (
	"time"

	"github.com/google/uuid"
)

// Client types recognised by billing. TDS withholding only ever applies to
// company clients.
const (
	ClientTypeIndividual = "individual"
	ClientTypeCompany    = "company"
	ClientTypeTrust      = "trust"
	ClientTypeGovernment = "government"
)

type Client struct {
	ID              uuid.UUID `json:"id" db:"id"`
	TenantID        uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name            string    `json:"name" db:"name"`
	Email           *string   `json:"email" db:"email"`
	Phone           *string   `json:"phone" db:"phone"`
	ClientType      string    `json:"client_type" db:"client_type"`
	GSTIN           *string   `json:"gstin" db:"gstin"`
	StateCode       *string   `json:"state_code" db:"state_code"`
	TDSApplicable   bool      `json:"tds_applicable" db:"tds_applicable"`
	BillingAddress  *string   `json:"billing_address" db:"billing_address"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
