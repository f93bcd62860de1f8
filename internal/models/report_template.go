package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReportTemplate is a saved, reusable report definition. QueryDefinition and
// Parameters are stored as JSONB and kept as raw JSON here so the reports
// package owns their shape.
type ReportTemplate struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	TenantID        uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Name            string          `json:"name" db:"name"`
	Description     *string         `json:"description" db:"description"`
	TemplateType    string          `json:"template_type" db:"template_type"`
	QueryDefinition json.RawMessage `json:"query_definition" db:"query_definition"`
	Parameters      json.RawMessage `json:"parameters" db:"parameters"`
	CreatedBy       uuid.UUID       `json:"created_by" db:"created_by"`
	IsPublic        bool            `json:"is_public" db:"is_public"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}
