package models

import (
	"time"

	"github.com/google/uuid"
)

type Case struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TenantID     uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	ClientID     uuid.UUID  `json:"client_id" db:"client_id"`
	CaseNumber   string     `json:"case_number" db:"case_number"`
	Title        string     `json:"title" db:"title"`
	Description  *string    `json:"description" db:"description"`
	PracticeArea *string    `json:"practice_area" db:"practice_area"`
	CourtName    *string    `json:"court_name" db:"court_name"`
	Status       string     `json:"status" db:"status"`
	AssignedTo   *uuid.UUID `json:"assigned_to" db:"assigned_to"`
	OpenedDate   time.Time  `json:"opened_date" db:"opened_date"`
	ClosedDate   *time.Time `json:"closed_date" db:"closed_date"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
