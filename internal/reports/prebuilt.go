package reports

// PrebuiltReport is a canned report shipped with the product. The catalog
// is fixed at compile time, read-only and never persisted.
type PrebuiltReport struct {
	Key         string                 `json:"key"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Definition  QueryDefinition        `json:"definition"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// PrebuiltCatalog returns the canned reports in display order.
func PrebuiltCatalog() []PrebuiltReport {
	return []PrebuiltReport{
		{
			Key:         "revenue_by_month",
			Name:        "Revenue by Month",
			Description: "Issued invoices with totals since a given date, oldest first.",
			Definition: QueryDefinition{
				DataSource: "invoices",
				Fields: []SelectedField{
					{Name: "invoice_number"},
					{Name: "issued_date"},
					{Name: "subtotal"},
					{Name: "total_tax"},
					{Name: "total_amount"},
					{Name: "status"},
				},
				Filters: []Filter{
					{Field: "issued_date", Operator: OpGreaterThanOrEqual, Value: "{{start_date}}"},
					{Field: "status", Operator: OpNotEquals, Value: "cancelled"},
				},
				OrderBy: []OrderBy{{Field: "issued_date", Direction: "asc"}},
			},
			Parameters: map[string]interface{}{"start_date": "2000-01-01"},
		},
		{
			Key:         "case_performance",
			Name:        "Case Performance",
			Description: "Open cases by practice area with their age anchors.",
			Definition: QueryDefinition{
				DataSource: "cases",
				Fields: []SelectedField{
					{Name: "case_number"},
					{Name: "title"},
					{Name: "practice_area"},
					{Name: "status"},
					{Name: "opened_date"},
				},
				Filters: []Filter{
					{Field: "status", Operator: OpIn, Value: []interface{}{"open", "on_hold"}},
				},
				OrderBy: []OrderBy{{Field: "opened_date", Direction: "asc"}},
			},
		},
		{
			Key:         "outstanding_invoices",
			Name:        "Outstanding Invoices",
			Description: "Unpaid and overdue invoices ordered by due date.",
			Definition: QueryDefinition{
				DataSource: "invoices",
				Fields: []SelectedField{
					{Name: "invoice_number"},
					{Name: "name", Table: "clients", Alias: "client_name"},
					{Name: "total_amount"},
					{Name: "due_date"},
					{Name: "status"},
				},
				Filters: []Filter{
					{Field: "status", Operator: OpIn, Value: []interface{}{"unpaid", "overdue"}},
				},
				OrderBy: []OrderBy{{Field: "due_date", Direction: "asc"}},
			},
		},
		{
			Key:         "client_billing_summary",
			Name:        "Client Billing Summary",
			Description: "Recent invoices joined with client details, largest first.",
			Definition: QueryDefinition{
				DataSource: "invoices",
				Fields: []SelectedField{
					{Name: "name", Table: "clients", Alias: "client_name"},
					{Name: "client_type", Table: "clients"},
					{Name: "invoice_number"},
					{Name: "total_amount"},
					{Name: "issued_date"},
				},
				OrderBy: []OrderBy{{Field: "total_amount", Direction: "desc"}},
				Limit:   100,
			},
		},
	}
}
