package reports

import (
	"fmt"
)

// Field types understood by the report builder.
const (
	FieldTypeUUID      = "uuid"
	FieldTypeText      = "text"
	FieldTypeEnum      = "enum"
	FieldTypeDecimal   = "decimal"
	FieldTypeInteger   = "integer"
	FieldTypeBoolean   = "boolean"
	FieldTypeDate      = "date"
	FieldTypeTimestamp = "timestamp"
)

// FieldDescriptor registers one selectable/filterable column. Table is empty
// for columns on the data source's own table and names a joined table
// otherwise.
type FieldDescriptor struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Label string `json:"label"`
	Table string `json:"table,omitempty"`
}

// JoinDescriptor registers one join rendered after the FROM clause, in
// registration order. On conditions are fixed at startup and never contain
// caller input.
type JoinDescriptor struct {
	Table string `json:"table"`
	On    string `json:"on"`
	Type  string `json:"type"` // LEFT, INNER, RIGHT
}

// DataSourceDescriptor is the static allow-list for one reportable relation.
// Identifiers that do not resolve through a descriptor never reach SQL text.
type DataSourceDescriptor struct {
	Table  string            `json:"table"`
	Fields []FieldDescriptor `json:"fields"`
	Joins  []JoinDescriptor  `json:"joins"`
}

// ResolveField validates a caller-supplied column reference against the
// allow-list and returns the SQL identifier to emit.
func (d DataSourceDescriptor) ResolveField(name, table string) (string, FieldDescriptor, error) {
	for _, f := range d.Fields {
		if f.Name != name {
			continue
		}
		fieldTable := f.Table
		if fieldTable == "" {
			fieldTable = d.Table
		}
		if table != "" && table != fieldTable {
			continue
		}
		if f.Table != "" || table != "" {
			return fieldTable + "." + f.Name, f, nil
		}
		return f.Name, f, nil
	}
	if table != "" {
		return "", FieldDescriptor{}, fmt.Errorf("field %s.%s is not registered for this data source", table, name)
	}
	return "", FieldDescriptor{}, fmt.Errorf("field %s is not registered for this data source", name)
}

// FieldType looks up the declared type for a result column name. Columns
// outside the descriptor (e.g. expressions) fall back to text.
func (d DataSourceDescriptor) FieldType(name string) string {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return FieldTypeText
}

// Registry maps data source keys to descriptors. Built once at startup and
// never mutated afterwards, so concurrent reads need no locking.
type Registry map[string]DataSourceDescriptor

// Descriptor resolves a data source key.
func (r Registry) Descriptor(name string) (DataSourceDescriptor, bool) {
	d, ok := r[name]
	return d, ok
}

// DefaultRegistry describes the reportable relations of the practice
// management schema. cases and clients are deliberately join-free so simple
// reports compile to single-table SQL. tenant_id is never registered as a
// field; execution scopes it on the base table server-side.
func DefaultRegistry() Registry {
	return Registry{
		"cases": {
			Table: "cases",
			Fields: []FieldDescriptor{
				{Name: "id", Type: FieldTypeUUID, Label: "Id"},
				{Name: "case_number", Type: FieldTypeText, Label: "Case Number"},
				{Name: "title", Type: FieldTypeText, Label: "Title"},
				{Name: "practice_area", Type: FieldTypeText, Label: "Practice Area"},
				{Name: "court_name", Type: FieldTypeText, Label: "Court Name"},
				{Name: "status", Type: FieldTypeEnum, Label: "Status"},
				{Name: "opened_date", Type: FieldTypeDate, Label: "Opened Date"},
				{Name: "closed_date", Type: FieldTypeDate, Label: "Closed Date"},
				{Name: "created_at", Type: FieldTypeTimestamp, Label: "Created At"},
			},
		},
		"clients": {
			Table: "clients",
			Fields: []FieldDescriptor{
				{Name: "id", Type: FieldTypeUUID, Label: "Id"},
				{Name: "name", Type: FieldTypeText, Label: "Name"},
				{Name: "email", Type: FieldTypeText, Label: "Email"},
				{Name: "client_type", Type: FieldTypeEnum, Label: "Client Type"},
				{Name: "gstin", Type: FieldTypeText, Label: "Gstin"},
				{Name: "state_code", Type: FieldTypeText, Label: "State Code"},
				{Name: "tds_applicable", Type: FieldTypeBoolean, Label: "Tds Applicable"},
				{Name: "status", Type: FieldTypeEnum, Label: "Status"},
				{Name: "created_at", Type: FieldTypeTimestamp, Label: "Created At"},
			},
		},
		"invoices": {
			Table: "invoices",
			Fields: []FieldDescriptor{
				{Name: "id", Type: FieldTypeUUID, Label: "Id"},
				{Name: "invoice_number", Type: FieldTypeText, Label: "Invoice Number"},
				{Name: "subtotal", Type: FieldTypeDecimal, Label: "Subtotal"},
				{Name: "cgst", Type: FieldTypeDecimal, Label: "Cgst"},
				{Name: "sgst", Type: FieldTypeDecimal, Label: "Sgst"},
				{Name: "igst", Type: FieldTypeDecimal, Label: "Igst"},
				{Name: "tds_amount", Type: FieldTypeDecimal, Label: "Tds Amount"},
				{Name: "total_tax", Type: FieldTypeDecimal, Label: "Total Tax"},
				{Name: "total_amount", Type: FieldTypeDecimal, Label: "Total Amount"},
				{Name: "status", Type: FieldTypeEnum, Label: "Status"},
				{Name: "issued_date", Type: FieldTypeDate, Label: "Issued Date"},
				{Name: "due_date", Type: FieldTypeDate, Label: "Due Date"},
				{Name: "paid_date", Type: FieldTypeDate, Label: "Paid Date"},
				{Name: "name", Type: FieldTypeText, Label: "Name", Table: "clients"},
				{Name: "client_type", Type: FieldTypeEnum, Label: "Client Type", Table: "clients"},
				{Name: "case_number", Type: FieldTypeText, Label: "Case Number", Table: "cases"},
			},
			Joins: []JoinDescriptor{
				{Table: "clients", On: "invoices.client_id = clients.id", Type: "INNER"},
				{Table: "cases", On: "invoices.case_id = cases.id", Type: "LEFT"},
			},
		},
		"time_entries": {
			Table: "time_entries",
			Fields: []FieldDescriptor{
				{Name: "id", Type: FieldTypeUUID, Label: "Id"},
				{Name: "description", Type: FieldTypeText, Label: "Description"},
				{Name: "hours", Type: FieldTypeDecimal, Label: "Hours"},
				{Name: "hourly_rate", Type: FieldTypeDecimal, Label: "Hourly Rate"},
				{Name: "billable", Type: FieldTypeBoolean, Label: "Billable"},
				{Name: "entry_date", Type: FieldTypeDate, Label: "Entry Date"},
				{Name: "case_number", Type: FieldTypeText, Label: "Case Number", Table: "cases"},
				{Name: "email", Type: FieldTypeText, Label: "Email", Table: "users"},
			},
			Joins: []JoinDescriptor{
				{Table: "cases", On: "time_entries.case_id = cases.id", Type: "INNER"},
				{Table: "users", On: "time_entries.user_id = users.id", Type: "LEFT"},
			},
		},
		"documents": {
			Table: "documents",
			Fields: []FieldDescriptor{
				{Name: "id", Type: FieldTypeUUID, Label: "Id"},
				{Name: "file_name", Type: FieldTypeText, Label: "File Name"},
				{Name: "document_type", Type: FieldTypeEnum, Label: "Document Type"},
				{Name: "file_size", Type: FieldTypeInteger, Label: "File Size"},
				{Name: "uploaded_at", Type: FieldTypeTimestamp, Label: "Uploaded At"},
				{Name: "case_number", Type: FieldTypeText, Label: "Case Number", Table: "cases"},
			},
			Joins: []JoinDescriptor{
				{Table: "cases", On: "documents.case_id = cases.id", Type: "LEFT"},
			},
		},
	}
}
