package reports

// Filter operators accepted in a QueryDefinition.
const (
	OpEquals             = "equals"
	OpNotEquals          = "not_equals"
	OpContains           = "contains"
	OpStartsWith         = "starts_with"
	OpEndsWith           = "ends_with"
	OpGreaterThan        = "greater_than"
	OpLessThan           = "less_than"
	OpGreaterThanOrEqual = "greater_than_or_equal"
	OpLessThanOrEqual    = "less_than_or_equal"
	OpIsNull             = "is_null"
	OpIsNotNull          = "is_not_null"
	OpBetween            = "between"
	OpIn                 = "in"
)

// SelectedField is one output column of a report.
type SelectedField struct {
	Name  string `json:"name"`
	Table string `json:"table,omitempty"`
	Alias string `json:"alias,omitempty"`
}

// Filter is one conjunctive predicate. Filters combine with AND only;
// OR groups are not supported.
type Filter struct {
	Field    string      `json:"field"`
	Table    string      `json:"table,omitempty"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value,omitempty"`
}

// OrderBy orders the result by a single field.
type OrderBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction,omitempty"` // asc or desc, default asc
}

// QueryDefinition is a declarative report over one registered data source.
// It is transient unless saved as a report template.
type QueryDefinition struct {
	DataSource string          `json:"dataSource"`
	Fields     []SelectedField `json:"fields,omitempty"`
	Filters    []Filter        `json:"filters,omitempty"`
	GroupBy    []string        `json:"groupBy,omitempty"`
	OrderBy    []OrderBy       `json:"orderBy,omitempty"`
	Limit      int             `json:"limit,omitempty"`
}
