package reports

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Builder compiles a QueryDefinition into a parameterized SQL statement.
// Identifiers are validated against the data-source registry; every filter
// value is bound through a $n placeholder, never interpolated into the text.
type Builder struct {
	registry Registry
}

func NewBuilder(registry Registry) *Builder {
	return &Builder{registry: registry}
}

// Build is pure and deterministic: the same definition always yields the
// same SQL text and argument list. It performs no I/O.
func (b *Builder) Build(def QueryDefinition) (string, []interface{}, error) {
	return b.build(def, uuid.Nil)
}

// BuildForTenant compiles the definition with a mandatory tenant predicate
// on the data source's base table. The tenant ID is always bound as $1 and
// never comes from the definition, so callers cannot widen or drop it.
func (b *Builder) BuildForTenant(def QueryDefinition, tenantID uuid.UUID) (string, []interface{}, error) {
	return b.build(def, tenantID)
}

func (b *Builder) build(def QueryDefinition, tenantID uuid.UUID) (string, []interface{}, error) {
	descriptor, ok := b.registry.Descriptor(def.DataSource)
	if !ok {
		return "", nil, errUnknownDataSource(def.DataSource)
	}

	scoped := tenantID != uuid.Nil

	var sb strings.Builder
	var args []interface{}
	if scoped {
		args = append(args, tenantID)
	}

	sb.WriteString("SELECT ")
	if len(def.Fields) == 0 {
		sb.WriteString("*")
	} else {
		for i, f := range def.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			column, _, err := descriptor.ResolveField(f.Name, f.Table)
			if err != nil {
				return "", nil, errInvalidFilter(err.Error())
			}
			sb.WriteString(column)
			if f.Alias != "" {
				if !identifierPattern.MatchString(f.Alias) {
					return "", nil, errInvalidFilter("invalid alias: " + f.Alias)
				}
				sb.WriteString(" AS " + f.Alias)
			}
		}
	}

	sb.WriteString(" FROM " + descriptor.Table)
	for _, join := range descriptor.Joins {
		sb.WriteString(fmt.Sprintf(" %s JOIN %s ON %s", join.Type, join.Table, join.On))
	}

	if scoped || len(def.Filters) > 0 {
		sb.WriteString(" WHERE ")
		if scoped {
			sb.WriteString(descriptor.Table + ".tenant_id = $1")
		}
		for i, filter := range def.Filters {
			if i > 0 || scoped {
				sb.WriteString(" AND ")
			}
			fragment, filterArgs, err := b.buildPredicate(descriptor, filter, len(args))
			if err != nil {
				return "", nil, err
			}
			sb.WriteString(fragment)
			args = append(args, filterArgs...)
		}
	}

	if len(def.GroupBy) > 0 {
		columns := make([]string, 0, len(def.GroupBy))
		for _, g := range def.GroupBy {
			column, _, err := descriptor.ResolveField(g, "")
			if err != nil {
				return "", nil, errInvalidFilter(err.Error())
			}
			columns = append(columns, column)
		}
		sb.WriteString(" GROUP BY " + strings.Join(columns, ", "))
	}

	if len(def.OrderBy) > 0 {
		clauses := make([]string, 0, len(def.OrderBy))
		for _, o := range def.OrderBy {
			column, _, err := descriptor.ResolveField(o.Field, "")
			if err != nil {
				return "", nil, errInvalidFilter(err.Error())
			}
			direction := "ASC"
			switch strings.ToLower(o.Direction) {
			case "", "asc":
			case "desc":
				direction = "DESC"
			default:
				return "", nil, errInvalidFilter("order direction must be asc or desc")
			}
			clauses = append(clauses, column+" "+direction)
		}
		sb.WriteString(" ORDER BY " + strings.Join(clauses, ", "))
	}

	if def.Limit < 0 {
		return "", nil, errInvalidFilter("limit must be a positive integer")
	}
	if def.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", def.Limit))
	}

	return sb.String(), args, nil
}

// buildPredicate renders one filter as a SQL fragment plus its bound
// arguments. argOffset is the number of placeholders already emitted.
func (b *Builder) buildPredicate(descriptor DataSourceDescriptor, filter Filter, argOffset int) (string, []interface{}, error) {
	column, _, err := descriptor.ResolveField(filter.Field, filter.Table)
	if err != nil {
		return "", nil, errInvalidFilter(err.Error())
	}

	next := func(offset int) string { return fmt.Sprintf("$%d", argOffset+offset+1) }

	switch filter.Operator {
	case OpEquals:
		return column + " = " + next(0), []interface{}{filter.Value}, nil
	case OpNotEquals:
		return column + " != " + next(0), []interface{}{filter.Value}, nil
	case OpContains:
		return column + " ILIKE " + next(0), []interface{}{"%" + fmt.Sprintf("%v", filter.Value) + "%"}, nil
	case OpStartsWith:
		return column + " ILIKE " + next(0), []interface{}{fmt.Sprintf("%v", filter.Value) + "%"}, nil
	case OpEndsWith:
		return column + " ILIKE " + next(0), []interface{}{"%" + fmt.Sprintf("%v", filter.Value)}, nil
	case OpGreaterThan:
		return column + " > " + next(0), []interface{}{filter.Value}, nil
	case OpLessThan:
		return column + " < " + next(0), []interface{}{filter.Value}, nil
	case OpGreaterThanOrEqual:
		return column + " >= " + next(0), []interface{}{filter.Value}, nil
	case OpLessThanOrEqual:
		return column + " <= " + next(0), []interface{}{filter.Value}, nil
	case OpIsNull:
		return column + " IS NULL", nil, nil
	case OpIsNotNull:
		return column + " IS NOT NULL", nil, nil
	case OpBetween:
		pair, ok := toSlice(filter.Value)
		if !ok || len(pair) != 2 {
			return "", nil, errInvalidFilter("between requires exactly two values")
		}
		return column + " BETWEEN " + next(0) + " AND " + next(1), pair, nil
	case OpIn:
		values, ok := toSlice(filter.Value)
		if !ok || len(values) == 0 {
			return "", nil, errInvalidFilter("in requires a non-empty list of values")
		}
		placeholders := make([]string, len(values))
		for i := range values {
			placeholders[i] = next(i)
		}
		return column + " IN (" + strings.Join(placeholders, ", ") + ")", values, nil
	default:
		return "", nil, errInvalidFilter("unknown operator: " + filter.Operator)
	}
}

// toSlice normalizes list-shaped filter values. JSON decoding produces
// []interface{}; typed slices from Go callers are accepted too.
func toSlice(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case []interface{}:
		return v, true
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]interface{}, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]interface{}, len(v))
		for i, f := range v {
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}
