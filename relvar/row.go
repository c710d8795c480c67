package relvar

import (
	"sort"
	"strings"
)

// Row maps attribute names to values. Rows are value objects: once handed to
// a relvar they must not be modified, updates replace them wholesale.
type Row map[string]Value

// NewRow builds a row out of raw Go values, see NewValue.
func NewRow(raw map[string]any) Row {
	out := make(Row, len(raw))
	for name, value := range raw {
		out[name] = NewValue(value)
	}
	return out
}

func (row Row) Copy() Row {
	out := make(Row, len(row))
	for name, value := range row {
		out[name] = value
	}
	return out
}

// Project returns a new row holding only the listed attributes.
// Attributes missing from the row are left out.
func (row Row) Project(attributes []string) Row {
	out := make(Row, len(attributes))
	for _, name := range attributes {
		if value, ok := row[name]; ok {
			out[name] = value
		}
	}
	return out
}

// Merge returns a new row with the attributes of both, other's values win.
func (row Row) Merge(other Row) Row {
	out := make(Row, len(row)+len(other))
	for name, value := range row {
		out[name] = value
	}
	for name, value := range other {
		out[name] = value
	}
	return out
}

// Equal compares all attributes of both rows.
func (row Row) Equal(other Row) bool {
	if len(row) != len(other) {
		return false
	}
	for name, value := range row {
		otherValue, ok := other[name]
		if !ok || !value.Equal(otherValue) {
			return false
		}
	}
	return true
}

func (row Row) attributes() []string {
	out := make([]string, 0, len(row))
	for name := range row {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (row Row) String() string {
	builder := &strings.Builder{}
	builder.WriteString("{")
	for i, name := range row.attributes() {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(name)
		builder.WriteString(": ")
		row[name].append(builder)
	}
	builder.WriteString("}")
	return builder.String()
}

func copyRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i := range rows {
		out[i] = rows[i].Copy()
	}
	return out
}
