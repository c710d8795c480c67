package formats

import (
	"io"

	"github.com/pkg/errors"

	"github.com/cube2222/relvar/relvar"
)

type Column struct {
	Name string
	Type relvar.Type
}

// Columns lists the key attributes first, in key order, then the rest of the
// spec in name order.
func Columns(spec relvar.Spec, key relvar.UniqueKey) []Column {
	out := make([]Column, 0, len(spec))
	for _, name := range key {
		out = append(out, Column{Name: name, Type: spec[name]})
	}
	for _, name := range spec.Attributes() {
		if key.Contains(name) {
			continue
		}
		out = append(out, Column{Name: name, Type: spec[name]})
	}
	return out
}

type Format interface {
	SetSchema(columns []Column)
	Write(row relvar.Row) error
	Close() error
}

// New creates the format with the given name: table, json or csv.
func New(name string, w io.Writer) (Format, error) {
	switch name {
	case "table":
		return NewTableFormatter(w), nil
	case "json":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	default:
		return nil, errors.Errorf("unknown output format '%s'", name)
	}
}

// WriteAll writes the snapshot of source using format.
func WriteAll(format Format, source relvar.Source) error {
	format.SetSchema(Columns(source.Spec(), source.UniqueKey()))
	for _, row := range source.Snapshot() {
		if err := format.Write(row); err != nil {
			return errors.Wrap(err, "couldn't write row")
		}
	}
	if err := format.Close(); err != nil {
		return errors.Wrap(err, "couldn't close output formatter")
	}
	return nil
}
