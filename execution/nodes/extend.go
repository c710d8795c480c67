package nodes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cube2222/relvar/graph"
	"github.com/cube2222/relvar/relvar"
)

// Property describes an attribute added by Extend.
type Property struct {
	Type relvar.Type
	// Exactly one of Value and Func is used; Func wins if set.
	Value relvar.Value
	Func  func(row relvar.Row) relvar.Value
}

// Constant is a property with the same value on every row.
func Constant(value relvar.Value) Property {
	return Property{
		Type:  value.Type(),
		Value: value,
	}
}

// Computed is a property computed from the rest of the row.
func Computed(t relvar.Type, fn func(row relvar.Row) relvar.Value) Property {
	return Property{
		Type: t,
		Func: fn,
	}
}

func (p Property) String() string {
	if p.Func != nil {
		return fmt.Sprintf("computed %s", p.Type)
	}
	return p.Value.String()
}

// Extend adds constant or computed attributes to every row of its source.
// The unique key stays the same.
//
// Properties are applied in attribute name order to a copy of the source row.
// A computed property which reads other added properties is not supported.
type Extend struct {
	*relvar.View
	source     relvar.Source
	names      []string
	properties map[string]Property
	output     *relvar.Relvar
}

func NewExtend(source relvar.Source, properties map[string]Property, opts ...Option) (*Extend, error) {
	spec := source.Spec()
	names := make([]string, 0, len(properties))
	for name, property := range properties {
		if spec.Has(name) {
			return nil, relvar.SchemaErrorf("extend", "property '%s' already exists in %s", name, source.Name())
		}
		if property.Func == nil && !property.Type.Accepts(property.Value) {
			return nil, relvar.SchemaErrorf("extend", "constant %s of property '%s' is not of type %s", property.Value, name, property.Type)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		spec[name] = properties[name].Type
	}

	fields := make([]string, len(names))
	for i, name := range names {
		fields[i] = fmt.Sprintf("%s = %s", name, properties[name])
	}

	output, err := relvar.New(
		source.Loop(),
		spec,
		source.UniqueKey(),
		outputOptions(opts, "extend", []relvar.Input{{Name: "source", Source: source}}, graph.Field{Name: "properties", Value: strings.Join(fields, ", ")})...,
	)
	if err != nil {
		return nil, err
	}

	e := &Extend{
		View:       relvar.NewView(output),
		source:     source,
		names:      names,
		properties: properties,
		output:     output,
	}

	snapshot, sub := source.Watch(relvar.Handlers{
		Insert: e.onInsert,
		Update: e.onUpdate,
		Remove: e.onRemove,
	})
	e.Attach(sub)
	output.Seed(mapRows(snapshot, e.extend))

	return e, nil
}

func (e *Extend) extend(row relvar.Row) relvar.Row {
	out := row.Copy()
	for _, name := range e.names {
		property := e.properties[name]
		if property.Func != nil {
			out[name] = property.Func(out)
		} else {
			out[name] = property.Value
		}
	}
	return out
}

func (e *Extend) onInsert(rows []relvar.Row) error {
	if _, err := e.output.Insert(mapRows(rows, e.extend)); err != nil {
		return fmt.Errorf("couldn't insert extended rows: %w", err)
	}
	return nil
}

func (e *Extend) onUpdate(oldRows, newRows []relvar.Row) error {
	if _, err := e.output.Update(mapRows(oldRows, e.extend), mapRows(newRows, e.extend)); err != nil {
		return fmt.Errorf("couldn't update extended rows: %w", err)
	}
	return nil
}

func (e *Extend) onRemove(rows []relvar.Row) error {
	e.output.Remove(rows)
	return nil
}
