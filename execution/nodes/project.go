package nodes

import (
	"fmt"
	"strings"

	"github.com/cube2222/relvar/graph"
	"github.com/cube2222/relvar/relvar"
)

// Project keeps only the listed attributes of its source's rows.
//
// If the unique key doesn't determine the remaining attributes, distinct
// source rows may collide in the output, in which case the latest one wins.
type Project struct {
	*relvar.View
	source     relvar.Source
	attributes []string
	output     *relvar.Relvar
}

// NewProject projects source onto attributes. The output is keyed by
// uniqueKey, or by the source's key if uniqueKey is empty; either way the
// key has to be a subset of attributes.
func NewProject(source relvar.Source, attributes []string, uniqueKey relvar.UniqueKey, opts ...Option) (*Project, error) {
	spec, missing, ok := source.Spec().Restrict(attributes)
	if !ok {
		return nil, relvar.SchemaErrorf("project", "attribute '%s' doesn't exist in %s", missing, source.Name())
	}
	if len(uniqueKey) == 0 {
		uniqueKey = source.UniqueKey()
	}
	for _, name := range uniqueKey {
		if !spec.Has(name) {
			return nil, relvar.SchemaErrorf("project", "unique key %s is not a subset of projected attributes [%s]", uniqueKey, strings.Join(attributes, ", "))
		}
	}

	output, err := relvar.New(
		source.Loop(),
		spec,
		uniqueKey,
		outputOptions(opts, "project", []relvar.Input{{Name: "source", Source: source}}, graph.Field{Name: "attributes", Value: strings.Join(attributes, ", ")})...,
	)
	if err != nil {
		return nil, err
	}

	attributesCopy := make([]string, len(attributes))
	copy(attributesCopy, attributes)

	p := &Project{
		View:       relvar.NewView(output),
		source:     source,
		attributes: attributesCopy,
		output:     output,
	}

	snapshot, sub := source.Watch(relvar.Handlers{
		Insert: p.onInsert,
		Update: p.onUpdate,
		Remove: p.onRemove,
	})
	p.Attach(sub)
	output.Seed(mapRows(snapshot, p.project))

	return p, nil
}

func (p *Project) project(row relvar.Row) relvar.Row {
	return row.Project(p.attributes)
}

func (p *Project) onInsert(rows []relvar.Row) error {
	if _, err := p.output.Insert(mapRows(rows, p.project)); err != nil {
		return fmt.Errorf("couldn't insert projected rows: %w", err)
	}
	return nil
}

func (p *Project) onUpdate(oldRows, newRows []relvar.Row) error {
	if _, err := p.output.Update(mapRows(oldRows, p.project), mapRows(newRows, p.project)); err != nil {
		return fmt.Errorf("couldn't update projected rows: %w", err)
	}
	return nil
}

// The output key is a subset of the projected attributes, so it's read straight
// off the source rows.
func (p *Project) onRemove(rows []relvar.Row) error {
	p.output.Remove(rows)
	return nil
}
