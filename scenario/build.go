package scenario

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/cube2222/relvar/execution"
	"github.com/cube2222/relvar/execution/nodes"
	"github.com/cube2222/relvar/graph"
	"github.com/cube2222/relvar/relvar"
)

// Environment holds everything a scenario built.
type Environment struct {
	Loop  *execution.Loop
	Bases map[string]*relvar.Relvar
	Views map[string]View
	// Names lists relvars and views in declaration order.
	Names []string
}

// View is what every operator returns.
type View interface {
	relvar.Source
	Close()
}

func (env *Environment) Source(name string) (relvar.Source, bool) {
	if base, ok := env.Bases[name]; ok {
		return base, true
	}
	if view, ok := env.Views[name]; ok {
		return view, true
	}
	return nil, false
}

// Visualizers returns every relvar and view, for rendering the whole graph.
func (env *Environment) Visualizers() []graph.Visualizer {
	out := make([]graph.Visualizer, 0, len(env.Names))
	for _, name := range env.Names {
		source, _ := env.Source(name)
		out = append(out, source)
	}
	return out
}

// Close detaches all views from their sources.
func (env *Environment) Close() {
	for _, name := range env.Names {
		if view, ok := env.Views[name]; ok {
			view.Close()
		}
	}
}

// Build creates the relvars and views of the scenario on loop. Initial rows are
// inserted before any view is built, and the loop is drained afterwards.
func Build(loop *execution.Loop, scenario *Scenario) (*Environment, error) {
	env := &Environment{
		Loop:  loop,
		Bases: map[string]*relvar.Relvar{},
		Views: map[string]View{},
	}

	for _, definition := range scenario.Relvars {
		if err := env.checkName(definition.Name); err != nil {
			return nil, err
		}
		base, err := buildRelvar(loop, definition)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't build relvar %s", definition.Name)
		}
		env.Bases[definition.Name] = base
		env.Names = append(env.Names, definition.Name)
	}

	for _, definition := range scenario.Views {
		if err := env.checkName(definition.Name); err != nil {
			return nil, err
		}
		view, err := env.buildView(definition)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't build %s view %s", definition.Op, definition.Name)
		}
		env.Views[definition.Name] = view
		env.Names = append(env.Names, definition.Name)
	}

	if _, err := loop.Drain(); err != nil {
		return nil, errors.Wrap(err, "couldn't propagate initial rows")
	}

	return env, nil
}

func (env *Environment) checkName(name string) error {
	if name == "" {
		return errors.New("relvar or view without a name")
	}
	if _, ok := env.Source(name); ok {
		return errors.Errorf("name %s is used twice", name)
	}
	return nil
}

func buildRelvar(loop *execution.Loop, definition RelvarDefinition) (*relvar.Relvar, error) {
	spec := relvar.Spec{}
	for name, typeName := range definition.Spec {
		t, err := relvar.ParseType(typeName)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid type of attribute %s", name)
		}
		spec[name] = t
	}

	base, err := relvar.New(loop, spec, definition.Key, relvar.WithName(definition.Name))
	if err != nil {
		return nil, err
	}
	if len(definition.Rows) > 0 {
		if _, err := base.Insert(rowsOf(definition.Rows)); err != nil {
			return nil, errors.Wrap(err, "couldn't insert initial rows")
		}
	}
	return base, nil
}

func (env *Environment) sources(definition ViewDefinition, count int) ([]relvar.Source, error) {
	if len(definition.Sources) != count {
		return nil, errors.Errorf("expected %d sources, got %d", count, len(definition.Sources))
	}
	out := make([]relvar.Source, count)
	for i, name := range definition.Sources {
		source, ok := env.Source(name)
		if !ok {
			return nil, errors.Errorf("unknown source %s", name)
		}
		out[i] = source
	}
	return out, nil
}

func (env *Environment) buildView(definition ViewDefinition) (View, error) {
	name := nodes.WithName(definition.Name)

	switch definition.Op {
	case "extend":
		sources, err := env.sources(definition, 1)
		if err != nil {
			return nil, err
		}
		properties, err := buildProperties(sources[0].Spec(), definition.Properties)
		if err != nil {
			return nil, err
		}
		return nodes.NewExtend(sources[0], properties, name)

	case "project":
		sources, err := env.sources(definition, 1)
		if err != nil {
			return nil, err
		}
		return nodes.NewProject(sources[0], definition.Attributes, definition.Key, name)

	case "union":
		sources, err := env.sources(definition, 2)
		if err != nil {
			return nil, err
		}
		return nodes.NewUnion(sources[0], sources[1], name)

	case "difference":
		sources, err := env.sources(definition, 2)
		if err != nil {
			return nil, err
		}
		return nodes.NewDifference(sources[0], sources[1], name)

	case "join":
		sources, err := env.sources(definition, 2)
		if err != nil {
			return nil, err
		}
		return nodes.NewJoin(sources[0], sources[1], definition.Key, name)

	default:
		return nil, errors.Errorf("unknown operator '%s'", definition.Op)
	}
}

func buildProperties(spec relvar.Spec, definitions map[string]PropertyDefinition) (map[string]nodes.Property, error) {
	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]nodes.Property, len(definitions))
	for _, name := range names {
		definition := definitions[name]
		if definition.From != "" {
			t, ok := spec[definition.From]
			if !ok {
				return nil, errors.Errorf("property %s copies unknown attribute %s", name, definition.From)
			}
			from := definition.From
			out[name] = nodes.Computed(t, func(row relvar.Row) relvar.Value {
				return row[from]
			})
			continue
		}

		value := relvar.NewValue(definition.Value)
		if definition.Type == "" {
			out[name] = nodes.Constant(value)
			continue
		}
		t, err := relvar.ParseType(definition.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid type of property %s", name)
		}
		out[name] = nodes.Property{Type: t, Value: value}
	}
	return out, nil
}

func rowsOf(raw []map[string]any) []relvar.Row {
	out := make([]relvar.Row, len(raw))
	for i := range raw {
		out[i] = relvar.NewRow(raw[i])
	}
	return out
}
