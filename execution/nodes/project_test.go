package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/relvar/execution"
	"github.com/cube2222/relvar/relvar"
)

var peopleSpec = relvar.Spec{"id": relvar.Number, "name": relvar.Text, "age": relvar.Number}

func TestProject(t *testing.T) {
	loop := execution.NewLoop()
	base := NewBase(t, loop, "people", peopleSpec, relvar.UniqueKey{"id"},
		row(map[string]any{"id": 1, "name": "alice", "age": 30}),
		row(map[string]any{"id": 2, "name": "bob", "age": 40}),
	)
	Drain(t, loop)

	p, err := NewProject(base, []string{"id", "name"}, nil)
	require.NoError(t, err)
	assert.True(t, p.Spec().Equals(relvar.Spec{"id": relvar.Number, "name": relvar.Text}))
	assert.Equal(t, relvar.UniqueKey{"id"}, p.UniqueKey())
	ExpectSnapshot(t, p,
		row(map[string]any{"id": 1, "name": "alice"}),
		row(map[string]any{"id": 2, "name": "bob"}),
	)

	rec := Record(p)

	Insert(t, base, row(map[string]any{"id": 3, "name": "carol", "age": 50}))
	Drain(t, loop)
	ExpectChanges(t, rec, inserted(row(map[string]any{"id": 3, "name": "carol"})))

	Update(t, base, rows(map[string]any{"id": 1}), rows(map[string]any{"id": 1, "name": "alicia", "age": 31}))
	Drain(t, loop)
	ExpectChanges(t, rec, updated(
		rows(map[string]any{"id": 1, "name": "alice"}),
		rows(map[string]any{"id": 1, "name": "alicia"}),
	))

	base.Remove(rows(map[string]any{"id": 2}))
	Drain(t, loop)
	ExpectChanges(t, rec, removed(row(map[string]any{"id": 2, "name": "bob"})))
	ExpectSnapshot(t, p,
		row(map[string]any{"id": 1, "name": "alicia"}),
		row(map[string]any{"id": 3, "name": "carol"}),
	)
}

func TestProject_Idempotent(t *testing.T) {
	loop := execution.NewLoop()
	base := NewBase(t, loop, "people", peopleSpec, relvar.UniqueKey{"id"},
		row(map[string]any{"id": 1, "name": "alice", "age": 30}),
		row(map[string]any{"id": 2, "name": "bob", "age": 40}),
	)

	attributes := []string{"id", "age"}
	once, err := NewProject(base, attributes, nil)
	require.NoError(t, err)
	twice, err := NewProject(once, attributes, nil)
	require.NoError(t, err)
	Drain(t, loop)
	assert.Equal(t, once.Snapshot(), twice.Snapshot())

	Insert(t, base, row(map[string]any{"id": 3, "name": "carol", "age": 50}))
	Drain(t, loop)
	assert.Equal(t, once.Snapshot(), twice.Snapshot())
	assert.Equal(t, 3, twice.Len())
}

func TestProject_CustomKey(t *testing.T) {
	loop := execution.NewLoop()
	base := NewBase(t, loop, "people", peopleSpec, relvar.UniqueKey{"id"},
		row(map[string]any{"id": 1, "name": "alice", "age": 30}),
	)

	p, err := NewProject(base, []string{"name", "age"}, relvar.UniqueKey{"name"})
	require.NoError(t, err)
	Drain(t, loop)
	assert.Equal(t, relvar.UniqueKey{"name"}, p.UniqueKey())

	_, ok := p.Get(row(map[string]any{"name": "alice"}))
	assert.True(t, ok)
}

func TestProject_SchemaErrors(t *testing.T) {
	base := NewBase(t, execution.NewLoop(), "people", peopleSpec, relvar.UniqueKey{"id"})

	tests := []struct {
		name       string
		attributes []string
		key        relvar.UniqueKey
	}{
		{name: "unknown attribute", attributes: []string{"id", "email"}},
		{name: "source key not projected", attributes: []string{"name"}},
		{name: "custom key not projected", attributes: []string{"id", "name"}, key: relvar.UniqueKey{"age"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProject(base, tt.attributes, tt.key)
			ExpectSchemaError(t, err)
		})
	}
}
