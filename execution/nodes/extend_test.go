package nodes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/relvar/execution"
	"github.com/cube2222/relvar/relvar"
)

var fooBarSpec = relvar.Spec{"foo": relvar.Number, "bar": relvar.Text}

func TestExtend(t *testing.T) {
	loop := execution.NewLoop()
	base := NewBase(t, loop, "base", fooBarSpec, relvar.UniqueKey{"foo"}, row(map[string]any{"foo": 42, "bar": "x"}))
	Drain(t, loop)

	e, err := NewExtend(base, map[string]Property{"qux": Constant(relvar.NewText("Y"))})
	require.NoError(t, err)
	assert.True(t, e.Spec().Equals(relvar.Spec{"foo": relvar.Number, "bar": relvar.Text, "qux": relvar.Text}))
	assert.Equal(t, relvar.UniqueKey{"foo"}, e.UniqueKey())
	ExpectSnapshot(t, e, row(map[string]any{"foo": 42, "bar": "x", "qux": "Y"}))

	rec := Record(e)

	Insert(t, base, row(map[string]any{"foo": 7, "bar": "z"}))
	Drain(t, loop)
	ExpectChanges(t, rec, inserted(row(map[string]any{"foo": 7, "bar": "z", "qux": "Y"})))

	Update(t, base, rows(map[string]any{"foo": 7}), rows(map[string]any{"foo": 8, "bar": "w"}))
	Drain(t, loop)
	ExpectChanges(t, rec, updated(
		rows(map[string]any{"foo": 7, "bar": "z", "qux": "Y"}),
		rows(map[string]any{"foo": 8, "bar": "w", "qux": "Y"}),
	))

	base.Remove(rows(map[string]any{"foo": 42}))
	Drain(t, loop)
	ExpectChanges(t, rec, removed(row(map[string]any{"foo": 42, "bar": "x", "qux": "Y"})))
	ExpectSnapshot(t, e, row(map[string]any{"foo": 8, "bar": "w", "qux": "Y"}))
}

func TestExtend_Computed(t *testing.T) {
	loop := execution.NewLoop()
	base := NewBase(t, loop, "base", fooBarSpec, relvar.UniqueKey{"foo"})

	e, err := NewExtend(base, map[string]Property{
		"double": Computed(relvar.Number, func(row relvar.Row) relvar.Value {
			return relvar.NewNumber(row["foo"].Number * 2)
		}),
		"ref": Constant(relvar.NewReference(&struct{}{})),
	})
	require.NoError(t, err)

	Insert(t, base, row(map[string]any{"foo": 21, "bar": "x"}))
	Drain(t, loop)

	got, ok := e.Get(row(map[string]any{"foo": 21}))
	require.True(t, ok)
	assert.Equal(t, relvar.NewNumber(42), got["double"])
	assert.Equal(t, relvar.TypeIDReference, got["ref"].TypeID)
}

func TestExtend_InvalidComputedValue(t *testing.T) {
	loop := execution.NewLoop()
	base := NewBase(t, loop, "base", fooBarSpec, relvar.UniqueKey{"foo"})

	_, err := NewExtend(base, map[string]Property{
		"broken": Computed(relvar.Number, func(row relvar.Row) relvar.Value {
			return relvar.NewText("not a number")
		}),
	})
	require.NoError(t, err)

	Insert(t, base, row(map[string]any{"foo": 1, "bar": "x"}))
	_, err = loop.Drain()
	var validationErr *relvar.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestExtend_SchemaErrors(t *testing.T) {
	base := NewBase(t, execution.NewLoop(), "base", fooBarSpec, relvar.UniqueKey{"foo"})

	tests := []struct {
		name       string
		properties map[string]Property
	}{
		{
			name:       "name collision",
			properties: map[string]Property{"bar": Constant(relvar.NewText("x"))},
		},
		{
			name:       "constant of the wrong type",
			properties: map[string]Property{"qux": {Type: relvar.Number, Value: relvar.NewText("x")}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewExtend(base, tt.properties)
			ExpectSchemaError(t, err)
			assert.Nil(t, e)
		})
	}
	assert.Equal(t, 0, base.Subscribers())
}
