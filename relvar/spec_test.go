package relvar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpec_Validate(t *testing.T) {
	spec := Spec{"foo": Number, "bar": Text}

	tests := []struct {
		name string
		row  Row
		want bool
	}{
		{name: "valid", row: NewRow(map[string]any{"foo": 1, "bar": "a"}), want: true},
		{name: "extra attributes are ignored", row: NewRow(map[string]any{"foo": 1, "bar": "a", "qux": true}), want: true},
		{name: "missing attribute", row: NewRow(map[string]any{"foo": 1}), want: false},
		{name: "wrong type", row: NewRow(map[string]any{"foo": "1", "bar": "a"}), want: false},
		{name: "null", row: NewRow(map[string]any{"foo": nil, "bar": "a"}), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, spec.Validate(tt.row))
		})
	}
}

func TestSpec_Algebra(t *testing.T) {
	left := Spec{"id": Number, "x": Text}
	right := Spec{"id": Number, "y": Boolean}

	restricted, missing, ok := left.Restrict([]string{"x"})
	assert.True(t, ok)
	assert.Empty(t, missing)
	assert.True(t, restricted.Equals(Spec{"x": Text}))

	_, missing, ok = left.Restrict([]string{"x", "nope"})
	assert.False(t, ok)
	assert.Equal(t, "nope", missing)

	assert.True(t, left.Merge(right).Equals(Spec{"id": Number, "x": Text, "y": Boolean}))
	assert.Equal(t, []string{"id"}, left.Overlap(right))
	assert.Empty(t, left.Overlap(Spec{"z": Text}))
	assert.False(t, left.Equals(right))
	assert.Equal(t, "{id: number, x: text}", left.String())
	assert.Equal(t, []string{"id", "x"}, left.Attributes())
}

func TestUniqueKey_Compare(t *testing.T) {
	key := UniqueKey{"a", "b"}

	tests := []struct {
		name        string
		left, right Row
		want        int
	}{
		{
			name:  "equal",
			left:  NewRow(map[string]any{"a": 1, "b": "x", "c": 1}),
			right: NewRow(map[string]any{"a": 1, "b": "x", "c": 2}),
			want:  0,
		},
		{
			name:  "first attribute decides",
			left:  NewRow(map[string]any{"a": 1, "b": "z"}),
			right: NewRow(map[string]any{"a": 2, "b": "a"}),
			want:  -1,
		},
		{
			name:  "second attribute breaks ties",
			left:  NewRow(map[string]any{"a": 1, "b": "z"}),
			right: NewRow(map[string]any{"a": 1, "b": "a"}),
			want:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, key.Compare(tt.left, tt.right))
			assert.Equal(t, tt.want, CompareKeys(key.Of(tt.left), key.Of(tt.right)))
			assert.Equal(t, tt.want == 0, key.Same(tt.left, tt.right))
		})
	}
}

func TestCompareKeys_Prefix(t *testing.T) {
	short := Key{NewNumber(1)}
	long := Key{NewNumber(1), NewText("a")}
	assert.Equal(t, -1, CompareKeys(short, long))
	assert.Equal(t, 1, CompareKeys(long, short))
	assert.True(t, short.Less(long))
	assert.Equal(t, `(1, "a")`, long.String())
}

func TestRow(t *testing.T) {
	row := NewRow(map[string]any{"a": 1, "b": "x"})

	assert.Equal(t, NewRow(map[string]any{"a": 1}), row.Project([]string{"a", "missing"}))
	assert.Equal(t, NewRow(map[string]any{"a": 2, "b": "x", "c": true}), row.Merge(NewRow(map[string]any{"a": 2, "c": true})))
	assert.True(t, row.Equal(row.Copy()))
	assert.False(t, row.Equal(NewRow(map[string]any{"a": 1})))
	assert.Equal(t, `{a: 1, b: "x"}`, row.String())
}
