package relvar

import (
	"fmt"
	"strings"

	"github.com/google/btree"
)

// UniqueKey is the ordered list of attributes identifying a row.
type UniqueKey []string

// Validate checks the key against the spec it's supposed to identify rows of.
func (key UniqueKey) Validate(spec Spec) error {
	if len(key) == 0 {
		return schemaErrf("unique key", "unique key is empty")
	}
	seen := make(map[string]bool, len(key))
	for _, name := range key {
		if seen[name] {
			return schemaErrf("unique key", "attribute '%s' is listed twice in unique key %s", name, key)
		}
		seen[name] = true
		if !spec.Has(name) {
			return schemaErrf("unique key", "unique key %s is not a subset of spec %s: missing '%s'", key, spec, name)
		}
	}
	return nil
}

// Of projects the row onto the key. Missing attributes become null.
func (key UniqueKey) Of(row Row) Key {
	out := make(Key, len(key))
	for i, name := range key {
		out[i] = row[name]
	}
	return out
}

// Compare orders two rows lexicographically by the key attributes.
func (key UniqueKey) Compare(a, b Row) int {
	for _, name := range key {
		if comp := a[name].Compare(b[name]); comp != 0 {
			return comp
		}
	}
	return 0
}

// Same reports whether both rows identify the same entity.
func (key UniqueKey) Same(a, b Row) bool {
	return key.Compare(a, b) == 0
}

func (key UniqueKey) Equals(other UniqueKey) bool {
	if len(key) != len(other) {
		return false
	}
	for i := range key {
		if key[i] != other[i] {
			return false
		}
	}
	return true
}

func (key UniqueKey) Contains(attribute string) bool {
	for _, name := range key {
		if name == attribute {
			return true
		}
	}
	return false
}

func (key UniqueKey) String() string {
	return "[" + strings.Join(key, ", ") + "]"
}

// Key is a row projected onto a unique key.
type Key []Value

type KeyIface interface {
	GetKey() Key
}

func (key Key) GetKey() Key {
	return key
}

func (key Key) Less(than btree.Item) bool {
	thanTyped, ok := than.(KeyIface)
	if !ok {
		panic(fmt.Sprintf("invalid key comparison: %T", than))
	}

	return CompareKeys(key, thanTyped.GetKey()) == -1
}

// CompareKeys compares keys lexicographically, a shorter prefix sorts first.
func CompareKeys(key, than Key) int {
	maxLen := len(key)
	if len(than) > maxLen {
		maxLen = len(than)
	}

	for i := 0; i < maxLen; i++ {
		if i == len(key) {
			return -1
		} else if i == len(than) {
			return 1
		}

		if comp := key[i].Compare(than[i]); comp != 0 {
			return comp
		}
	}

	return 0
}

func (key Key) String() string {
	builder := &strings.Builder{}
	builder.WriteString("(")
	for i := range key {
		if i > 0 {
			builder.WriteString(", ")
		}
		key[i].append(builder)
	}
	builder.WriteString(")")
	return builder.String()
}
