package relvar

import (
	"sort"
	"strings"
)

// Spec maps attribute names to their declared types.
type Spec map[string]Type

// Attributes returns the attribute names in sorted order.
func (spec Spec) Attributes() []string {
	out := make([]string, 0, len(spec))
	for name := range spec {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (spec Spec) Has(attribute string) bool {
	_, ok := spec[attribute]
	return ok
}

// Validate checks that every attribute of the spec is present on the row with
// the declared type. Attributes not in the spec are ignored.
func (spec Spec) Validate(row Row) bool {
	for name, t := range spec {
		value, ok := row[name]
		if !ok {
			return false
		}
		if !t.Accepts(value) {
			return false
		}
	}
	return true
}

func (spec Spec) Copy() Spec {
	out := make(Spec, len(spec))
	for name, t := range spec {
		out[name] = t
	}
	return out
}

// Restrict returns the spec limited to attributes. It reports the first
// attribute which is missing from the spec.
func (spec Spec) Restrict(attributes []string) (Spec, string, bool) {
	out := make(Spec, len(attributes))
	for _, name := range attributes {
		t, ok := spec[name]
		if !ok {
			return nil, name, false
		}
		out[name] = t
	}
	return out, "", true
}

// Merge returns the union of both specs, types of other win.
func (spec Spec) Merge(other Spec) Spec {
	out := spec.Copy()
	for name, t := range other {
		out[name] = t
	}
	return out
}

// Overlap returns the sorted names of the attributes present in both specs.
func (spec Spec) Overlap(other Spec) []string {
	var out []string
	for _, name := range spec.Attributes() {
		if other.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

func (spec Spec) Equals(other Spec) bool {
	if len(spec) != len(other) {
		return false
	}
	for name, t := range spec {
		otherType, ok := other[name]
		if !ok || !t.Equals(otherType) {
			return false
		}
	}
	return true
}

func (spec Spec) String() string {
	attributes := spec.Attributes()
	parts := make([]string, len(attributes))
	for i, name := range attributes {
		parts[i] = name + ": " + spec[name].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
