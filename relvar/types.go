package relvar

import (
	"fmt"
	"math"
	"reflect"
)

type TypeID int

const (
	TypeIDNull TypeID = iota
	TypeIDNumber
	TypeIDText
	TypeIDBoolean
	TypeIDReference
)

func (t TypeID) String() string {
	switch t {
	case TypeIDNull:
		return "null"
	case TypeIDNumber:
		return "number"
	case TypeIDText:
		return "text"
	case TypeIDBoolean:
		return "boolean"
	case TypeIDReference:
		return "reference"
	}
	return fmt.Sprintf("invalid type id %d", int(t))
}

// Type is the declared type of an attribute.
// Reference types carry the Go type their values have to be instances of.
type Type struct {
	TypeID    TypeID
	Reference reflect.Type
}

var (
	Number  = Type{TypeID: TypeIDNumber}
	Text    = Type{TypeID: TypeIDText}
	Boolean = Type{TypeID: TypeIDBoolean}
)

// ReferenceOf returns the reference type of T. If T is an interface, values
// implementing it are accepted.
func ReferenceOf[T any]() Type {
	return Reference(reflect.TypeOf((*T)(nil)).Elem())
}

func Reference(t reflect.Type) Type {
	return Type{
		TypeID:    TypeIDReference,
		Reference: t,
	}
}

// ParseType parses the name of a scalar type.
func ParseType(name string) (Type, error) {
	switch name {
	case "number":
		return Number, nil
	case "text", "string":
		return Text, nil
	case "boolean", "bool":
		return Boolean, nil
	default:
		return Type{}, fmt.Errorf("unknown type '%s'", name)
	}
}

// Accepts reports whether value is an instance of t.
func (t Type) Accepts(value Value) bool {
	if value.TypeID != t.TypeID {
		return false
	}
	if t.TypeID == TypeIDNumber {
		return !math.IsNaN(value.Number)
	}
	if t.TypeID != TypeIDReference {
		return true
	}
	if value.Ref == nil || t.Reference == nil {
		return false
	}
	valueType := reflect.TypeOf(value.Ref)
	if t.Reference.Kind() == reflect.Interface {
		return valueType.Implements(t.Reference)
	}
	return valueType.AssignableTo(t.Reference)
}

func (t Type) Equals(other Type) bool {
	return t.TypeID == other.TypeID && t.Reference == other.Reference
}

func (t Type) String() string {
	if t.TypeID == TypeIDReference {
		if t.Reference == nil {
			return "reference"
		}
		return fmt.Sprintf("reference(%s)", t.Reference.String())
	}
	return t.TypeID.String()
}
