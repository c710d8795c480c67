package relvar

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/hashstructure"
)

var ZeroValue = Value{}

// Value is a single attribute value. The zero Value is null.
type Value struct {
	TypeID  TypeID
	Number  float64
	Str     string
	Boolean bool
	Ref     any
}

func NewNull() Value {
	return Value{
		TypeID: TypeIDNull,
	}
}

func NewNumber(value float64) Value {
	return Value{
		TypeID: TypeIDNumber,
		Number: value,
	}
}

func NewText(value string) Value {
	return Value{
		TypeID: TypeIDText,
		Str:    value,
	}
}

func NewBoolean(value bool) Value {
	return Value{
		TypeID:  TypeIDBoolean,
		Boolean: value,
	}
}

func NewReference(value any) Value {
	return Value{
		TypeID: TypeIDReference,
		Ref:    value,
	}
}

// NewValue converts a raw Go value into a Value.
// Integers and floats become numbers; anything unrecognized becomes a reference.
func NewValue(raw any) Value {
	switch raw := raw.(type) {
	case nil:
		return NewNull()
	case Value:
		return raw
	case bool:
		return NewBoolean(raw)
	case string:
		return NewText(raw)
	case int:
		return NewNumber(float64(raw))
	case int32:
		return NewNumber(float64(raw))
	case int64:
		return NewNumber(float64(raw))
	case uint:
		return NewNumber(float64(raw))
	case uint64:
		return NewNumber(float64(raw))
	case float32:
		return NewNumber(float64(raw))
	case float64:
		return NewNumber(raw)
	default:
		return NewReference(raw)
	}
}

func (value Value) Type() Type {
	if value.TypeID == TypeIDReference && value.Ref != nil {
		return Reference(reflect.TypeOf(value.Ref))
	}
	return Type{TypeID: value.TypeID}
}

func (value Value) Compare(other Value) int {
	if value.TypeID != other.TypeID {
		if value.TypeID < other.TypeID {
			return -1
		} else {
			return 1
		}
	}

	switch value.TypeID {
	case TypeIDNull:
		return 0

	case TypeIDNumber:
		// NaN sorts before every other number and equals only NaN.
		if aNaN, bNaN := math.IsNaN(value.Number), math.IsNaN(other.Number); aNaN || bNaN {
			switch {
			case aNaN && bNaN:
				return 0
			case aNaN:
				return -1
			default:
				return 1
			}
		}
		if value.Number < other.Number {
			return -1
		} else if value.Number > other.Number {
			return 1
		} else {
			return 0
		}

	case TypeIDText:
		return strings.Compare(value.Str, other.Str)

	case TypeIDBoolean:
		if value.Boolean == other.Boolean {
			return 0
		} else if !value.Boolean {
			return -1
		} else {
			return 1
		}

	case TypeIDReference:
		return compareReferences(value.Ref, other.Ref)

	default:
		panic("impossible, type switch bug")
	}
}

func compareReferences(a, b any) int {
	aType, bType := reflect.TypeOf(a), reflect.TypeOf(b)
	if aType != bType {
		return strings.Compare(fmt.Sprint(aType), fmt.Sprint(bType))
	}
	if aType != nil && aType.Comparable() && a == b {
		return 0
	}
	if aType != nil && aType.Kind() == reflect.Ptr {
		aPtr, bPtr := reflect.ValueOf(a).Pointer(), reflect.ValueOf(b).Pointer()
		if aPtr < bPtr {
			return -1
		}
		return 1
	}

	aHash, aErr := hashstructure.Hash(a, nil)
	bHash, bErr := hashstructure.Hash(b, nil)
	if aErr == nil && bErr == nil {
		if aHash < bHash {
			return -1
		} else if aHash > bHash {
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprintf("%#v", a), fmt.Sprintf("%#v", b))
}

func (value Value) Equal(other Value) bool {
	return value.Compare(other) == 0
}

func (value Value) String() string {
	builder := &strings.Builder{}
	value.append(builder)
	return builder.String()
}

func (value Value) append(builder *strings.Builder) {
	switch value.TypeID {
	case TypeIDNull:
		builder.WriteString("<null>")
	case TypeIDNumber:
		builder.WriteString(strconv.FormatFloat(value.Number, 'f', -1, 64))
	case TypeIDText:
		builder.WriteString(strconv.Quote(value.Str))
	case TypeIDBoolean:
		builder.WriteString(strconv.FormatBool(value.Boolean))
	case TypeIDReference:
		builder.WriteString(fmt.Sprintf("%v", value.Ref))
	}
}

// ToRawGoValue is the inverse of NewValue for scalar values.
func (value Value) ToRawGoValue() any {
	switch value.TypeID {
	case TypeIDNull:
		return nil
	case TypeIDNumber:
		return value.Number
	case TypeIDText:
		return value.Str
	case TypeIDBoolean:
		return value.Boolean
	case TypeIDReference:
		return value.Ref
	default:
		panic("impossible, type switch bug")
	}
}
