package formats

import (
	"fmt"
	"io"

	"github.com/valyala/fastjson"

	"github.com/cube2222/relvar/relvar"
)

// JSONFormatter writes one JSON object per row.
type JSONFormatter struct {
	buf     []byte
	arena   *fastjson.Arena
	w       io.Writer
	columns []Column
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{
		buf:   make([]byte, 0, 1024),
		arena: new(fastjson.Arena),
		w:     w,
	}
}

func (t *JSONFormatter) SetSchema(columns []Column) {
	t.columns = columns
}

func (t *JSONFormatter) Write(row relvar.Row) error {
	obj := t.arena.NewObject()
	for i := range t.columns {
		obj.Set(t.columns[i].Name, ValueToJson(t.arena, row[t.columns[i].Name]))
	}

	t.buf = obj.MarshalTo(t.buf)
	t.buf = append(t.buf, '\n')
	_, err := t.w.Write(t.buf)
	t.buf = t.buf[:0]
	t.arena.Reset()
	return err
}

// ValueToJson converts a value using the arena. References are printed.
func ValueToJson(arena *fastjson.Arena, value relvar.Value) *fastjson.Value {
	switch value.TypeID {
	case relvar.TypeIDNull:
		return arena.NewNull()
	case relvar.TypeIDNumber:
		return arena.NewNumberFloat64(value.Number)
	case relvar.TypeIDText:
		return arena.NewString(value.Str)
	case relvar.TypeIDBoolean:
		if value.Boolean {
			return arena.NewTrue()
		} else {
			return arena.NewFalse()
		}
	case relvar.TypeIDReference:
		return arena.NewString(fmt.Sprintf("%v", value.Ref))
	default:
		panic(fmt.Sprintf("invalid value type to print: %s", value.TypeID.String()))
	}
}

func (t *JSONFormatter) Close() error {
	return nil
}
