package relvar

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrUpdateMismatch is returned by Update when it gets a different number of
// keys and rows.
var ErrUpdateMismatch = errors.New("keys and rows of an update differ in length")

// SchemaError is returned when a relvar or a derived view can't be constructed
// because a structural precondition doesn't hold.
type SchemaError struct {
	Op  string
	Msg string
}

func schemaErrf(op string, format string, args ...any) error {
	return &SchemaError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// SchemaErrorf is used by operators outside of this package.
func SchemaErrorf(op string, format string, args ...any) error {
	return schemaErrf(op, format, args...)
}

func (e *SchemaError) Error() string {
	var buf strings.Builder
	buf.WriteString("schema error")
	if e.Op != "" {
		buf.WriteString(" in ")
		buf.WriteString(e.Op)
	}
	buf.WriteString(": ")
	buf.WriteString(e.Msg)
	return buf.String()
}

// ValidationError is returned by Insert and Update when some rows don't match
// the relvar's spec. Nothing is written in that case.
type ValidationError struct {
	Relvar  string
	Invalid int
	Total   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: could not write %d of %d rows: rows don't match spec", e.Relvar, e.Invalid, e.Total)
}
