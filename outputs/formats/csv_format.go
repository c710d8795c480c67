package formats

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cube2222/relvar/relvar"
)

type CSVFormatter struct {
	writer  *csv.Writer
	columns []Column
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	writer := csv.NewWriter(w)

	return &CSVFormatter{
		writer: writer,
	}
}

func (t *CSVFormatter) SetSchema(columns []Column) {
	t.columns = columns

	header := make([]string, len(columns))
	for i := range columns {
		header[i] = columns[i].Name
	}
	t.writer.Write(header)
}

func (t *CSVFormatter) Write(row relvar.Row) error {
	out := make([]string, len(t.columns))
	for i := range t.columns {
		value := row[t.columns[i].Name]
		if value.TypeID == relvar.TypeIDNull {
			continue
		}
		out[i] = fmt.Sprintf("%v", value.ToRawGoValue())
	}
	return t.writer.Write(out)
}

func (t *CSVFormatter) Close() error {
	t.writer.Flush()
	return t.writer.Error()
}
