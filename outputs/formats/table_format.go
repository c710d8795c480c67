package formats

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/cube2222/relvar/relvar"
)

type TableFormatter struct {
	table   *tablewriter.Table
	columns []Column
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	table := tablewriter.NewWriter(w)
	table.SetColWidth(24)
	table.SetRowLine(false)

	return &TableFormatter{
		table: table,
	}
}

func (t *TableFormatter) SetSchema(columns []Column) {
	t.columns = columns
	header := make([]string, len(columns))
	for i := range columns {
		header[i] = columns[i].Name
	}
	t.table.SetHeader(header)
	t.table.SetAutoFormatHeaders(false)
}

func (t *TableFormatter) Write(row relvar.Row) error {
	out := make([]string, len(t.columns))
	for i := range t.columns {
		out[i] = row[t.columns[i].Name].String()
	}
	t.table.Append(out)
	return nil
}

func (t *TableFormatter) Close() error {
	t.table.Render()
	return nil
}
