package stream

import (
	"fmt"
	"io"

	"github.com/cube2222/relvar/relvar"
)

// ChangePrinter writes every change delivered by the relvars it watches, one
// line per row.
type ChangePrinter struct {
	w io.Writer
}

func NewChangePrinter(w io.Writer) *ChangePrinter {
	return &ChangePrinter{
		w: w,
	}
}

// Watch prints the changes of source committed from now on.
func (p *ChangePrinter) Watch(source relvar.Source) *relvar.Subscription {
	name := source.Name()
	_, sub := source.Watch(relvar.Handlers{
		Insert: func(rows []relvar.Row) error {
			for _, row := range rows {
				if _, err := fmt.Fprintf(p.w, "%s: + %s\n", name, row); err != nil {
					return err
				}
			}
			return nil
		},
		Update: func(oldRows, newRows []relvar.Row) error {
			for i := range newRows {
				if _, err := fmt.Fprintf(p.w, "%s: ~ %s -> %s\n", name, oldRows[i], newRows[i]); err != nil {
					return err
				}
			}
			return nil
		},
		Remove: func(rows []relvar.Row) error {
			for _, row := range rows {
				if _, err := fmt.Fprintf(p.w, "%s: - %s\n", name, row); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return sub
}
