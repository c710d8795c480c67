package stream

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/cube2222/relvar/outputs/formats"
	"github.com/cube2222/relvar/relvar"
)

// SnapshotPrinter prints the current contents of relvars. With the diff
// format it prints the unified diff of the table rendering against the
// previous time the same relvar was printed.
type SnapshotPrinter struct {
	w        io.Writer
	format   string
	previous map[string]string
	printed  map[string]int
}

func NewSnapshotPrinter(w io.Writer, format string) *SnapshotPrinter {
	return &SnapshotPrinter{
		w:        w,
		format:   format,
		previous: map[string]string{},
		printed:  map[string]int{},
	}
}

func (p *SnapshotPrinter) Print(source relvar.Source) error {
	name := source.Name()
	if p.format != "diff" {
		format, err := formats.New(p.format, p.w)
		if err != nil {
			return err
		}
		fmt.Fprintf(p.w, "%s:\n", name)
		return formats.WriteAll(format, source)
	}

	var buf bytes.Buffer
	if err := formats.WriteAll(formats.NewTableFormatter(&buf), source); err != nil {
		return err
	}
	current := buf.String()

	version := p.printed[name]
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(p.previous[name]),
		B:        difflib.SplitLines(current),
		FromFile: fmt.Sprintf("%s@%d", name, version),
		ToFile:   fmt.Sprintf("%s@%d", name, version+1),
		Context:  1,
	})
	if err != nil {
		return errors.Wrap(err, "couldn't diff outputs")
	}
	p.previous[name] = current
	p.printed[name] = version + 1

	if diff == "" {
		fmt.Fprintf(p.w, "%s: no changes\n", name)
		return nil
	}
	_, err = io.WriteString(p.w, diff)
	return err
}
