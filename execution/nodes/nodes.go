// Package nodes implements the operators deriving views from relvars.
//
// Every operator owns the relvar it writes to and hands out a read-only
// relvar.View of it. On construction it starts watching its sources and seeds
// the output from their current snapshots. After that it only ever processes
// deltas: an insert, update or remove on a source turns into the matching
// insert, update or remove on the output.
package nodes

import (
	"github.com/cube2222/relvar/execution"
	"github.com/cube2222/relvar/graph"
	"github.com/cube2222/relvar/relvar"
)

// sharedLoop returns the loop of the sources, all of which have to run on it.
func sharedLoop(op string, sources ...relvar.Source) (*execution.Loop, error) {
	loop := sources[0].Loop()
	for _, source := range sources[1:] {
		if source.Loop() != loop {
			return nil, relvar.SchemaErrorf(op, "sources %s and %s run on different loops", sources[0].Name(), source.Name())
		}
	}
	return loop, nil
}

type options struct {
	name string
}

type Option func(o *options)

// WithName names the output relvar of an operator.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func outputOptions(opts []Option, op string, inputs []relvar.Input, fields ...graph.Field) []relvar.Option {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	out := []relvar.Option{relvar.WithOrigin(op, inputs, fields...)}
	if o.name != "" {
		out = append(out, relvar.WithName(o.name))
	}
	return out
}

func mapRows(rows []relvar.Row, fn func(row relvar.Row) relvar.Row) []relvar.Row {
	out := make([]relvar.Row, len(rows))
	for i := range rows {
		out[i] = fn(rows[i])
	}
	return out
}
