package cmd

import (
	"github.com/pkg/errors"

	"github.com/cube2222/relvar/graph"
	"github.com/cube2222/relvar/scenario"
)

func describe(env *scenario.Environment) (string, error) {
	visualizers := env.Visualizers()
	nodes := make([]*graph.Node, len(visualizers))
	for i := range visualizers {
		nodes[i] = visualizers[i].Visualize()
	}
	out, err := graph.Show(nodes...)
	if err != nil {
		return "", errors.Wrap(err, "couldn't render graph")
	}
	return out.String(), nil
}
