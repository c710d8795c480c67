package graph

import (
	"fmt"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

type Field struct {
	Name, Value string
}

type Child struct {
	Name string
	Node *Node
}

// Node is a single relvar in a derivation graph. Nodes sharing an ID are
// rendered once, so diamonds show up as diamonds.
type Node struct {
	ID       string
	Name     string
	Fields   []Field
	Children []Child
}

func NewNode(id, name string) *Node {
	return &Node{
		ID:   id,
		Name: name,
	}
}

func (n *Node) AddField(name, value string) {
	n.Fields = append(n.Fields, Field{
		Name:  name,
		Value: value,
	})
}

func (n *Node) AddChild(name string, node *Node) {
	n.Children = append(n.Children, Child{
		Name: name,
		Node: node,
	})
}

type Visualizer interface {
	Visualize() *Node
}

// Show renders the nodes, and everything they derive from, as a single graph.
func Show(nodes ...*Node) (*gographviz.Graph, error) {
	graph := gographviz.NewGraph()
	graph.Directed = true
	if err := graph.AddAttr("", "rankdir", "LR"); err != nil {
		return nil, errors.Wrap(err, "couldn't set graph direction")
	}
	builder := &graphBuilder{
		graph:        graph,
		nameCounters: make(map[string]int),
		rendered:     make(map[string]string),
	}

	for _, node := range nodes {
		if _, err := getGraphNode(builder, node); err != nil {
			return nil, err
		}
	}

	return graph, nil
}

type graphBuilder struct {
	graph        *gographviz.Graph
	nameCounters map[string]int
	rendered     map[string]string
}

func (gb *graphBuilder) getID(name string) string {
	count := gb.nameCounters[name]
	gb.nameCounters[name]++
	return fmt.Sprintf("%s_%d", strings.Replace(name, " ", "_", -1), count)
}

func escape(s string) string {
	replacer := strings.NewReplacer(
		`"`, `\"`,
		"{", `\{`,
		"}", `\}`,
		"<", `\<`,
		">", `\>`,
		"|", `\|`,
	)
	return replacer.Replace(s)
}

func getGraphNode(gb *graphBuilder, node *Node) (string, error) {
	if node.ID != "" {
		if id, ok := gb.rendered[node.ID]; ok {
			return id, nil
		}
	}

	fields := make([]string, len(node.Fields))
	for i, field := range node.Fields {
		fields[i] = fmt.Sprintf("<%s> %s: %s", field.Name, field.Name, escape(field.Value))
	}
	childPorts := make([]string, len(node.Children))
	for i, child := range node.Children {
		childPorts[i] = fmt.Sprintf("<%s> %s", child.Name, child.Name)
	}

	var labelParts []string
	labelParts = append(labelParts, fmt.Sprintf("<f0> %s", escape(node.Name)))

	if len(fields) > 0 {
		labelParts = append(labelParts, strings.Join(fields, "|"))
	}
	if len(childPorts) > 0 {
		labelParts = append(labelParts, strings.Join(childPorts, "|"))
	}

	label := fmt.Sprintf(
		"\"{{%s}}\"",
		strings.Join(labelParts, "}|{"),
	)

	id := gb.getID(node.Name)
	if node.ID != "" {
		gb.rendered[node.ID] = id
	}
	if err := gb.graph.AddNode("", id, map[string]string{
		"shape": "record",
		"label": label,
	}); err != nil {
		return "", errors.Wrapf(err, "couldn't add node %s", id)
	}

	for _, child := range node.Children {
		childGraphNode, err := getGraphNode(gb, child.Node)
		if err != nil {
			return "", err
		}
		if err := gb.graph.AddPortEdge(id, child.Name, childGraphNode, "", true, map[string]string{}); err != nil {
			return "", errors.Wrapf(err, "couldn't add edge from %s to %s", id, childGraphNode)
		}
	}
	return id, nil
}
