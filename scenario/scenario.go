// Package scenario describes relvars, the views derived from them and a list
// of mutations in YAML, so that they can be built and played from the CLI.
package scenario

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Scenario struct {
	Relvars []RelvarDefinition `yaml:"relvars"`
	Views   []ViewDefinition   `yaml:"views"`
	Steps   []Step             `yaml:"steps"`
}

type RelvarDefinition struct {
	Name string `yaml:"name"`
	// Spec maps attribute names to number, text or boolean.
	Spec map[string]string `yaml:"spec"`
	Key  []string          `yaml:"key"`
	Rows []map[string]any  `yaml:"rows"`
}

type ViewDefinition struct {
	Name    string   `yaml:"name"`
	Op      string   `yaml:"op"`
	Sources []string `yaml:"sources"`

	// Attributes is used by project.
	Attributes []string `yaml:"attributes"`
	// Key is used by project and join, it's optional.
	Key []string `yaml:"key"`
	// Properties is used by extend.
	Properties map[string]PropertyDefinition `yaml:"properties"`
}

// PropertyDefinition is either a constant Value or a copy of the attribute From.
type PropertyDefinition struct {
	Type  string `yaml:"type"`
	Value any    `yaml:"value"`
	From  string `yaml:"from"`
}

// Step is a single mutation of a base relvar, or a print of some relvars.
// Exactly one of Insert, Update, Remove and Print should be set.
type Step struct {
	Insert string           `yaml:"insert"`
	Update string           `yaml:"update"`
	Remove string           `yaml:"remove"`
	Print  []string         `yaml:"print"`
	Keys   []map[string]any `yaml:"keys"`
	Rows   []map[string]any `yaml:"rows"`
}

func (step *Step) Kind() string {
	switch {
	case step.Insert != "":
		return "insert"
	case step.Update != "":
		return "update"
	case step.Remove != "":
		return "remove"
	case step.Print != nil:
		return "print"
	default:
		return ""
	}
}

func Parse(r io.Reader) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, errors.Wrap(err, "couldn't decode yaml scenario")
	}
	return &scenario, nil
}

func ReadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	return Parse(f)
}
