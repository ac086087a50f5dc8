package bayes

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlNetwork struct {
	Name      string         `yaml:"name"`
	Variables []yamlVariable `yaml:"variables"`
}

type yamlVariable struct {
	Name     string    `yaml:"name"`
	Outcomes []string  `yaml:"outcomes"`
	Parents  []string  `yaml:"parents"`
	Table    []float64 `yaml:"table"`
}

// CompileYAML reads a network of the form
//
//	variables:
//	  - name: A
//	    outcomes: [T, F]
//	    table: [0.3, 0.7]
//	  - name: B
//	    outcomes: [T, F]
//	    parents: [A]
//	    table: [0.8, 0.2, 0.1, 0.9]
func (c *Compiler) CompileYAML(source string) (*Network, error) {
	var doc yamlNetwork
	if err := yaml.Unmarshal([]byte(source), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML network: %w", err)
	}

	vars := make([]Variable, len(doc.Variables))
	for i, v := range doc.Variables {
		vars[i] = Variable{
			Name:     v.Name,
			Outcomes: v.Outcomes,
			Parents:  v.Parents,
			Table:    v.Table,
		}
	}
	return NewNetwork(vars, c.opts...)
}
