package bayes

import (
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
)

// XMLBIF 0.3 documents keep VARIABLE and DEFINITION (or PROBABILITY)
// elements under NETWORK; older files put them directly under the root.
type xmlbifDocument struct {
	Variables        []xmlbifVariable   `xml:"VARIABLE"`
	Definitions      []xmlbifDefinition `xml:"DEFINITION"`
	Probabilities    []xmlbifDefinition `xml:"PROBABILITY"`
	NetVariables     []xmlbifVariable   `xml:"NETWORK>VARIABLE"`
	NetDefinitions   []xmlbifDefinition `xml:"NETWORK>DEFINITION"`
	NetProbabilities []xmlbifDefinition `xml:"NETWORK>PROBABILITY"`
}

type xmlbifVariable struct {
	Name     string   `xml:"NAME"`
	Outcomes []string `xml:"OUTCOME"`
}

type xmlbifDefinition struct {
	For   string   `xml:"FOR"`
	Given []string `xml:"GIVEN"`
	Table string   `xml:"TABLE"`
}

// CompileXMLBIF reads an XMLBIF network. Variable indices follow
// declaration order and parents follow GIVEN order.
func (c *Compiler) CompileXMLBIF(source string) (*Network, error) {
	var doc xmlbifDocument
	dec := xml.NewDecoder(strings.NewReader(source))
	// XMLBIF files commonly declare US-ASCII or ISO-8859-1.
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse XMLBIF: %w", err)
	}

	declared := append(doc.Variables, doc.NetVariables...)
	definitions := append(append(append(doc.Definitions, doc.Probabilities...), doc.NetDefinitions...), doc.NetProbabilities...)

	vars := make([]Variable, 0, len(declared))
	position := make(map[string]int, len(declared))
	for _, v := range declared {
		name := strings.TrimSpace(v.Name)
		outcomes := make([]string, 0, len(v.Outcomes))
		for _, o := range v.Outcomes {
			outcomes = append(outcomes, strings.TrimSpace(o))
		}
		position[name] = len(vars)
		vars = append(vars, Variable{Name: name, Outcomes: outcomes})
	}

	defined := make(map[string]bool, len(definitions))
	for _, d := range definitions {
		name := strings.TrimSpace(d.For)
		i, ok := position[name]
		if !ok {
			return nil, fmt.Errorf("%w: definition for undeclared variable %q", ErrInvalidNetwork, name)
		}
		if defined[name] {
			return nil, fmt.Errorf("%w: variable %q defined twice", ErrInvalidNetwork, name)
		}
		defined[name] = true

		table, err := parseTable(d.Table)
		if err != nil {
			return nil, fmt.Errorf("invalid table for %q: %w", name, err)
		}
		parents := make([]string, 0, len(d.Given))
		for _, p := range d.Given {
			parents = append(parents, strings.TrimSpace(p))
		}
		vars[i].Parents = parents
		vars[i].Table = table
	}

	for _, v := range vars {
		if !defined[v.Name] {
			return nil, fmt.Errorf("%w: variable %q has no definition", ErrInvalidNetwork, v.Name)
		}
	}

	return NewNetwork(vars, c.opts...)
}
