package bayes

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"
)

type Format string

const (
	FormatXMLBIF Format = "xmlbif"
	FormatDOT    Format = "dot"
	FormatYAML   Format = "yaml"
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "xmlbif", "xml", "bif":
		return FormatXMLBIF, nil
	case "dot", "gv", "graphviz":
		return FormatDOT, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported network format %q", raw)
	}
}

// DetectFormat picks a format from a file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot detect network format of %q: no extension", path)
	}
	return ParseFormat(ext)
}

// Compiler turns a textual network definition into a validated Network.
type Compiler struct {
	opts []NetworkOption
}

func NewCompiler(opts ...NetworkOption) *Compiler {
	return &Compiler{opts: opts}
}

func (c *Compiler) Compile(format Format, source string) (*Network, error) {
	switch format {
	case FormatXMLBIF:
		return c.CompileXMLBIF(source)
	case FormatDOT:
		return c.CompileDOT(source)
	case FormatYAML:
		return c.CompileYAML(source)
	default:
		return nil, fmt.Errorf("unsupported network format %q", format)
	}
}

// CompileDOT reads a digraph where every node carries its outcomes in
// label and its probability table in comment:
//
//	digraph Chain {
//	  A [label="T,F", comment="0.3 0.7"]
//	  B [label="T,F", comment="0.8 0.2 0.1 0.9"]
//	  A -> B
//	}
//
// The parents of a node are the sources of its in-edges in declaration
// order.
func (c *Compiler) CompileDOT(dot string) (*Network, error) {
	ast, err := gographviz.ParseString(dot)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DOT: %w", err)
	}

	g := gographviz.NewGraph()
	if err := gographviz.Analyse(ast, g); err != nil {
		return nil, fmt.Errorf("failed to analyze DOT: %w", err)
	}
	if !g.Directed {
		return nil, fmt.Errorf("%w: DOT graph must be a digraph", ErrInvalidNetwork)
	}

	vars := make([]Variable, 0, len(g.Nodes.Nodes))
	position := make(map[string]int, len(g.Nodes.Nodes))

	for _, n := range g.Nodes.Nodes {
		name := unquote(n.Name)

		outcomes := splitList(getAttr(n.Attrs, string(gographviz.Label)))
		table, err := parseTable(getAttr(n.Attrs, string(gographviz.Comment)))
		if err != nil {
			return nil, fmt.Errorf("invalid table in node %q: %w", name, err)
		}

		position[name] = len(vars)
		vars = append(vars, Variable{
			Name:     name,
			Outcomes: outcomes,
			Table:    table,
		})
	}

	for _, e := range g.Edges.Edges {
		src, dst := unquote(e.Src), unquote(e.Dst)
		if _, ok := position[src]; !ok {
			return nil, fmt.Errorf("edge references unknown source node %q", src)
		}
		i, ok := position[dst]
		if !ok {
			return nil, fmt.Errorf("edge references unknown destination node %q", dst)
		}
		vars[i].Parents = append(vars[i].Parents, src)
	}

	return NewNetwork(vars, c.opts...)
}

// getAttr reads a Graphviz attribute, stripping the surrounding quotes.
func getAttr(attrs gographviz.Attrs, key string) string {
	val, ok := attrs[gographviz.Attr(key)]
	if !ok {
		return ""
	}
	return unquote(val)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if unq, err := strconv.Unquote(s); err == nil {
			return unq
		}
		return s[1 : len(s)-1]
	}
	return s
}

func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseTable reads whitespace separated probabilities.
func parseTable(raw string) ([]float64, error) {
	fields := strings.Fields(raw)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		p, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid probability %q", f)
		}
		out = append(out, p)
	}
	return out, nil
}
