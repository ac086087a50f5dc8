package evidence

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
)

// Parse reads a conjunction of equality tests, e.g.
//
//	JohnCalls == "T" && MaryCalls == "T"
//
// into evidence pairs in source order. Blank input yields nil.
func Parse(raw string) ([]bayes.Evidence, error) {
	tree, err := parse(raw)
	if err != nil || tree == nil {
		return nil, err
	}
	if err := validateNode(tree.Node); err != nil {
		return nil, err
	}

	var out []bayes.Evidence
	if err := collect(tree.Node, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func parse(raw string) (*parser.Tree, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	tree, err := parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bayes.ErrMalformedQuery, err)
	}
	return tree, nil
}

func collect(node ast.Node, out *[]bayes.Evidence) error {
	bin, ok := node.(*ast.BinaryNode)
	if !ok {
		return fmt.Errorf("%w: %q is not an equality test", bayes.ErrMalformedQuery, node.String())
	}

	switch bin.Operator {
	case "&&", "and":
		if err := collect(bin.Left, out); err != nil {
			return err
		}
		return collect(bin.Right, out)
	case "==":
		e, err := equality(bin)
		if err != nil {
			return err
		}
		*out = append(*out, e)
		return nil
	default:
		return fmt.Errorf("%w: operator %q is not allowed", bayes.ErrMalformedQuery, bin.Operator)
	}
}

// equality accepts both Variable == "Outcome" and "Outcome" == Variable.
func equality(bin *ast.BinaryNode) (bayes.Evidence, error) {
	ident, identOK := bin.Left.(*ast.IdentifierNode)
	str, strOK := bin.Right.(*ast.StringNode)
	if !identOK || !strOK {
		ident, identOK = bin.Right.(*ast.IdentifierNode)
		str, strOK = bin.Left.(*ast.StringNode)
	}
	if !identOK || !strOK {
		return bayes.Evidence{}, fmt.Errorf("%w: %q must compare a variable with a quoted outcome", bayes.ErrMalformedQuery, bin.String())
	}
	if str.Value == "" {
		return bayes.Evidence{}, fmt.Errorf("%w: empty outcome for %q", bayes.ErrMalformedQuery, ident.Value)
	}
	return bayes.Evidence{Variable: ident.Value, Outcome: str.Value}, nil
}
