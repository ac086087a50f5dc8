package evidence

import (
	"fmt"

	"github.com/expr-lang/expr/ast"

	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
)

// Validate accepts only identifiers, string literals, == and
// conjunctions (&& or and). Blank input is valid.
func Validate(raw string) error {
	tree, err := parse(raw)
	if err != nil || tree == nil {
		return err
	}
	return validateNode(tree.Node)
}

func validateNode(node ast.Node) error {
	v := &restrictedVisitor{}
	ast.Walk(&node, v)
	return v.err
}

type restrictedVisitor struct {
	err error
}

func (v *restrictedVisitor) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.IdentifierNode, *ast.StringNode:
	case *ast.BinaryNode:
		switch n.Operator {
		case "==", "&&", "and":
		default:
			v.err = fmt.Errorf("%w: operator %q is not allowed", bayes.ErrMalformedQuery, n.Operator)
		}
	case *ast.CallNode, *ast.BuiltinNode:
		v.err = fmt.Errorf("%w: function calls are not allowed (found %q)", bayes.ErrMalformedQuery, n.String())
	case *ast.MemberNode, *ast.ChainNode:
		v.err = fmt.Errorf("%w: member access is not allowed (found %q)", bayes.ErrMalformedQuery, n.String())
	default:
		v.err = fmt.Errorf("%w: %q is not allowed in evidence", bayes.ErrMalformedQuery, n.String())
	}
}
