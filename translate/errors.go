package translate

import (
	"errors"
	"fmt"

	"github.com/hugr-lab/infinity-go/sqlexpr"
)

// Standard errors returned by the translator. Match with errors.Is.
var (
	// ErrUnsupportedOperator indicates a binary operator with no entry in the
	// operator table.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrUnsupportedLiteral indicates a literal that is neither an integer nor a
	// number.
	ErrUnsupportedLiteral = errors.New("unknown literal type")

	// ErrUnsupportedExpression indicates a node kind with no wire encoding.
	ErrUnsupportedExpression = errors.New("unknown condition")
)

// OperatorError reports a binary operator missing from the operator table.
type OperatorError struct {
	Op   sqlexpr.BinaryOp
	Node sqlexpr.Node
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("translate: %v: %q in %s", ErrUnsupportedOperator, e.Op, e.Node)
}

func (e *OperatorError) Unwrap() error { return ErrUnsupportedOperator }

// LiteralError reports a literal that cannot be encoded as a wire constant.
type LiteralError struct {
	Literal *sqlexpr.Literal
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("translate: %v: %s", ErrUnsupportedLiteral, e.Literal)
}

func (e *LiteralError) Unwrap() error { return ErrUnsupportedLiteral }

// NodeError reports a node kind the translator does not encode.
type NodeError struct {
	Node sqlexpr.Node
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("translate: %v: %s (%T)", ErrUnsupportedExpression, e.Node, e.Node)
}

func (e *NodeError) Unwrap() error { return ErrUnsupportedExpression }
