package translate

import (
	"fmt"
	"strconv"

	"github.com/hugr-lab/infinity-go/sqlexpr"
	"github.com/hugr-lab/infinity-go/wire"
)

// Wildcard is the select-list marker for all columns.
const Wildcard = "*"

// Parser turns expression text into a syntax tree.
type Parser interface {
	Parse(text string) (sqlexpr.Node, error)
}

// Options configures a Translator.
type Options struct {
	// Operators maps parser operator keys to engine function names.
	// OPTIONAL: DefaultOperators() is used if nil.
	Operators OperatorTable

	// Parser parses filter and column text.
	// OPTIONAL: sqlexpr.Parser is used if nil.
	Parser Parser
}

// Translator converts syntax trees into wire expressions.
// It holds no mutable state and is safe for concurrent use.
type Translator struct {
	ops    OperatorTable
	parser Parser
}

// New creates a Translator. If opts is nil, default options are used.
func New(opts *Options) *Translator {
	if opts == nil {
		opts = &Options{}
	}
	t := &Translator{ops: opts.Operators, parser: opts.Parser}
	if t.ops == nil {
		t.ops = DefaultOperators()
	}
	if t.parser == nil {
		t.parser = sqlexpr.Parser{}
	}
	return t
}

// Translate converts one node, recursively. The first unsupported operator,
// literal or node kind aborts the translation.
func (t *Translator) Translate(n sqlexpr.Node) (wire.Expr, error) {
	switch node := n.(type) {
	case *sqlexpr.Binary:
		return t.translateBinary(node)
	case *sqlexpr.Column:
		return translateColumn(node), nil
	case *sqlexpr.Literal:
		return translateLiteral(node)
	case *sqlexpr.Paren:
		if node.Inner == nil {
			return nil, &NodeError{Node: node}
		}
		return t.Translate(node.Inner)
	case nil:
		return nil, fmt.Errorf("translate: %w: nil node", ErrUnsupportedExpression)
	default:
		return nil, &NodeError{Node: n}
	}
}

func (t *Translator) translateBinary(b *sqlexpr.Binary) (wire.Expr, error) {
	name, ok := t.ops.Lookup(b.Op)
	if !ok {
		return nil, &OperatorError{Op: b.Op, Node: b}
	}

	left, err := t.Translate(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := t.Translate(b.Right)
	if err != nil {
		return nil, err
	}

	return &wire.FunctionExpr{Name: name, Arguments: []wire.Expr{left, right}}, nil
}

func translateColumn(c *sqlexpr.Column) *wire.ColumnExpr {
	name := c.AliasOrName()
	if name == Wildcard {
		return wire.Star()
	}
	return wire.Column(name)
}

func translateLiteral(l *sqlexpr.Literal) (wire.Expr, error) {
	if l.IsInt() {
		v, err := strconv.ParseInt(l.Text, 10, 64)
		if err != nil {
			return nil, &LiteralError{Literal: l}
		}
		return wire.Int64(v), nil
	}
	if l.IsNumber() {
		v, err := strconv.ParseFloat(l.Text, 64)
		if err != nil {
			return nil, &LiteralError{Literal: l}
		}
		return wire.Double(v), nil
	}
	return nil, &LiteralError{Literal: l}
}

// TranslateFilter parses and translates predicate text.
func (t *Translator) TranslateFilter(text string) (wire.Expr, error) {
	n, err := t.parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("translate: invalid filter %q: %w", text, err)
	}
	return t.Translate(n)
}

// TranslateColumns translates a select list. A bare "*" entry becomes the
// wildcard column directly; every other entry is parsed and translated.
func (t *Translator) TranslateColumns(columns []string) ([]wire.Expr, error) {
	exprs := make([]wire.Expr, 0, len(columns))
	for i, col := range columns {
		if col == Wildcard {
			exprs = append(exprs, wire.Star())
			continue
		}

		n, err := t.parser.Parse(col)
		if err != nil {
			return nil, fmt.Errorf("translate: invalid column %d %q: %w", i, col, err)
		}
		e, err := t.Translate(n)
		if err != nil {
			return nil, fmt.Errorf("translate: column %d: %w", i, err)
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

// TranslateBound converts an optional limit or offset. A nil value yields a
// nil expression, which encodes as the uninitialized node.
func TranslateBound(v *int64) wire.Expr {
	if v == nil {
		return nil
	}
	return wire.Int64(*v)
}
