package sqlexpr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// ErrSyntax is the sentinel wrapped by every SyntaxError.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports expression text that does not parse.
type SyntaxError struct {
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("sqlexpr: syntax error in %q: %s", e.Text, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// wherePrefix embeds the expression as a WHERE clause, the only statement
// position where sqlparser accepts an arbitrary expression with conditions.
const wherePrefix = "select 1 from t where "

// Parse parses predicate or column expression text into a Node.
//
// The text uses MySQL expression syntax: OR, AND, NOT, comparisons
// (=, !=, <>, <, <=, >, >=, LIKE), arithmetic, function calls, 'string'
// literals and `quoted` identifiers. Anything that would extend the enclosing
// statement (GROUP BY, ORDER BY, LIMIT, UNION, a second statement) is
// rejected.
func Parse(text string) (Node, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &SyntaxError{Text: text, Msg: "empty expression"}
	}

	stmt, err := sqlparser.Parse(wherePrefix + text)
	if err != nil {
		return nil, &SyntaxError{Text: text, Msg: err.Error()}
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, &SyntaxError{Text: text, Msg: fmt.Sprintf("unexpected %T statement", stmt)}
	}
	if sel.Where == nil || sel.Where.Type != sqlparser.WhereStr {
		return nil, &SyntaxError{Text: text, Msg: "no expression"}
	}
	if len(sel.GroupBy) > 0 || sel.Having != nil || len(sel.OrderBy) > 0 || sel.Limit != nil || sel.Lock != "" {
		return nil, &SyntaxError{Text: text, Msg: "trailing clause after expression"}
	}

	return convert(sel.Where.Expr), nil
}

// Parser adapts Parse to an interface value.
type Parser struct{}

// Parse implements translate.Parser.
func (Parser) Parse(text string) (Node, error) { return Parse(text) }

var comparisonOps = map[string]BinaryOp{
	sqlparser.EqualStr:        OpEq,
	sqlparser.NotEqualStr:     OpNeq,
	sqlparser.GreaterThanStr:  OpGt,
	sqlparser.GreaterEqualStr: OpGte,
	sqlparser.LessThanStr:     OpLt,
	sqlparser.LessEqualStr:    OpLte,
	sqlparser.LikeStr:         OpLike,
}

var arithmeticOps = map[string]BinaryOp{
	sqlparser.PlusStr:  OpAdd,
	sqlparser.MinusStr: OpSub,
	sqlparser.MultStr:  OpMul,
	sqlparser.DivStr:   OpDiv,
	sqlparser.ModStr:   OpMod,
}

// binaryOp maps a sqlparser operator. Operators without a key keep their SQL
// spelling ("in", "not like", "div", ...) so operator tables can still name them.
func binaryOp(table map[string]BinaryOp, op string) BinaryOp {
	if key, ok := table[op]; ok {
		return key
	}
	return BinaryOp(strings.ToLower(op))
}

func convert(e sqlparser.Expr) Node {
	switch x := e.(type) {
	case *sqlparser.AndExpr:
		return &Binary{Op: OpAnd, Left: convert(x.Left), Right: convert(x.Right)}
	case *sqlparser.OrExpr:
		return &Binary{Op: OpOr, Left: convert(x.Left), Right: convert(x.Right)}
	case *sqlparser.NotExpr:
		return &Unary{Op: OpNot, Operand: convert(x.Expr)}
	case *sqlparser.ParenExpr:
		return &Paren{Inner: convert(x.Expr)}
	case *sqlparser.ComparisonExpr:
		if x.Escape != nil {
			break
		}
		return &Binary{Op: binaryOp(comparisonOps, x.Operator), Left: convert(x.Left), Right: convert(x.Right)}
	case *sqlparser.BinaryExpr:
		return &Binary{Op: binaryOp(arithmeticOps, x.Operator), Left: convert(x.Left), Right: convert(x.Right)}
	case *sqlparser.UnaryExpr:
		return convertUnary(x)
	case *sqlparser.ColName:
		return &Column{Table: x.Qualifier.Name.String(), Name: x.Name.String()}
	case *sqlparser.SQLVal:
		return convertValue(x)
	case sqlparser.BoolVal:
		return &Boolean{Value: bool(x)}
	case *sqlparser.NullVal:
		return &Null{}
	case *sqlparser.FuncExpr:
		return convertFunc(x)
	}
	return &Other{Text: sqlparser.String(e)}
}

func convertUnary(x *sqlparser.UnaryExpr) Node {
	switch x.Operator {
	case sqlparser.UMinusStr:
		// Fold -<number> into a negative literal.
		if v, ok := x.Expr.(*sqlparser.SQLVal); ok && (v.Type == sqlparser.IntVal || v.Type == sqlparser.FloatVal) {
			if text := string(v.Val); !strings.HasPrefix(text, "-") {
				return &Literal{Text: "-" + text}
			}
		}
		return &Unary{Op: OpNeg, Operand: convert(x.Expr)}
	case sqlparser.UPlusStr:
		return convert(x.Expr)
	case sqlparser.BangStr:
		return &Unary{Op: OpNot, Operand: convert(x.Expr)}
	}
	return &Other{Text: sqlparser.String(x)}
}

func convertValue(v *sqlparser.SQLVal) Node {
	switch v.Type {
	case sqlparser.StrVal:
		return &Literal{Text: string(v.Val), IsString: true}
	case sqlparser.IntVal, sqlparser.FloatVal, sqlparser.HexNum:
		return &Literal{Text: string(v.Val)}
	case sqlparser.HexVal, sqlparser.BitVal:
		return &Literal{Text: sqlparser.String(v)}
	}
	return &Other{Text: sqlparser.String(v)}
}

func convertFunc(f *sqlparser.FuncExpr) Node {
	name := f.Name.String()
	if !f.Qualifier.IsEmpty() {
		name = f.Qualifier.String() + "." + name
	}
	if f.Distinct {
		return &Other{Text: sqlparser.String(f)}
	}

	args := make([]Node, 0, len(f.Exprs))
	for _, se := range f.Exprs {
		switch a := se.(type) {
		case *sqlparser.StarExpr:
			args = append(args, &Star{})
		case *sqlparser.AliasedExpr:
			args = append(args, convert(a.Expr))
		default:
			args = append(args, &Other{Text: sqlparser.String(se)})
		}
	}
	return &Func{Name: name, Args: args}
}
