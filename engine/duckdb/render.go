package duckdb

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hugr-lab/infinity-go/wire"
)

// ErrInvalidRequest indicates a select request that cannot be rendered to SQL.
var ErrInvalidRequest = errors.New("invalid select request")

// infixOperators maps wire function names to SQL infix operators.
var infixOperators = map[string]string{
	"=":    "=",
	"==":   "=",
	"!=":   "<>",
	"<>":   "<>",
	">":    ">",
	">=":   ">=",
	"<":    "<",
	"<=":   "<=",
	"+":    "+",
	"-":    "-",
	"*":    "*",
	"/":    "/",
	"%":    "%",
	"and":  "AND",
	"or":   "OR",
	"like": "LIKE",
}

// Render converts req to a DuckDB SELECT statement. schema is the schema
// qualifying the table name.
func Render(req *wire.SelectRequest, schema string) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if req.Table == "" {
		return "", fmt.Errorf("%w: table name is required", ErrInvalidRequest)
	}
	if len(req.SelectList) == 0 {
		return "", fmt.Errorf("%w: select list is empty", ErrInvalidRequest)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if err := renderList(&sb, req.SelectList); err != nil {
		return "", err
	}

	sb.WriteString(" FROM ")
	if schema != "" {
		sb.WriteString(quoteIdentifier(schema))
		sb.WriteByte('.')
	}
	sb.WriteString(quoteIdentifier(req.Table))

	if req.Where != nil {
		where, err := renderExpr(req.Where)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if len(req.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		if err := renderList(&sb, req.GroupBy); err != nil {
			return "", err
		}
	}

	for _, bound := range []struct {
		keyword string
		expr    wire.Expr
	}{{"LIMIT", req.Limit}, {"OFFSET", req.Offset}} {
		if bound.expr == nil {
			continue
		}
		n, err := renderBound(bound.keyword, bound.expr)
		if err != nil {
			return "", err
		}
		sb.WriteString(" " + bound.keyword + " " + n)
	}

	return sb.String(), nil
}

func renderList(sb *strings.Builder, exprs []wire.Expr) error {
	for i, e := range exprs {
		s, err := renderExpr(e)
		if err != nil {
			return err
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(s)
	}
	return nil
}

func renderBound(keyword string, e wire.Expr) (string, error) {
	c, ok := e.(*wire.ConstantExpr)
	if !ok || c.Type != wire.LiteralInt64 {
		return "", fmt.Errorf("%w: %s must be an integer constant, got %s", ErrInvalidRequest, keyword, wire.Format(e))
	}
	if c.I64 < 0 {
		return "", fmt.Errorf("%w: negative %s %d", ErrInvalidRequest, keyword, c.I64)
	}
	return strconv.FormatInt(c.I64, 10), nil
}

func renderExpr(e wire.Expr) (string, error) {
	switch ex := e.(type) {
	case *wire.ColumnExpr:
		return renderColumn(ex)
	case *wire.ConstantExpr:
		return renderConstant(ex)
	case *wire.FunctionExpr:
		return renderFunction(ex)
	case nil:
		return "", fmt.Errorf("%w: empty expression", ErrInvalidRequest)
	default:
		return "", fmt.Errorf("%w: unsupported expression %T", ErrInvalidRequest, e)
	}
}

func renderColumn(c *wire.ColumnExpr) (string, error) {
	if c.Star {
		return "*", nil
	}
	if len(c.Names) == 0 {
		return "", fmt.Errorf("%w: column without name", ErrInvalidRequest)
	}
	parts := make([]string, len(c.Names))
	for i, n := range c.Names {
		parts[i] = quoteIdentifier(n)
	}
	return strings.Join(parts, "."), nil
}

func renderConstant(c *wire.ConstantExpr) (string, error) {
	switch c.Type {
	case wire.LiteralInt64:
		return strconv.FormatInt(c.I64, 10), nil
	case wire.LiteralDouble:
		switch {
		case math.IsNaN(c.F64):
			return "'nan'::DOUBLE", nil
		case math.IsInf(c.F64, 1):
			return "'inf'::DOUBLE", nil
		case math.IsInf(c.F64, -1):
			return "'-inf'::DOUBLE", nil
		}
		return strconv.FormatFloat(c.F64, 'g', -1, 64) + "::DOUBLE", nil
	case wire.LiteralString:
		return quoteLiteral(c.Str), nil
	default:
		return "", fmt.Errorf("%w: unsupported literal type %s", ErrInvalidRequest, c.Type)
	}
}

func renderFunction(f *wire.FunctionExpr) (string, error) {
	args := make([]string, len(f.Arguments))
	for i, a := range f.Arguments {
		s, err := renderExpr(a)
		if err != nil {
			return "", err
		}
		args[i] = s
	}

	if op, ok := infixOperators[strings.ToLower(f.Name)]; ok {
		if len(args) != 2 {
			return "", fmt.Errorf("%w: operator %s takes 2 arguments, got %d", ErrInvalidRequest, f.Name, len(args))
		}
		return "(" + args[0] + " " + op + " " + args[1] + ")", nil
	}

	if needsQuoting(f.Name) {
		return "", fmt.Errorf("%w: invalid function name %q", ErrInvalidRequest, f.Name)
	}
	return f.Name + "(" + strings.Join(args, ", ") + ")", nil
}

// quoteLiteral returns a SQL string literal with proper escaping.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteIdentifier returns a quoted identifier if needed.
// DuckDB uses double quotes for identifiers.
func quoteIdentifier(name string) string {
	if needsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// needsQuoting reports whether name is not a plain lowercase-safe identifier
// or collides with a reserved word.
func needsQuoting(name string) bool {
	if name == "" {
		return true
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return true
		}
	}

	switch strings.ToUpper(name) {
	case "SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "NULL", "TRUE", "FALSE",
		"TABLE", "JOIN", "ON", "AS", "IN", "IS", "LIKE", "BETWEEN", "CASE", "WHEN",
		"THEN", "ELSE", "END", "ORDER", "BY", "GROUP", "HAVING", "LIMIT", "OFFSET",
		"UNION", "ALL", "DISTINCT", "CAST", "DEFAULT", "ASC", "DESC":
		return true
	}
	return false
}
