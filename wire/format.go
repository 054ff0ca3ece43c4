package wire

import (
	"strconv"
	"strings"
)

// Format renders an expression in a compact prefix form, e.g.
// and(>(c1, 3), <(c2, 5.0)). A nil expression renders as "<empty>".
func Format(e Expr) string {
	var sb strings.Builder
	format(&sb, e)
	return sb.String()
}

func format(sb *strings.Builder, e Expr) {
	switch ex := e.(type) {
	case nil:
		sb.WriteString("<empty>")
	case *ColumnExpr:
		if ex.Star {
			sb.WriteString("*")
			return
		}
		sb.WriteString(strings.Join(ex.Names, "."))
	case *ConstantExpr:
		sb.WriteString(FormatConstant(ex))
	case *FunctionExpr:
		sb.WriteString(ex.Name)
		sb.WriteByte('(')
		for i, arg := range ex.Arguments {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, arg)
		}
		sb.WriteByte(')')
	}
}

// FormatConstant renders a constant literal. Doubles always carry a decimal
// point or exponent so they read back as non-integers.
func FormatConstant(c *ConstantExpr) string {
	switch c.Type {
	case LiteralInt64:
		return strconv.FormatInt(c.I64, 10)
	case LiteralDouble:
		s := strconv.FormatFloat(c.F64, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}
		return s
	case LiteralString:
		return "'" + strings.ReplaceAll(c.Str, "'", "''") + "'"
	default:
		return "<invalid>"
	}
}
