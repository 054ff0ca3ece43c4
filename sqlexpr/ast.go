package sqlexpr

import (
	"strconv"
	"strings"
)

// BinaryOp identifies a binary operator by its key.
type BinaryOp string

const (
	OpEq   BinaryOp = "eq"
	OpNeq  BinaryOp = "neq"
	OpGt   BinaryOp = "gt"
	OpGte  BinaryOp = "gte"
	OpLt   BinaryOp = "lt"
	OpLte  BinaryOp = "lte"
	OpAnd  BinaryOp = "and"
	OpOr   BinaryOp = "or"
	OpAdd  BinaryOp = "add"
	OpSub  BinaryOp = "sub"
	OpMul  BinaryOp = "mul"
	OpDiv  BinaryOp = "div"
	OpMod  BinaryOp = "mod"
	OpLike BinaryOp = "like"
)

// UnaryOp identifies a prefix operator.
type UnaryOp string

const (
	OpNot UnaryOp = "not"
	OpNeg UnaryOp = "neg"
)

// Node is the interface implemented by all parsed expression nodes.
type Node interface {
	// String renders the node back to expression text.
	String() string

	node()
}

// Binary is a binary operator application. Operand order is preserved.
type Binary struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

// Unary is a prefix operator application.
type Unary struct {
	Op      UnaryOp
	Operand Node
}

// Column references a column, optionally qualified by a table name.
type Column struct {
	Table string
	Name  string
}

// AliasOrName returns the column name used to address the column.
func (c *Column) AliasOrName() string { return c.Name }

// Literal is a number or string literal kept in its textual form.
type Literal struct {
	Text     string
	IsString bool
}

// IsInt reports whether the literal is a decimal integer that fits in int64.
func (l *Literal) IsInt() bool {
	if l.IsString {
		return false
	}
	if integer, ok := scanNumber(l.Text); !ok || !integer {
		return false
	}
	_, err := strconv.ParseInt(l.Text, 10, 64)
	return err == nil
}

// IsNumber reports whether the literal uses SQL number syntax (digits with an
// optional fraction and exponent) and has a finite float64 value.
func (l *Literal) IsNumber() bool {
	if l.IsString {
		return false
	}
	if _, ok := scanNumber(l.Text); !ok {
		return false
	}
	_, err := strconv.ParseFloat(l.Text, 64)
	return err == nil
}

// scanNumber matches -?digits[.digits][(e|E)[+-]digits] with at least one
// mantissa digit. Spellings such as inf, NaN or hex floats do not match.
func scanNumber(s string) (integer, ok bool) {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	integer = true
	if i < len(s) && s[i] == '.' {
		integer = false
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false, false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		integer = false
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false, false
		}
	}
	return integer, i == len(s)
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// Paren is a parenthesized sub-expression.
type Paren struct {
	Inner Node
}

// Func is a function call.
type Func struct {
	Name string
	Args []Node
}

// Boolean is TRUE or FALSE.
type Boolean struct {
	Value bool
}

// Null is the NULL literal.
type Null struct{}

// Star is a bare * in expression position, e.g. count(*).
type Star struct{}

// Other holds a parsed construct with no dedicated node kind (IS NULL,
// BETWEEN, CASE, subqueries, tuples, bind variables). Text is its SQL form.
type Other struct {
	Text string
}

func (*Binary) node()  {}
func (*Unary) node()   {}
func (*Column) node()  {}
func (*Literal) node() {}
func (*Paren) node()   {}
func (*Func) node()    {}
func (*Boolean) node() {}
func (*Null) node()    {}
func (*Star) node()    {}
func (*Other) node()   {}

var binaryTokens = map[BinaryOp]string{
	OpEq: "=", OpNeq: "!=", OpGt: ">", OpGte: ">=", OpLt: "<", OpLte: "<=",
	OpAnd: "AND", OpOr: "OR", OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpMod: "%", OpLike: "LIKE",
}

// Symbol returns the SQL token for the operator.
func (op BinaryOp) Symbol() string {
	if s, ok := binaryTokens[op]; ok {
		return s
	}
	return string(op)
}

func (b *Binary) String() string {
	return b.Left.String() + " " + b.Op.Symbol() + " " + b.Right.String()
}

func (u *Unary) String() string {
	if u.Op == OpNot {
		return "NOT " + u.Operand.String()
	}
	return "-" + u.Operand.String()
}

func (c *Column) String() string {
	if c.Table != "" {
		return c.Table + "." + c.Name
	}
	return c.Name
}

func (l *Literal) String() string {
	if l.IsString {
		return "'" + strings.ReplaceAll(l.Text, "'", "''") + "'"
	}
	return l.Text
}

func (p *Paren) String() string {
	if p.Inner == nil {
		return "()"
	}
	return "(" + p.Inner.String() + ")"
}

func (f *Func) String() string {
	args := make([]string, 0, len(f.Args))
	for _, a := range f.Args {
		args = append(args, a.String())
	}
	return f.Name + "(" + strings.Join(args, ", ") + ")"
}

func (b *Boolean) String() string {
	if b.Value {
		return "TRUE"
	}
	return "FALSE"
}

func (*Null) String() string { return "NULL" }

func (*Star) String() string { return "*" }

func (o *Other) String() string { return o.Text }
