package wire

// ExprKind identifies which variant of a wire expression is populated.
type ExprKind string

const (
	KindColumn   ExprKind = "column_expr"
	KindConstant ExprKind = "constant_expr"
	KindFunction ExprKind = "function_expr"
)

// LiteralType identifies the value representation of a constant.
type LiteralType int8

const (
	LiteralInvalid LiteralType = iota
	LiteralInt64
	LiteralDouble
	LiteralString
)

// String returns the literal type name.
func (t LiteralType) String() string {
	switch t {
	case LiteralInt64:
		return "Int64"
	case LiteralDouble:
		return "Double"
	case LiteralString:
		return "String"
	default:
		return "Invalid"
	}
}

// Expr is the interface implemented by all wire expression nodes.
// Exactly one variant is set per node; use a type switch to dispatch.
type Expr interface {
	// Kind returns the populated variant.
	Kind() ExprKind

	// wireMarker is a marker method to prevent external implementation.
	wireMarker()
}

// ColumnExpr references a column, or all columns when Star is set.
type ColumnExpr struct {
	Names []string
	Star  bool
}

// ConstantExpr is a literal. Type selects which value field is meaningful.
type ConstantExpr struct {
	Type LiteralType
	I64  int64
	F64  float64
	Str  string
}

// FunctionExpr is a function or operator application.
// Binary operators carry exactly two arguments, left first.
type FunctionExpr struct {
	Name      string
	Arguments []Expr
}

func (*ColumnExpr) Kind() ExprKind   { return KindColumn }
func (*ConstantExpr) Kind() ExprKind { return KindConstant }
func (*FunctionExpr) Kind() ExprKind { return KindFunction }

func (*ColumnExpr) wireMarker()   {}
func (*ConstantExpr) wireMarker() {}
func (*FunctionExpr) wireMarker() {}

// Star returns the wildcard column reference.
func Star() *ColumnExpr { return &ColumnExpr{Star: true} }

// Column returns a reference to the named column.
func Column(name string) *ColumnExpr { return &ColumnExpr{Names: []string{name}} }

// Int64 returns an integer constant.
func Int64(v int64) *ConstantExpr { return &ConstantExpr{Type: LiteralInt64, I64: v} }

// Double returns a floating point constant.
func Double(v float64) *ConstantExpr { return &ConstantExpr{Type: LiteralDouble, F64: v} }

// String returns a string constant.
func String(v string) *ConstantExpr { return &ConstantExpr{Type: LiteralString, Str: v} }

// Func returns a function application.
func Func(name string, args ...Expr) *FunctionExpr {
	return &FunctionExpr{Name: name, Arguments: args}
}

// SelectRequest is the outbound select call handed to a transport.
type SelectRequest struct {
	DB         string
	Table      string
	SelectList []Expr
	// Where is nil when the query has no filter.
	Where Expr
	// GroupBy is always nil; grouping is not issued by this client.
	GroupBy []Expr
	// Limit and Offset are nil when absent.
	Limit  Expr
	Offset Expr
}
