package translate

import (
	"maps"

	"github.com/hugr-lab/infinity-go/sqlexpr"
)

// OperatorTable maps parser operator keys to engine function names.
type OperatorTable map[sqlexpr.BinaryOp]string

// DefaultOperators returns the operator names understood by the Infinity
// engine. The returned table is a fresh copy and may be modified.
// LIKE is not mapped.
func DefaultOperators() OperatorTable {
	return OperatorTable{
		sqlexpr.OpEq:  "=",
		sqlexpr.OpNeq: "!=",
		sqlexpr.OpGt:  ">",
		sqlexpr.OpGte: ">=",
		sqlexpr.OpLt:  "<",
		sqlexpr.OpLte: "<=",
		sqlexpr.OpAnd: "and",
		sqlexpr.OpOr:  "or",
		sqlexpr.OpAdd: "+",
		sqlexpr.OpSub: "-",
		sqlexpr.OpMul: "*",
		sqlexpr.OpDiv: "/",
		sqlexpr.OpMod: "%",
	}
}

// Lookup returns the function name for op.
func (t OperatorTable) Lookup(op sqlexpr.BinaryOp) (string, bool) {
	name, ok := t[op]
	return name, ok
}

// With returns a copy of the table with extra entries added or replaced.
func (t OperatorTable) With(extra OperatorTable) OperatorTable {
	out := make(OperatorTable, len(t)+len(extra))
	maps.Copy(out, t)
	maps.Copy(out, extra)
	return out
}
