// Package sqlexpr parses SQL-style predicate and column expressions into a
// small generic syntax tree.
//
// Parsing is done by github.com/xwb1989/sqlparser; its expression nodes are
// folded into the node set below. Operators are identified by keys
// (eq, gt, and, add, ...) rather than by the function names of any particular
// engine, and literals keep their source text so consumers decide how to type
// them (see Literal.IsInt and Literal.IsNumber).
//
//	n, err := sqlexpr.Parse("c1 > 3 and c2 < 5.0")
//	if err != nil {
//	    return err // *SyntaxError
//	}
//	b := n.(*sqlexpr.Binary) // Op == OpAnd
package sqlexpr
