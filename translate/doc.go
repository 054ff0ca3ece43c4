// Package translate converts sqlexpr syntax trees into wire expressions.
//
// Binary operators become FunctionExpr nodes named through an injectable
// OperatorTable, columns become ColumnExpr, integer and number literals become
// Int64 and Double constants, and parenthesized groups translate to their
// interior. Every other node kind fails with ErrUnsupportedExpression; the
// first failure aborts the whole translation.
//
//	tr := translate.New(nil) // default operators and parser
//	where, err := tr.TranslateFilter("c1 > 3 and c2 < 5.0")
//	// and(>(c1, 3), <(c2, 5.0))
package translate
