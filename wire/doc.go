// Package wire defines the tagged data model exchanged with a remote Infinity
// engine: expression trees sent with a select call, and the columnar response
// envelope that comes back.
//
// Expressions implement the sealed Expr interface. Exactly one variant is set
// per node:
//   - ColumnExpr: a column reference or the * wildcard
//   - ConstantExpr: an Int64, Double or String literal
//   - FunctionExpr: a named function; binary operators have two arguments
//
// On the wire a node is a MessagePack map with exactly one of the keys
// column_expr, constant_expr or function_expr. An empty map is the
// uninitialized node and means "absent" (for example, no LIMIT).
//
// The response carries ColumnDefs (name, id, type tag) and ColumnFields (one raw
// buffer per column, indexed by id). Fixed-width column buffers are little
// endian; see ColumnType.Width for element sizes.
package wire
