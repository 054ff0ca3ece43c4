// Package infinity is a client for tabular engines that speak the
// columnar wire protocol.
//
// A search is described by output columns, an optional filter predicate and
// optional limit/offset. The client translates columns and filter into wire
// expressions, hands the assembled request to a Transport and decodes the
// columnar response into typed slices:
//
//	client, _ := infinity.NewClient(infinity.ClientConfig{Transport: transport})
//	defer client.Close()
//
//	res, err := client.Database("default").Table("items").Search().
//	    Output("*", "c2").
//	    Filter("c1 > 3 and c2 < 5.0").
//	    Limit(10).
//	    ToResult(ctx)
//	if err != nil {
//	    return err
//	}
//	c2, err := result.Get[float64](res, "c2")
//
// # Transports
//
// Any Transport works. The rpc package provides a gRPC transport and
// server, and engine/duckdb executes requests locally against DuckDB:
//
//	db, _ := sql.Open("duckdb", "data.db")
//	engine := duckdb.New(db, nil)
//	client, _ := infinity.NewClient(infinity.ClientConfig{Transport: engine})
//
//	conn, _ := rpc.Dial("localhost:23817", rpc.ClientOptions{Insecure: true})
//	client, _ := infinity.NewClient(infinity.ClientConfig{Transport: conn})
//
// # Expressions
//
// Filters support comparisons, arithmetic, AND/OR and parentheses over
// columns and numeric literals. Operator names sent to the engine come from
// translate.DefaultOperators() unless ClientConfig.Operators overrides them.
// String literals, NOT, unary minus, function calls, booleans and NULL are
// rejected with errors matching translate.ErrUnsupportedLiteral or
// translate.ErrUnsupportedExpression.
//
// # Errors
//
// All errors can be matched with errors.Is: ErrInvalidConfig,
// ErrInvalidQuery, ErrEngine, the translate sentinels and the result
// sentinels (result.ErrMalformedColumnBuffer, result.ErrUnsupportedColumnType,
// result.ErrMissingColumnField).
package infinity
