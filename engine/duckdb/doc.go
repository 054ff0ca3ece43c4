// Package duckdb executes wire select requests against DuckDB.
//
// The engine renders a request to SQL, runs it through database/sql and
// encodes every result column into the columnar wire layout. It satisfies
// both rpc.Engine, for serving over gRPC, and infinity.Transport, for
// in-process use:
//
//	db, _ := sql.Open("duckdb", "")
//	engine := duckdb.New(db, &duckdb.Options{Compress: true})
//	client, _ := infinity.NewClient(infinity.ClientConfig{Transport: engine})
//
// Supported result types are BOOLEAN, TINYINT, SMALLINT, INTEGER, BIGINT,
// FLOAT, DOUBLE and VARCHAR. NULL values are encoded as zero values.
package duckdb
