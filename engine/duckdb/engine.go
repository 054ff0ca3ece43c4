package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hugr-lab/infinity-go/internal/recovery"
	"github.com/hugr-lab/infinity-go/result"
	"github.com/hugr-lab/infinity-go/wire"
)

// DefaultDatabase is the database name that maps to DuckDB's main schema.
const DefaultDatabase = "default"

// Options configures an Engine.
type Options struct {
	// Compress stores result column buffers zstd-compressed.
	Compress bool

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger

	// SchemaFor maps a request database name to a DuckDB schema.
	// OPTIONAL: Maps "default" and "" to "main", other names to themselves.
	SchemaFor func(db string) string
}

// Engine executes select requests against a DuckDB database.
// Safe for concurrent use.
type Engine struct {
	db        *sql.DB
	compress  bool
	logger    *slog.Logger
	schemaFor func(string) string
}

// New creates an Engine over db. The caller owns db.
// If opts is nil, default options are used.
//
// Example:
//
//	db, err := sql.Open("duckdb", "data.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine := duckdb.New(db, nil)
func New(db *sql.DB, opts *Options) *Engine {
	if opts == nil {
		opts = &Options{}
	}
	e := &Engine{
		db:        db,
		compress:  opts.Compress,
		logger:    opts.Logger,
		schemaFor: opts.SchemaFor,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.schemaFor == nil {
		e.schemaFor = defaultSchema
	}
	return e
}

func defaultSchema(db string) string {
	if db == "" || db == DefaultDatabase {
		return "main"
	}
	return db
}

// Select renders req to SQL, runs it and encodes each result column.
// Request and query failures are reported through the response error code;
// the returned error is non-nil only when ctx is done.
func (e *Engine) Select(ctx context.Context, req *wire.SelectRequest) (*wire.Response, error) {
	query, err := Render(req, e.schemaFor(dbName(req)))
	if err != nil {
		e.logger.Debug("Rejected select request", "error", err)
		return wire.Failure(wire.ErrorCodeInvalidRequest, "%v", err), nil
	}

	e.logger.Debug("Executing select", "sql", query)

	resp, err := e.run(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger.Warn("Select failed",
			"db", req.DB,
			"table", req.Table,
			"error", err,
		)
		return wire.Failure(errorCode(err), "%v", err), nil
	}
	return resp, nil
}

func dbName(req *wire.SelectRequest) string {
	if req == nil {
		return ""
	}
	return req.DB
}

// errorCode classifies a query failure.
func errorCode(err error) int {
	msg := err.Error()
	if strings.Contains(msg, "Catalog Error") && strings.Contains(msg, "does not exist") {
		return wire.ErrorCodeTableNotFound
	}
	return wire.ErrorCodeExecution
}

// ErrUnsupportedType indicates a DuckDB result column with no wire column type.
var ErrUnsupportedType = errors.New("unsupported result type")

// TypeError reports a result column whose DuckDB type has no wire encoding.
type TypeError struct {
	Column       string
	DatabaseType string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("duckdb: %v: column %q has type %s", ErrUnsupportedType, e.Column, e.DatabaseType)
}

func (e *TypeError) Unwrap() error { return ErrUnsupportedType }

// ColumnType maps a DuckDB type name to a wire column type.
func ColumnType(databaseType string) (wire.ColumnType, bool) {
	switch strings.ToUpper(databaseType) {
	case "BOOLEAN":
		return wire.ColumnBool, true
	case "TINYINT":
		return wire.ColumnInt8, true
	case "SMALLINT":
		return wire.ColumnInt16, true
	case "INTEGER":
		return wire.ColumnInt32, true
	case "BIGINT":
		return wire.ColumnInt64, true
	case "FLOAT":
		return wire.ColumnFloat32, true
	case "DOUBLE":
		return wire.ColumnFloat64, true
	case "VARCHAR":
		return wire.ColumnVarchar, true
	}
	return wire.ColumnInvalid, false
}

func (e *Engine) run(ctx context.Context, query string) (*wire.Response, error) {
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	builders := make([]*result.VectorBuilder, len(types))
	dest := make([]any, len(types))
	for i, ct := range types {
		typ, ok := ColumnType(ct.DatabaseTypeName())
		if !ok {
			return nil, &TypeError{Column: names[i], DatabaseType: ct.DatabaseTypeName()}
		}
		if builders[i], err = result.NewVectorBuilder(typ); err != nil {
			return nil, err
		}
		dest[i] = scanTarget(typ)
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, d := range dest {
			if err := builders[i].Append(scannedValue(d)); err != nil {
				return nil, fmt.Errorf("column %q: %w", names[i], err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	enc, err := result.NewEncoder(&result.EncoderOptions{Compress: e.compress})
	if err != nil {
		return nil, err
	}
	defer recovery.Run(e.logger, "close encoder", func() {
		if err := enc.Close(); err != nil {
			e.logger.Warn("Failed to close encoder", "error", err)
		}
	})

	for i, b := range builders {
		enc.AddVector(names[i], b)
	}
	return enc.Response(), nil
}

// scanTarget returns a nullable scan destination for typ.
func scanTarget(typ wire.ColumnType) any {
	switch typ {
	case wire.ColumnBool:
		return new(sql.NullBool)
	case wire.ColumnFloat32, wire.ColumnFloat64:
		return new(sql.NullFloat64)
	case wire.ColumnVarchar:
		return new(sql.NullString)
	default:
		return new(sql.NullInt64)
	}
}

// scannedValue unwraps a scan destination. NULL becomes nil.
func scannedValue(d any) any {
	switch v := d.(type) {
	case *sql.NullBool:
		if v.Valid {
			return v.Bool
		}
	case *sql.NullInt64:
		if v.Valid {
			return v.Int64
		}
	case *sql.NullFloat64:
		if v.Valid {
			return v.Float64
		}
	case *sql.NullString:
		if v.Valid {
			return v.String
		}
	}
	return nil
}
