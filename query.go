package infinity

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/infinity-go/result"
	"github.com/hugr-lab/infinity-go/wire"
)

// Query describes one search. Built per call and consumed once.
type Query struct {
	// Columns lists column names, expressions or "*".
	// REQUIRED: MUST be non-empty.
	Columns []string

	// Filter is the predicate text.
	// OPTIONAL: No where clause if nil.
	Filter *string

	// Limit caps the number of rows.
	// OPTIONAL: No limit if nil. MUST NOT be negative.
	Limit *int64

	// Offset skips leading rows.
	// OPTIONAL: No offset if nil. MUST NOT be negative.
	Offset *int64
}

func (q Query) validate() error {
	if len(q.Columns) == 0 {
		return fmt.Errorf("infinity: %w: no output columns", ErrInvalidQuery)
	}
	if q.Limit != nil && *q.Limit < 0 {
		return fmt.Errorf("infinity: %w: negative limit %d", ErrInvalidQuery, *q.Limit)
	}
	if q.Offset != nil && *q.Offset < 0 {
		return fmt.Errorf("infinity: %w: negative offset %d", ErrInvalidQuery, *q.Offset)
	}
	return nil
}

// QueryBuilder assembles a Query using a fluent API.
// Not thread-safe. Validation happens in the terminal calls.
type QueryBuilder struct {
	table *Table
	query Query
}

// Output appends output columns.
func (b *QueryBuilder) Output(columns ...string) *QueryBuilder {
	b.query.Columns = append(b.query.Columns, columns...)
	return b
}

// Filter sets the predicate. A later call replaces the earlier one.
func (b *QueryBuilder) Filter(text string) *QueryBuilder {
	b.query.Filter = &text
	return b
}

// Limit sets the row limit.
func (b *QueryBuilder) Limit(n int64) *QueryBuilder {
	b.query.Limit = &n
	return b
}

// Offset sets the number of rows to skip.
func (b *QueryBuilder) Offset(n int64) *QueryBuilder {
	b.query.Offset = &n
	return b
}

// Query returns a copy of the assembled query.
func (b *QueryBuilder) Query() Query {
	q := b.query
	q.Columns = append([]string(nil), b.query.Columns...)
	return q
}

// Request translates the query without sending it.
func (b *QueryBuilder) Request() (*wire.SelectRequest, error) {
	return b.table.BuildRequest(b.Query())
}

// ToResult executes the query and returns the decoded columns.
func (b *QueryBuilder) ToResult(ctx context.Context) (*result.Result, error) {
	return b.table.Execute(ctx, b.Query())
}

// ToRecord executes the query and returns an Arrow record.
// The caller must Release the record.
func (b *QueryBuilder) ToRecord(ctx context.Context) (arrow.RecordBatch, error) {
	return b.table.ExecuteRecord(ctx, b.Query())
}
