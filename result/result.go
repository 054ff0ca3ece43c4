package result

import (
	"fmt"

	"github.com/hugr-lab/infinity-go/wire"
)

// Column is one decoded result column.
//
// Values holds a typed slice whose element type follows the column type:
// []bool, []int8, []int16, []int32, []int64, []float32, []float64, []string,
// []orb.Point or []orb.Bound.
type Column struct {
	Name   string
	Type   wire.ColumnType
	Values any
	Rows   int
}

// Result maps column names to decoded values, keeping declaration order.
type Result struct {
	columns []Column
	index   map[string]int
}

func newResult(capacity int) *Result {
	return &Result{
		columns: make([]Column, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

// set adds a column. A repeated name replaces the earlier column in place.
func (r *Result) set(c Column) {
	if i, ok := r.index[c.Name]; ok {
		r.columns[i] = c
		return
	}
	r.index[c.Name] = len(r.columns)
	r.columns = append(r.columns, c)
}

// Names returns column names in declaration order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.columns))
	for _, c := range r.columns {
		names = append(names, c.Name)
	}
	return names
}

// Columns returns the decoded columns in declaration order.
func (r *Result) Columns() []Column {
	return r.columns
}

// Column looks up a column by name.
func (r *Result) Column(name string) (Column, bool) {
	i, ok := r.index[name]
	if !ok {
		return Column{}, false
	}
	return r.columns[i], true
}

// Values returns the typed slice of a column, or nil if absent.
func (r *Result) Values(name string) any {
	c, ok := r.Column(name)
	if !ok {
		return nil
	}
	return c.Values
}

// NumRows returns the row count of the first column, or 0 for an empty result.
func (r *Result) NumRows() int {
	if len(r.columns) == 0 {
		return 0
	}
	return r.columns[0].Rows
}

// Map returns the result as a plain name to slice mapping.
func (r *Result) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for _, c := range r.columns {
		m[c.Name] = c.Values
	}
	return m
}

// Get returns the values of a column as []T.
// Fails if the column is absent or holds a different element type.
func Get[T any](r *Result, name string) ([]T, error) {
	c, ok := r.Column(name)
	if !ok {
		return nil, fmt.Errorf("result: column %q not found", name)
	}
	values, ok := c.Values.([]T)
	if !ok {
		var zero T
		return nil, fmt.Errorf("result: column %q holds %s values, not %T", name, c.Type, zero)
	}
	return values, nil
}
