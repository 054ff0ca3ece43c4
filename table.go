package infinity

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/infinity-go/internal/recovery"
	"github.com/hugr-lab/infinity-go/result"
	"github.com/hugr-lab/infinity-go/translate"
	"github.com/hugr-lab/infinity-go/wire"
)

// Table is a named table of a database.
type Table struct {
	client *Client
	db     string
	name   string
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Search starts a query against the table.
func (t *Table) Search() *QueryBuilder {
	return &QueryBuilder{table: t}
}

// BuildRequest translates q into a select request for the table.
// The first translation failure aborts the build.
func (t *Table) BuildRequest(q Query) (*wire.SelectRequest, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	tr := t.client.translator
	selectList, err := tr.TranslateColumns(q.Columns)
	if err != nil {
		return nil, fmt.Errorf("infinity: select list: %w", err)
	}

	req := &wire.SelectRequest{
		DB:         t.db,
		Table:      t.name,
		SelectList: selectList,
		Limit:      translate.TranslateBound(q.Limit),
		Offset:     translate.TranslateBound(q.Offset),
	}

	if q.Filter != nil {
		where, err := tr.TranslateFilter(*q.Filter)
		if err != nil {
			return nil, fmt.Errorf("infinity: filter: %w", err)
		}
		req.Where = where
	}

	t.client.logger.Debug("Built select request",
		"db", req.DB,
		"table", req.Table,
		"columns", len(req.SelectList),
		"where", wire.Format(req.Where),
		"limit", wire.Format(req.Limit),
		"offset", wire.Format(req.Offset),
	)
	return req, nil
}

// Execute builds the request for q, sends it and decodes the response.
func (t *Table) Execute(ctx context.Context, q Query) (*result.Result, error) {
	req, err := t.BuildRequest(q)
	if err != nil {
		return nil, err
	}

	resp, err := recovery.Call(t.client.logger, "Select", func() (*wire.Response, error) {
		return t.client.transport.Select(ctx, req)
	})
	if err != nil {
		t.client.logger.Error("Select failed",
			"db", t.db,
			"table", t.name,
			"error", err,
		)
		return nil, fmt.Errorf("infinity: select %s.%s: %w", t.db, t.name, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("infinity: select %s.%s: transport returned no response", t.db, t.name)
	}
	if resp.ErrorCode != 0 {
		return nil, &EngineError{Code: resp.ErrorCode, Message: resp.ErrorMessage}
	}

	return t.client.decoder.Decode(resp)
}

// ExecuteRecord is Execute followed by conversion to an Arrow record.
// The caller must Release the record.
func (t *Table) ExecuteRecord(ctx context.Context, q Query) (arrow.RecordBatch, error) {
	res, err := t.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Record(t.client.allocator)
}
