package infinity

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/infinity-go/internal/recovery"
	"github.com/hugr-lab/infinity-go/result"
	"github.com/hugr-lab/infinity-go/sqlexpr"
	"github.com/hugr-lab/infinity-go/translate"
	"github.com/hugr-lab/infinity-go/wire"
)

// recordingTransport captures requests and answers with a fixed response.
type recordingTransport struct {
	mu   sync.Mutex
	reqs []*wire.SelectRequest
	resp *wire.Response
	err  error
}

func (r *recordingTransport) Select(ctx context.Context, req *wire.SelectRequest) (*wire.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return r.resp, r.err
}

func countResponse() *wire.Response {
	return &wire.Response{
		ColumnDefs:   []wire.ColumnDef{{ID: 0, Name: "count", Type: wire.ColumnInt32}},
		ColumnFields: []wire.ColumnField{{Type: wire.ColumnInt32, Vector: binary.LittleEndian.AppendUint32(nil, 7)}},
	}
}

func newTestClient(t *testing.T, tr Transport) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{Transport: tr})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestNewClientRequiresTransport(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestSearchRoundTrip(t *testing.T) {
	tr := &recordingTransport{resp: countResponse()}
	client := newTestClient(t, tr)

	res, err := client.Database("default").Table("items").Search().
		Output("*", "c2").
		Filter("c1 > 3 and c2 < 5.0").
		Limit(10).
		ToResult(context.Background())
	if err != nil {
		t.Fatalf("ToResult failed: %v", err)
	}

	if got, want := res.Map(), map[string]any{"count": []int32{7}}; !reflect.DeepEqual(got, want) {
		t.Errorf("result = %v, want %v", got, want)
	}

	if len(tr.reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(tr.reqs))
	}
	req := tr.reqs[0]
	if req.DB != "default" || req.Table != "items" {
		t.Errorf("target = %s.%s, want default.items", req.DB, req.Table)
	}
	if len(req.SelectList) != 2 {
		t.Fatalf("select list has %d entries, want 2", len(req.SelectList))
	}
	if got := wire.Format(req.SelectList[0]); got != "*" {
		t.Errorf("select[0] = %s, want *", got)
	}
	if got := wire.Format(req.SelectList[1]); got != "c2" {
		t.Errorf("select[1] = %s, want c2", got)
	}
	if got, want := wire.Format(req.Where), "and(>(c1, 3), <(c2, 5.0))"; got != want {
		t.Errorf("where = %s, want %s", got, want)
	}
	if got := wire.Format(req.Limit); got != "10" {
		t.Errorf("limit = %s, want 10", got)
	}
	if req.Offset != nil || req.GroupBy != nil {
		t.Errorf("expected no offset or group by, got %v %v", req.Offset, req.GroupBy)
	}
}

func TestBuildRequestErrors(t *testing.T) {
	client := newTestClient(t, &recordingTransport{resp: countResponse()})
	table := client.Database("db").Table("t")
	neg := int64(-1)
	like := "name like 'a%'"
	str := "c1 = 'x'"
	bad := "c1 >"

	tests := []struct {
		name  string
		query Query
		want  error
	}{
		{"no columns", Query{}, ErrInvalidQuery},
		{"negative limit", Query{Columns: []string{"*"}, Limit: &neg}, ErrInvalidQuery},
		{"negative offset", Query{Columns: []string{"*"}, Offset: &neg}, ErrInvalidQuery},
		{"like", Query{Columns: []string{"*"}, Filter: &like}, translate.ErrUnsupportedOperator},
		{"string literal", Query{Columns: []string{"*"}, Filter: &str}, translate.ErrUnsupportedLiteral},
		{"syntax", Query{Columns: []string{"*"}, Filter: &bad}, sqlexpr.ErrSyntax},
		{"function column", Query{Columns: []string{"count(*)"}}, translate.ErrUnsupportedExpression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := table.BuildRequest(tt.query)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if req != nil {
				t.Error("expected no request on error")
			}
		})
	}
}

func TestOffsetAndOperators(t *testing.T) {
	tr := &recordingTransport{resp: countResponse()}
	client, err := NewClient(ClientConfig{
		Transport: tr,
		Operators: translate.DefaultOperators().With(translate.OperatorTable{sqlexpr.OpLike: "like"}),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	req, err := client.Database("db").Table("t").Search().
		Output("c1").
		Filter("c1 like c2").
		Offset(5).
		Request()
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if got := wire.Format(req.Where); got != "like(c1, c2)" {
		t.Errorf("where = %s, want like(c1, c2)", got)
	}
	if got := wire.Format(req.Offset); got != "5" {
		t.Errorf("offset = %s, want 5", got)
	}
	if req.Limit != nil {
		t.Error("expected no limit")
	}
	if len(tr.reqs) != 0 {
		t.Error("Request must not call the transport")
	}
}

func TestExecuteErrors(t *testing.T) {
	transportErr := errors.New("connection refused")

	tests := []struct {
		name string
		tr   Transport
		want error
	}{
		{"transport error", &recordingTransport{err: transportErr}, transportErr},
		{"engine error", &recordingTransport{resp: &wire.Response{ErrorCode: 3013, ErrorMessage: "table not found"}}, ErrEngine},
		{"decode error", &recordingTransport{resp: &wire.Response{
			ColumnDefs:   []wire.ColumnDef{{ID: 0, Name: "x", Type: wire.ColumnInt32}},
			ColumnFields: []wire.ColumnField{{Type: wire.ColumnInt32, Vector: make([]byte, 15)}},
		}}, result.ErrMalformedColumnBuffer},
		{"panic", TransportFunc(func(ctx context.Context, req *wire.SelectRequest) (*wire.Response, error) {
			panic("transport bug")
		}), recovery.ErrPanic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.tr)
			res, err := client.Database("db").Table("t").Search().Output("*").ToResult(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if res != nil {
				t.Error("expected no result on error")
			}
		})
	}
}

func TestEngineErrorDetail(t *testing.T) {
	client := newTestClient(t, &recordingTransport{resp: &wire.Response{ErrorCode: 3013, ErrorMessage: "table not found"}})
	_, err := client.Database("db").Table("t").Search().Output("*").ToResult(context.Background())

	var ee *EngineError
	if !errors.As(err, &ee) {
		t.Fatalf("expected EngineError, got %v", err)
	}
	if ee.Code != 3013 || ee.Message != "table not found" {
		t.Errorf("unexpected detail: %+v", ee)
	}
}

func TestToRecord(t *testing.T) {
	allocator := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer allocator.AssertSize(t, 0)

	client, err := NewClient(ClientConfig{
		Transport: &recordingTransport{resp: countResponse()},
		Allocator: allocator,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	rec, err := client.Database("db").Table("t").Search().Output("count(*)").ToRecord(context.Background())
	if err == nil {
		rec.Release()
		t.Fatal("expected count(*) to be rejected")
	}

	rec, err = client.Database("db").Table("t").Search().Output("*").ToRecord(context.Background())
	if err != nil {
		t.Fatalf("ToRecord failed: %v", err)
	}
	defer rec.Release()

	if rec.NumRows() != 1 {
		t.Fatalf("rows = %d, want 1", rec.NumRows())
	}
	if v := rec.Column(0).(*array.Int32).Value(0); v != 7 {
		t.Errorf("count = %d, want 7", v)
	}
}

func TestQueryCopy(t *testing.T) {
	client := newTestClient(t, &recordingTransport{resp: countResponse()})
	b := client.Database("db").Table("t").Search().Output("a")
	q := b.Query()
	b.Output("b")
	if len(q.Columns) != 1 {
		t.Errorf("Query() must return a copy, got %v", q.Columns)
	}
}

func TestCloseIdempotent(t *testing.T) {
	client, err := NewClient(ClientConfig{Transport: &recordingTransport{resp: countResponse()}})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	client.Close()
	client.Close()
}

func TestCloseRecoversPanic(t *testing.T) {
	var logs bytes.Buffer
	// A client without a decoder panics inside the close callback.
	client := &Client{logger: slog.New(slog.NewTextHandler(&logs, nil))}
	client.Close()

	if out := logs.String(); !strings.Contains(out, "Panic recovered in cleanup") || !strings.Contains(out, "close decoder") {
		t.Errorf("expected logged panic, got %q", out)
	}
}
