package wire

import (
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestRequestRoundTrip(t *testing.T) {
	req := &SelectRequest{
		DB:         "default",
		Table:      "t1",
		SelectList: []Expr{Star(), Column("c2")},
		Where: Func("and",
			Func(">", Column("c1"), Int64(3)),
			Func("<", Column("c2"), Double(5.0)),
		),
		Limit: Int64(10),
	}

	data, err := MarshalRequest(req)
	if err != nil {
		t.Fatalf("MarshalRequest failed: %v", err)
	}

	got, err := UnmarshalRequest(data)
	if err != nil {
		t.Fatalf("UnmarshalRequest failed: %v", err)
	}

	if got.DB != "default" || got.Table != "t1" {
		t.Errorf("expected default.t1, got %s.%s", got.DB, got.Table)
	}
	if len(got.SelectList) != 2 {
		t.Fatalf("expected 2 select items, got %d", len(got.SelectList))
	}
	if s := Format(got.SelectList[0]); s != "*" {
		t.Errorf("expected *, got %s", s)
	}
	if s := Format(got.SelectList[1]); s != "c2" {
		t.Errorf("expected c2, got %s", s)
	}
	if s := Format(got.Where); s != "and(>(c1, 3), <(c2, 5.0))" {
		t.Errorf("unexpected where: %s", s)
	}
	if s := Format(got.Limit); s != "10" {
		t.Errorf("expected limit 10, got %s", s)
	}
	if got.Offset != nil {
		t.Errorf("expected nil offset, got %s", Format(got.Offset))
	}
	if got.GroupBy != nil {
		t.Errorf("expected nil group by, got %v", got.GroupBy)
	}

	c, ok := got.Where.(*FunctionExpr).Arguments[1].(*FunctionExpr).Arguments[1].(*ConstantExpr)
	if !ok {
		t.Fatalf("expected constant, got %T", got.Where)
	}
	if c.Type != LiteralDouble || c.F64 != 5.0 {
		t.Errorf("expected Double 5.0, got %s %v", c.Type, c.F64)
	}
}

func TestAbsentExprIsEmptyNode(t *testing.T) {
	data, err := MarshalExpr(nil)
	if err != nil {
		t.Fatalf("MarshalExpr failed: %v", err)
	}

	var m map[string]any
	if err := msgpack.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("expected empty node, got %v", m)
	}

	e, err := UnmarshalExpr(data)
	if err != nil {
		t.Fatalf("UnmarshalExpr failed: %v", err)
	}
	if e != nil {
		t.Errorf("expected nil expression, got %s", Format(e))
	}
}

func TestUnmarshalRejectsMultipleVariants(t *testing.T) {
	data, err := msgpack.Marshal(map[string]any{
		"column_expr":   map[string]any{"column_name": []string{"c1"}, "star": false},
		"constant_expr": map[string]any{"literal_type": 1, "i64_value": 1},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	_, err = UnmarshalExpr(data)
	if !errors.Is(err, ErrMalformedNode) {
		t.Errorf("expected ErrMalformedNode, got %v", err)
	}
}

func TestUnmarshalEmptyData(t *testing.T) {
	if _, err := UnmarshalExpr(nil); err == nil {
		t.Error("expected error for empty data")
	}
	if _, err := UnmarshalResponse([]byte{}); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp := &Response{
		ColumnDefs: []ColumnDef{{ID: 0, Name: "count", Type: ColumnInt64}},
		ColumnFields: []ColumnField{
			{Type: ColumnInt64, Vector: []byte{7, 0, 0, 0, 0, 0, 0, 0}},
		},
	}

	data, err := MarshalResponse(resp)
	if err != nil {
		t.Fatalf("MarshalResponse failed: %v", err)
	}
	got, err := UnmarshalResponse(data)
	if err != nil {
		t.Fatalf("UnmarshalResponse failed: %v", err)
	}

	if len(got.ColumnDefs) != 1 || got.ColumnDefs[0].Name != "count" || got.ColumnDefs[0].Type != ColumnInt64 {
		t.Errorf("unexpected column defs: %+v", got.ColumnDefs)
	}
	if len(got.ColumnFields) != 1 || len(got.ColumnFields[0].Vector) != 8 || got.ColumnFields[0].Vector[0] != 7 {
		t.Errorf("unexpected column fields: %+v", got.ColumnFields)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		expr     Expr
		expected string
	}{
		{"nil", nil, "<empty>"},
		{"star", Star(), "*"},
		{"column", Column("c1"), "c1"},
		{"qualified", &ColumnExpr{Names: []string{"t", "c1"}}, "t.c1"},
		{"int", Int64(-4), "-4"},
		{"double", Double(2), "2.0"},
		{"double fraction", Double(3.14), "3.14"},
		{"string", String("it's"), "'it''s'"},
		{"function", Func("+", Column("a"), Int64(1)), "+(a, 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.expr); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestColumnTypeWidth(t *testing.T) {
	tests := []struct {
		typ   ColumnType
		width int
	}{
		{ColumnBool, 1},
		{ColumnInt8, 1},
		{ColumnInt16, 2},
		{ColumnInt32, 4},
		{ColumnInt64, 8},
		{ColumnFloat32, 4},
		{ColumnFloat64, 8},
		{ColumnPoint, 16},
		{ColumnBox, 32},
		{ColumnVarchar, 0},
		{ColumnEmbedding, 0},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if got := tt.typ.Width(); got != tt.width {
				t.Errorf("expected width %d, got %d", tt.width, got)
			}
		})
	}

	if s := ColumnType(99).String(); s != "ColumnType(99)" {
		t.Errorf("unexpected name for unknown tag: %s", s)
	}
}
