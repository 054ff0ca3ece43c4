package wire

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrMalformedNode is returned when a decoded expression node does not have
// exactly zero or one populated variant.
var ErrMalformedNode = errors.New("malformed expression node")

// node is the on-wire form of an expression: a map with exactly one of the
// variant keys set. An empty map is the uninitialized node.
type node struct {
	Column   *columnNode   `msgpack:"column_expr,omitempty"`
	Constant *constantNode `msgpack:"constant_expr,omitempty"`
	Function *functionNode `msgpack:"function_expr,omitempty"`
}

type columnNode struct {
	Names []string `msgpack:"column_name"`
	Star  bool     `msgpack:"star"`
}

type constantNode struct {
	LiteralType LiteralType `msgpack:"literal_type"`
	I64         int64       `msgpack:"i64_value,omitempty"`
	F64         float64     `msgpack:"f64_value,omitempty"`
	Str         string      `msgpack:"str_value,omitempty"`
}

type functionNode struct {
	Name      string `msgpack:"function_name"`
	Arguments []node `msgpack:"arguments"`
}

type selectRequest struct {
	DB         string `msgpack:"db_name"`
	Table      string `msgpack:"table_name"`
	SelectList []node `msgpack:"select_list"`
	Where      node   `msgpack:"where_expr"`
	GroupBy    []node `msgpack:"group_by_list"`
	Limit      node   `msgpack:"limit_expr"`
	Offset     node   `msgpack:"offset_expr"`
}

func toNode(e Expr) (node, error) {
	switch ex := e.(type) {
	case nil:
		return node{}, nil
	case *ColumnExpr:
		return node{Column: &columnNode{Names: ex.Names, Star: ex.Star}}, nil
	case *ConstantExpr:
		return node{Constant: &constantNode{
			LiteralType: ex.Type,
			I64:         ex.I64,
			F64:         ex.F64,
			Str:         ex.Str,
		}}, nil
	case *FunctionExpr:
		args, err := toNodes(ex.Arguments)
		if err != nil {
			return node{}, fmt.Errorf("function %q: %w", ex.Name, err)
		}
		return node{Function: &functionNode{Name: ex.Name, Arguments: args}}, nil
	default:
		return node{}, fmt.Errorf("unknown expression type %T", e)
	}
}

func toNodes(exprs []Expr) ([]node, error) {
	if exprs == nil {
		return nil, nil
	}
	nodes := make([]node, 0, len(exprs))
	for i, e := range exprs {
		n, err := toNode(e)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func fromNode(n node) (Expr, error) {
	set := 0
	if n.Column != nil {
		set++
	}
	if n.Constant != nil {
		set++
	}
	if n.Function != nil {
		set++
	}
	if set > 1 {
		return nil, fmt.Errorf("%w: %d variants set", ErrMalformedNode, set)
	}

	switch {
	case n.Column != nil:
		return &ColumnExpr{Names: n.Column.Names, Star: n.Column.Star}, nil
	case n.Constant != nil:
		return &ConstantExpr{
			Type: n.Constant.LiteralType,
			I64:  n.Constant.I64,
			F64:  n.Constant.F64,
			Str:  n.Constant.Str,
		}, nil
	case n.Function != nil:
		args, err := fromNodes(n.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", n.Function.Name, err)
		}
		return &FunctionExpr{Name: n.Function.Name, Arguments: args}, nil
	default:
		return nil, nil
	}
}

func fromNodes(nodes []node) ([]Expr, error) {
	if nodes == nil {
		return nil, nil
	}
	exprs := make([]Expr, 0, len(nodes))
	for i, n := range nodes {
		e, err := fromNode(n)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

// MarshalExpr serializes a single expression. A nil expression produces the
// uninitialized node.
func MarshalExpr(e Expr) ([]byte, error) {
	n, err := toNode(e)
	if err != nil {
		return nil, fmt.Errorf("wire: %w", err)
	}
	return encode(n)
}

// UnmarshalExpr deserializes a single expression produced by MarshalExpr.
func UnmarshalExpr(data []byte) (Expr, error) {
	var n node
	if err := decode(data, &n); err != nil {
		return nil, err
	}
	e, err := fromNode(n)
	if err != nil {
		return nil, fmt.Errorf("wire: %w", err)
	}
	return e, nil
}

// MarshalRequest serializes a select request.
func MarshalRequest(req *SelectRequest) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("wire: nil request")
	}

	raw := selectRequest{DB: req.DB, Table: req.Table}
	var err error
	if raw.SelectList, err = toNodes(req.SelectList); err != nil {
		return nil, fmt.Errorf("wire: select list: %w", err)
	}
	if raw.Where, err = toNode(req.Where); err != nil {
		return nil, fmt.Errorf("wire: where: %w", err)
	}
	if raw.GroupBy, err = toNodes(req.GroupBy); err != nil {
		return nil, fmt.Errorf("wire: group by: %w", err)
	}
	if raw.Limit, err = toNode(req.Limit); err != nil {
		return nil, fmt.Errorf("wire: limit: %w", err)
	}
	if raw.Offset, err = toNode(req.Offset); err != nil {
		return nil, fmt.Errorf("wire: offset: %w", err)
	}
	return encode(raw)
}

// UnmarshalRequest deserializes a select request produced by MarshalRequest.
func UnmarshalRequest(data []byte) (*SelectRequest, error) {
	var raw selectRequest
	if err := decode(data, &raw); err != nil {
		return nil, err
	}

	req := &SelectRequest{DB: raw.DB, Table: raw.Table}
	var err error
	if req.SelectList, err = fromNodes(raw.SelectList); err != nil {
		return nil, fmt.Errorf("wire: select list: %w", err)
	}
	if req.Where, err = fromNode(raw.Where); err != nil {
		return nil, fmt.Errorf("wire: where: %w", err)
	}
	if req.GroupBy, err = fromNodes(raw.GroupBy); err != nil {
		return nil, fmt.Errorf("wire: group by: %w", err)
	}
	if req.Limit, err = fromNode(raw.Limit); err != nil {
		return nil, fmt.Errorf("wire: limit: %w", err)
	}
	if req.Offset, err = fromNode(raw.Offset); err != nil {
		return nil, fmt.Errorf("wire: offset: %w", err)
	}
	return req, nil
}

// MarshalResponse serializes a response envelope.
func MarshalResponse(resp *Response) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("wire: nil response")
	}
	return encode(resp)
}

// UnmarshalResponse deserializes a response envelope.
func UnmarshalResponse(data []byte) (*Response, error) {
	var resp Response
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: failed to encode MessagePack: %w", err)
	}
	return data, nil
}

func decode(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("wire: empty MessagePack data")
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("wire: failed to decode MessagePack: %w", err)
	}
	return nil
}
