package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/hugr-lab/infinity-go/wire"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "infinity.wire.Engine"

const selectMethod = "/" + ServiceName + "/Select"

// Engine executes select requests. Implementations MUST be goroutine-safe.
//
// Engine failures that belong to the query (unknown table, bad expression)
// should be reported through Response.ErrorCode; returned errors become
// gRPC status errors.
type Engine interface {
	Select(ctx context.Context, req *wire.SelectRequest) (*wire.Response, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Engine)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Select", Handler: selectHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "infinity/wire",
}

func selectHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.SelectRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Engine).Select(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: selectMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Engine).Select(ctx, req.(*wire.SelectRequest))
	}
	return interceptor(ctx, in, info, handler)
}
