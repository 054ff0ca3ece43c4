// Package rpc carries select requests to an engine over gRPC.
//
// Messages are the wire types encoded with msgpack; the codec is registered
// under the content subtype "msgpack" when the package is imported. The
// service exposes a single unary method, infinity.wire.Engine/Select.
//
// Server side, register any Engine on a grpc.Server with NewServer. Client
// side, Dial returns a Client that implements infinity.Transport:
//
//	conn, _ := rpc.Dial(addr, rpc.ClientOptions{Insecure: true, Token: token})
//	client, _ := infinity.NewClient(infinity.ClientConfig{Transport: conn})
package rpc
