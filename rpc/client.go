package rpc

import (
	"context"
	"crypto/tls"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hugr-lab/infinity-go/auth"
	"github.com/hugr-lab/infinity-go/internal/session"
	"github.com/hugr-lab/infinity-go/wire"
)

// ClientOptions configures Dial.
type ClientOptions struct {
	// Token is sent as a bearer authorization header on every call.
	// OPTIONAL: No authorization header if empty.
	Token string

	// Insecure disables TLS.
	Insecure bool

	// SessionID is sent on calls whose context carries no session id.
	// OPTIONAL: No session header if empty.
	SessionID string

	// MaxMessageSize sets maximum receive message size in bytes.
	// OPTIONAL: If 0, uses gRPC default (4MB).
	MaxMessageSize int

	// DialOptions are appended to the options built from the fields above.
	DialOptions []grpc.DialOption
}

// Client is a Transport for the engine service over gRPC.
// Safe for concurrent use.
type Client struct {
	conn      *grpc.ClientConn
	sessionID string
}

// Dial creates a client for the engine service at target.
// The connection is established lazily on the first call.
//
// Example:
//
//	conn, err := rpc.Dial("localhost:23817", rpc.ClientOptions{Insecure: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//	client, _ := infinity.NewClient(infinity.ClientConfig{Transport: conn})
func Dial(target string, opts ClientOptions) (*Client, error) {
	var dialOpts []grpc.DialOption

	if opts.Insecure {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})))
	}

	if opts.Token != "" {
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(auth.Credentials(opts.Token, !opts.Insecure)))
	}

	callOpts := []grpc.CallOption{grpc.CallContentSubtype(CodecName)}
	if opts.MaxMessageSize > 0 {
		callOpts = append(callOpts, grpc.MaxCallRecvMsgSize(opts.MaxMessageSize))
	}
	dialOpts = append(dialOpts, grpc.WithDefaultCallOptions(callOpts...))
	dialOpts = append(dialOpts, opts.DialOptions...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("rpc: dial %s: %w", target, err)
	}
	return &Client{conn: conn, sessionID: opts.SessionID}, nil
}

// Select sends req to the engine.
func (c *Client) Select(ctx context.Context, req *wire.SelectRequest) (*wire.Response, error) {
	ctx = session.Outgoing(ctx, c.sessionID)

	resp := new(wire.Response)
	if err := c.conn.Invoke(ctx, selectMethod, req, resp); err != nil {
		return nil, fmt.Errorf("rpc: select: %w", err)
	}
	return resp, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
