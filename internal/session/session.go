// Package session carries the engine session id through request contexts
// and gRPC metadata.
package session

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// Header is the gRPC metadata key for the session id.
const Header = "x-infinity-session-id"

type sessionKey struct{}

// WithID returns a new context with the session id stored.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// FromContext retrieves the session id if present.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok && id != ""
}

// Outgoing appends the session id stored in ctx, or fallback when none is
// stored, to the outgoing metadata. Empty ids are not sent.
func Outgoing(ctx context.Context, fallback string) context.Context {
	id, ok := FromContext(ctx)
	if !ok {
		id = fallback
	}
	if id == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, Header, id)
}

// Incoming extracts the session id from incoming metadata and stores it in
// the returned context. The context is unchanged when no id was sent.
func Incoming(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}
	ids := md.Get(Header)
	if len(ids) == 0 || ids[0] == "" {
		return ctx
	}
	return WithID(ctx, ids[0])
}
