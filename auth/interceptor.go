package auth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// MetadataKey is the gRPC metadata key carrying the bearer token.
const MetadataKey = "authorization"

// TokenFromMetadata returns the bearer token of the incoming call, or ""
// when the caller sent no authorization value.
func TokenFromMetadata(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}
	values := md.Get(MetadataKey)
	if len(values) == 0 {
		return "", nil
	}
	return ParseHeader(values[0])
}

// UnaryServerInterceptor authenticates every unary call with a and stores
// the resolved principal in the handler context. Failures are reported as
// codes.Unauthenticated. A nil a serves calls without a principal.
func UnaryServerInterceptor(a Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if a == nil {
			return handler(ctx, req)
		}
		token, err := TokenFromMetadata(ctx)
		if err == nil {
			ctx, err = Authenticate(ctx, a, token)
		}
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "%s: %v", info.FullMethod, err)
		}
		return handler(ctx, req)
	}
}

// bearerCredentials attaches the token to every outgoing call.
type bearerCredentials struct {
	token  string
	secure bool
}

// Credentials returns per-RPC credentials sending token as a bearer header.
// When requireTLS is false the token is also sent over insecure connections.
func Credentials(token string, requireTLS bool) credentials.PerRPCCredentials {
	return bearerCredentials{token: token, secure: requireTLS}
}

func (c bearerCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{MetadataKey: Header(c.token)}, nil
}

func (c bearerCredentials) RequireTransportSecurity() bool {
	return c.secure
}
