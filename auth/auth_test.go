package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestTokens(t *testing.T) {
	tokens := Tokens{
		"token1": {Name: "user1"},
		"token2": {Name: "user2", Databases: []string{"default"}},
	}

	tests := []struct {
		token string
		want  string
		err   error
	}{
		{"token1", "user1", nil},
		{"token2", "user2", nil},
		{"token", "", ErrUnauthenticated},
		{"token12", "", ErrUnauthenticated},
		{"", "", ErrUnauthenticated},
	}
	for _, tt := range tests {
		p, err := tokens.Authenticate(context.Background(), tt.token)
		if !errors.Is(err, tt.err) {
			t.Errorf("Authenticate(%q) err = %v, want %v", tt.token, err, tt.err)
		}
		if p.Name != tt.want {
			t.Errorf("Authenticate(%q) = %q, want %q", tt.token, p.Name, tt.want)
		}
	}
}

func TestTokensConcurrency(t *testing.T) {
	tokens := Tokens{"valid": {Name: "user"}}

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		token := "valid"
		if i%2 == 0 {
			token = "invalid"
		}
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			p, err := tokens.Authenticate(context.Background(), token)
			if token == "valid" && (err != nil || p.Name != "user") {
				errs <- fmt.Errorf("valid token: %q, %v", p.Name, err)
			}
			if token == "invalid" && err == nil {
				errs <- fmt.Errorf("invalid token accepted as %q", p.Name)
			}
		}(token)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestStaticToken(t *testing.T) {
	a := StaticToken("s3cret", "admin")
	p, err := a.Authenticate(context.Background(), "s3cret")
	if err != nil || p.Name != "admin" {
		t.Errorf("Authenticate = %q, %v; want admin, nil", p.Name, err)
	}
	if !p.CanSelect("anything") {
		t.Error("static token principal must be unrestricted")
	}
	if _, err := a.Authenticate(context.Background(), "other"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestCheckSelect(t *testing.T) {
	reader := Principal{Name: "reader", Databases: []string{"default", "logs"}}

	tests := []struct {
		name string
		ctx  context.Context
		db   string
		err  error
	}{
		{"no principal", context.Background(), "billing", nil},
		{"granted", WithPrincipal(context.Background(), reader), "logs", nil},
		{"denied", WithPrincipal(context.Background(), reader), "billing", ErrForbidden},
		{"unrestricted", WithPrincipal(context.Background(), Principal{Name: "admin"}), "billing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSelect(tt.ctx, tt.db)
			if !errors.Is(err, tt.err) {
				t.Errorf("CheckSelect(%q) = %v, want %v", tt.db, err, tt.err)
			}
		})
	}
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		header string
		token  string
		err    error
	}{
		{"Bearer abc", "abc", nil},
		{"bearer abc", "abc", nil},
		{"  Bearer   abc  ", "abc", nil},
		{"Bearer ", "", ErrMissingToken},
		{"Bearer", "", ErrMissingToken},
		{"Basic abc", "", ErrMalformedHeader},
		{"abc", "", ErrMalformedHeader},
		{"", "", ErrMalformedHeader},
	}
	for _, tt := range tests {
		token, err := ParseHeader(tt.header)
		if token != tt.token || !errors.Is(err, tt.err) {
			t.Errorf("ParseHeader(%q) = %q, %v; want %q, %v", tt.header, token, err, tt.token, tt.err)
		}
	}
	if got := Header("abc"); got != "Bearer abc" {
		t.Errorf("Header = %q", got)
	}
}

func TestAuthenticate(t *testing.T) {
	a := StaticToken("t", "alice")

	ctx, err := Authenticate(context.Background(), a, "t")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got := IdentityFromContext(ctx); got != "alice" {
		t.Errorf("identity = %q, want alice", got)
	}
	if p, ok := PrincipalFromContext(ctx); !ok || p.Name != "alice" {
		t.Errorf("PrincipalFromContext = %+v, %v", p, ok)
	}

	if _, err := Authenticate(context.Background(), a, ""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("err = %v, want ErrMissingToken", err)
	}
	if _, err := Authenticate(context.Background(), a, "x"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}

	backend := AuthenticatorFunc(func(ctx context.Context, token string) (Principal, error) {
		return Principal{}, errors.New("store unavailable")
	})
	if _, err := Authenticate(context.Background(), backend, "t"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}

	if got := IdentityFromContext(context.Background()); got != "" {
		t.Errorf("expected empty identity, got %q", got)
	}
}

func TestUnaryServerInterceptor(t *testing.T) {
	interceptor := UnaryServerInterceptor(StaticToken("t", "alice"))
	info := &grpc.UnaryServerInfo{FullMethod: "/infinity.wire.Engine/Select"}
	handler := func(ctx context.Context, req any) (any, error) {
		return IdentityFromContext(ctx), nil
	}

	tests := []struct {
		name   string
		header string
		code   codes.Code
	}{
		{"valid", "Bearer t", codes.OK},
		{"missing", "", codes.Unauthenticated},
		{"wrong scheme", "Basic t", codes.Unauthenticated},
		{"wrong token", "Bearer x", codes.Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.header != "" {
				ctx = metadata.NewIncomingContext(ctx, metadata.Pairs(MetadataKey, tt.header))
			}
			resp, err := interceptor(ctx, nil, info, handler)
			if got := status.Code(err); got != tt.code {
				t.Fatalf("code = %v, want %v (err %v)", got, tt.code, err)
			}
			if tt.code == codes.OK && resp != "alice" {
				t.Errorf("identity = %v, want alice", resp)
			}
		})
	}
}

func TestUnaryServerInterceptorWithoutAuthenticator(t *testing.T) {
	interceptor := UnaryServerInterceptor(nil)
	resp, err := interceptor(context.Background(), "req", &grpc.UnaryServerInfo{},
		func(ctx context.Context, req any) (any, error) { return req, nil })
	if err != nil || resp != "req" {
		t.Errorf("interceptor = %v, %v; want pass-through", resp, err)
	}
}

func TestCredentials(t *testing.T) {
	creds := Credentials("abc", false)
	md, err := creds.GetRequestMetadata(context.Background())
	if err != nil {
		t.Fatalf("GetRequestMetadata failed: %v", err)
	}
	if md[MetadataKey] != "Bearer abc" {
		t.Errorf("metadata = %v", md)
	}
	if creds.RequireTransportSecurity() {
		t.Error("expected insecure transport allowed")
	}
}
