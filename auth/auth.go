// Package auth resolves bearer tokens on the engine RPC service into
// principals and scopes their selects to the databases they were granted.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrMissingToken is returned when a call carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrMalformedHeader is returned when the authorization value is not
	// "Bearer <token>".
	ErrMalformedHeader = errors.New("malformed authorization header")

	// ErrUnauthenticated is returned when no principal matches the token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when a principal selects from a database it was
	// not granted.
	ErrForbidden = errors.New("database access denied")
)

// Principal is the caller a token resolves to.
type Principal struct {
	// Name appears in server logs and IdentityFromContext.
	Name string

	// Databases lists the databases the principal may select from.
	// Empty grants every database.
	Databases []string
}

// CanSelect reports whether p may select from db.
func (p Principal) CanSelect(db string) bool {
	return len(p.Databases) == 0 || slices.Contains(p.Databases, db)
}

// Authenticator resolves a bearer token to a principal.
// Implementations MUST be goroutine-safe.
type Authenticator interface {
	// Authenticate returns the principal owning token. ctx carries the call
	// deadline for lookups against an external store.
	Authenticate(ctx context.Context, token string) (Principal, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, token string) (Principal, error)

// Authenticate implements Authenticator.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (Principal, error) {
	return f(ctx, token)
}

// Tokens is a fixed token to principal table. Every entry is compared in
// constant time so lookups do not leak which prefix matched.
//
// Example:
//
//	a := auth.Tokens{
//	    readerToken: {Name: "reader", Databases: []string{"default"}},
//	    adminToken:  {Name: "admin"},
//	}
type Tokens map[string]Principal

// Authenticate implements Authenticator.
func (t Tokens) Authenticate(ctx context.Context, token string) (Principal, error) {
	var (
		found Principal
		ok    bool
	)
	for candidate, p := range t {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1 {
			found, ok = p, true
		}
	}
	if !ok {
		return Principal{}, ErrUnauthenticated
	}
	return found, nil
}

// StaticToken returns an Authenticator accepting one token for an
// unrestricted principal called name.
func StaticToken(token, name string) Authenticator {
	return Tokens{token: {Name: name}}
}

type principalKey struct{}

// WithPrincipal returns a new context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal authenticated for the call.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// IdentityFromContext returns the principal name, or "" for calls served
// without authentication.
func IdentityFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.Name
}

// CheckSelect returns ErrForbidden when the principal in ctx may not select
// from db. Calls without a principal are allowed.
func CheckSelect(ctx context.Context, db string) error {
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.CanSelect(db) {
		return nil
	}
	return fmt.Errorf("%w: principal %q, database %q", ErrForbidden, p.Name, db)
}

const scheme = "Bearer"

// ParseHeader extracts the token of a "Bearer <token>" value. The scheme is
// matched case-insensitively.
func ParseHeader(value string) (string, error) {
	name, token, found := strings.Cut(strings.TrimSpace(value), " ")
	if !found {
		if strings.EqualFold(name, scheme) {
			return "", ErrMissingToken
		}
		return "", ErrMalformedHeader
	}
	if !strings.EqualFold(name, scheme) {
		return "", ErrMalformedHeader
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Header formats token as an authorization value.
func Header(token string) string {
	return scheme + " " + token
}

// Authenticate resolves token with a and returns ctx carrying the principal.
func Authenticate(ctx context.Context, a Authenticator, token string) (context.Context, error) {
	if token == "" {
		return ctx, ErrMissingToken
	}
	p, err := a.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return ctx, err
		}
		return ctx, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return WithPrincipal(ctx, p), nil
}
