// Package auth resolves the principal identifier of an HTTP request.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrMissingCredentials is returned when the request carries no credentials.
	ErrMissingCredentials = errors.New("Access token required")
	// ErrInvalidCredentials is returned when credentials fail verification.
	ErrInvalidCredentials = errors.New("Invalid or expired token")
)

// Authenticator extracts the principal id from a request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying the principal id.
func WithPrincipal(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, principalKey{}, id)
}

// PrincipalFrom returns the principal id stored in ctx.
func PrincipalFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey{}).(string)
	return id, ok && id != ""
}

// DefaultHeader is the header trusted by HeaderAuthenticator when none is configured.
const DefaultHeader = "X-User-ID"

// HeaderAuthenticator trusts an identity header set by an upstream gateway.
type HeaderAuthenticator struct {
	Header string
}

// NewHeader returns an authenticator reading header, or DefaultHeader when empty.
func NewHeader(header string) *HeaderAuthenticator {
	if header == "" {
		header = DefaultHeader
	}
	return &HeaderAuthenticator{Header: header}
}

// Authenticate returns the trimmed header value.
func (a *HeaderAuthenticator) Authenticate(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(a.Header))
	if id == "" {
		return "", ErrMissingCredentials
	}
	return id, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
