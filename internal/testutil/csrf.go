package testutil

import (
	"context"
	"net/http"
)

// gorilla/csrf stores the issued token in the request context under this
// key. Handler tests bypass the csrf.Protect middleware, so the token has
// to be seeded directly or csrf.Token(r) returns "".
const csrfTokenKey = "gorilla.csrf.Token"

// WithCSRFToken seeds a stand-in CSRF token into the request context so
// handlers that render forms (via viewdata.NewBaseVM, which embeds the
// token) work outside the middleware chain.
func WithCSRFToken(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), csrfTokenKey, "test-csrf-token")
	return r.WithContext(ctx)
}

// NewAuthenticatedRequestWithCSRF builds a request carrying both a signed-in
// user and a CSRF token, which is what a form-rendering handler sees in
// production.
func NewAuthenticatedRequestWithCSRF(method, target string, user TestUser) *http.Request {
	req := NewAuthenticatedRequest(method, target, user)
	return WithCSRFToken(req)
}
