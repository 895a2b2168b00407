// Package handler provides the request interceptor and the handlers that
// consume the principal it binds.
package handler

import (
	"net/http"

	"github.com/m-lab/tokenauth/auth"
)

// Authenticator derives an authentication Result from request headers.
type Authenticator interface {
	Authenticate(h http.Header) auth.Result
}

// Interceptor binds the authenticated principal, if any, to each request.
type Interceptor struct {
	Authenticator
}

// NewInterceptor creates a new Interceptor.
func NewInterceptor(a Authenticator) *Interceptor {
	return &Interceptor{Authenticator: a}
}

// Intercept returns a handler that authenticates the request and then always
// calls next exactly once. It never writes a response; requests without a
// valid token continue as anonymous. Intercept matches alice.Constructor.
func (i *Interceptor) Intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		result := i.Authenticate(req.Header)
		ctx := req.Context()
		if result.Authenticated() {
			ctx = auth.WithPrincipal(ctx, result.Principal)
		} else {
			ctx = auth.WithAnonymous(ctx)
		}
		next.ServeHTTP(rw, req.WithContext(ctx))
	})
}
