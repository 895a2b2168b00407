package auth

import (
	"context"

	"github.com/m-lab/tokenauth/auth/jwtverifier"
)

// Authority is an opaque permission or role label. Its meaning belongs to
// downstream authorization logic.
type Authority string

// Principal is the authenticated identity bound to a request. Credentials are
// intentionally absent since the token was already verified.
type Principal struct {
	ID          string
	Authorities []Authority
}

// NewPrincipal maps verified claims to a Principal, preserving authority order.
func NewPrincipal(cl *jwtverifier.Claims) *Principal {
	authorities := make([]Authority, len(cl.Authorities))
	for i, a := range cl.Authorities {
		authorities[i] = Authority(a)
	}
	return &Principal{
		ID:          cl.Subject,
		Authorities: authorities,
	}
}

// HasAuthority reports whether the principal carries the authority a.
func (p *Principal) HasAuthority(a Authority) bool {
	for _, have := range p.Authorities {
		if have == a {
			return true
		}
	}
	return false
}

// String returns the principal identifier.
func (p *Principal) String() string {
	return p.ID
}

type contextKey int

const principalKey contextKey = iota

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// WithAnonymous returns a copy of ctx that carries no principal, hiding any
// principal bound by an earlier handler.
func WithAnonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, principalKey, (*Principal)(nil))
}

// FromContext returns the principal bound to ctx. The boolean is false for
// anonymous requests.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
