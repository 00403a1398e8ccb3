package authz

import "context"

// Principal is the authenticated identity an access check evaluates.
// The session layer resolves it once per request and attaches it to the
// request context; the access-check middleware only reads it.
type Principal struct {
	UserID    string
	Email     string
	Role      string
	SubRole   string
	Effective *Effective
}

type contextKey string

const principalContextKey contextKey = "authz.principal"

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext returns the principal attached to the context, or
// nil when the request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey).(*Principal)
	return p
}
