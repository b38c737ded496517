package auth

import (
	"context"

	"github.com/organizai/organizai/internal/model"
)

type authKey struct{}

// ContextWithAuth attaches the authenticated caller to ctx.
func ContextWithAuth(ctx context.Context, caller *model.AuthContext) context.Context {
	return context.WithValue(ctx, authKey{}, caller)
}

// AuthFromContext returns the authenticated caller, or nil.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	caller, _ := ctx.Value(authKey{}).(*model.AuthContext)
	return caller
}

// MustAuthFromContext is AuthFromContext for handlers mounted behind the
// auth middleware. A missing caller is a routing bug and panics.
func MustAuthFromContext(ctx context.Context) *model.AuthContext {
	caller := AuthFromContext(ctx)
	if caller == nil {
		panic("auth: no authenticated caller in context")
	}
	return caller
}
