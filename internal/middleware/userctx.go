package middleware

import (
	"context"

	"github.com/baharkarakas/netbank-dashboard/internal/auth"
)

type userKey struct{}

func WithUser(ctx context.Context, u auth.Identity) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func FromCtx(ctx context.Context) (auth.Identity, bool) {
	u, ok := ctx.Value(userKey{}).(auth.Identity)
	return u, ok
}
