package auth

import (
	"context"
	"time"
)

// Gate fronts an Authenticator with the artificial delay the login form
// expects, and runs a callback on success.
type Gate struct {
	auth  Authenticator
	delay time.Duration
}

func NewGate(a Authenticator, delay time.Duration) *Gate {
	return &Gate{auth: a, delay: delay}
}

// Login waits out the delay, then authenticates. onSuccess may be nil. A
// mismatch returns ErrInvalidCredentials; the caller may try again.
func (g *Gate) Login(ctx context.Context, id, secret string, onSuccess func(Identity)) (Identity, error) {
	if g.delay > 0 {
		t := time.NewTimer(g.delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return Identity{}, ctx.Err()
		}
	}

	ident, err := g.auth.Authenticate(ctx, id, secret)
	if err != nil {
		return Identity{}, err
	}
	if onSuccess != nil {
		onSuccess(ident)
	}
	return ident, nil
}
