package security

import (
	"context"
	"fmt"

	"rentacar-escrow-backend/internal/domain"
)

// Gate verifies that the caller of the current invocation has authenticated
// as the claimed principal. It runs at the top of every state-mutating
// operation, before any state is read for mutation.
type Gate interface {
	Authorize(ctx context.Context, principal domain.Principal) error
}

type contextKey string

const tokenContextKey contextKey = "auth-token"

// ContextWithToken attaches the caller's bearer token to the request context.
// The HTTP middleware sets this; the gate reads it back.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext returns the bearer token attached to the context.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok && token != ""
}

type tokenGate struct {
	tokens TokenManager
}

// NewTokenGate returns a Gate that accepts a caller as principal P only when
// the context carries a valid token issued for P.
func NewTokenGate(tokens TokenManager) Gate {
	return &tokenGate{tokens: tokens}
}

func (g *tokenGate) Authorize(ctx context.Context, principal domain.Principal) error {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no credentials presented", domain.ErrNotAuthorized)
	}
	claims, err := g.tokens.Validate(token)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotAuthorized, err)
	}
	if claims.Principal != principal.String() {
		return fmt.Errorf("%w: token issued for a different principal", domain.ErrNotAuthorized)
	}
	return nil
}
