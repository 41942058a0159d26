package httpx

import (
	"context"

	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
)

// stateKey is an unexported context key type to avoid collisions across packages.
type stateKey struct{}

// SetStateInContext returns a child context carrying the session state the guard admitted.
func SetStateInContext(ctx context.Context, state domainauth.State) context.Context {
	return context.WithValue(ctx, stateKey{}, state)
}

// GetStateFromContext returns the session state stored by the guard and whether it was present.
func GetStateFromContext(ctx context.Context) (domainauth.State, bool) {
	s, ok := ctx.Value(stateKey{}).(domainauth.State)
	return s, ok
}
