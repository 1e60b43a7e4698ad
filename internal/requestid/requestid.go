// Package requestid carries a per-request correlation ID from the API edge to
// outgoing backend calls.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

const Header = "X-Request-ID"

// New returns a fresh random ID.
func New() string {
	return uuid.NewString()
}

// With stores id in ctx.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the ID stored in ctx, or "".
func From(ctx context.Context) string {
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}
