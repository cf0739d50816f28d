package instrument

import (
	"context"

	"github.com/google/uuid"
)

type correlationKey struct{}

// SetCorrelationID returns a copy of ctx carrying cID.
func SetCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, correlationKey{}, cID)
}

// GetCorrelationID returns the correlation id stored in ctx, or "".
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	cID, _ := ctx.Value(correlationKey{}).(string)
	return cID
}

// EnsureCorrelationID stores a fresh UUIDv7 in ctx unless one is already set.
func EnsureCorrelationID(ctx context.Context) context.Context {
	if GetCorrelationID(ctx) != "" {
		return ctx
	}

	id, err := uuid.NewV7()
	if err != nil {
		return SetCorrelationID(ctx, uuid.NewString())
	}
	return SetCorrelationID(ctx, id.String())
}
