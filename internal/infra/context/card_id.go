package context

import (
	"context"
)

const contextKeyCardID = contextKey("cardID")

// CardIDFromContext extracts the id of the card an operation works on.
func CardIDFromContext(ctx context.Context) (string, bool) {
	cardID, ok := ctx.Value(contextKeyCardID).(string)

	return cardID, ok && cardID != ""
}

// WithCardID returns a context carrying the id of the card being processed,
// so every log record of the operation can be correlated with it.
func WithCardID(ctx context.Context, cardID string) context.Context {
	return context.WithValue(ctx, contextKeyCardID, cardID)
}
