package events

import "context"

// Handler is a callback registered against an event name. Positional trigger arguments are
// passed through unchanged. A non-nil error aborts synchronous dispatch and reaches the caller
// as-is. The returned value may be a *promise.Promise when the handler completes asynchronously.
type Handler func(ctx context.Context, args ...any) (any, error)
