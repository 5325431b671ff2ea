package events

import (
	"context"
	"sync/atomic"
)

// Registration is one handler bound to one event name. Registries own and order them.
type Registration struct {
	ID      string
	Event   string
	Handler Handler
	Owner   any
	Once    bool

	claimed atomic.Bool
}

// Claim reports whether the caller may invoke the handler. Persistent registrations can always
// be claimed; a once registration is claimable exactly one time across all goroutines.
func (r *Registration) Claim() bool {
	if !r.Once {
		return true
	}

	return r.claimed.CompareAndSwap(false, true)
}

// Invoke calls the handler with args.
func (r *Registration) Invoke(ctx context.Context, args ...any) (any, error) {
	return r.Handler(ctx, args...)
}

// Registry is the base publish/subscribe registry the dispatch core reads from.
// Handlers must return registrations in registration order.
type Registry interface {
	On(name string, h Handler, opts ...SubscribeOption) (string, error)
	Once(name string, h Handler, opts ...SubscribeOption) (string, error)
	Off(name string) int
	Remove(id string) bool
	Handlers(name string) []*Registration
}
