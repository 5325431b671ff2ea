package promise

import (
	"context"
	"errors"
	"fmt"
	"sync"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
)

// Promise is a write-once result. It settles exactly once, either resolved with a value or
// rejected with an error. Promise is safe for concurrent use.
type Promise struct {
	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

func newPromise() *Promise { return &Promise{done: make(chan struct{})} }

// New returns a pending promise together with its resolve and reject functions.
// Only the first call to either function has an effect.
func New() (p *Promise, resolve func(v any), reject func(err error)) {
	p = newPromise()

	return p, p.resolve, p.reject
}

// Resolve returns a promise already resolved with v.
func Resolve(v any) *Promise {
	p := newPromise()
	p.resolve(v)

	return p
}

// Reject returns a promise already rejected with err.
func Reject(err error) *Promise {
	p := newPromise()
	p.reject(err)

	return p
}

// Go runs fn on a new goroutine and settles the returned promise with its result.
// A panic inside fn rejects the promise with ErrPromisePanicked.
func Go(fn func() (any, error)) *Promise {
	p := newPromise()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.reject(fmt.Errorf("%w: %v", berr.ErrPromisePanicked, r))
			}
		}()

		v, err := fn()
		if err != nil {
			p.reject(err)

			return
		}

		p.resolve(v)
	}()

	return p
}

// From lifts a value-or-promise into a promise. A *Promise is returned unchanged; a nil
// *Promise and any other value resolve immediately.
func From(v any) *Promise {
	if p, ok := v.(*Promise); ok && p != nil {
		return p
	}

	return Resolve(v)
}

func (p *Promise) resolve(v any) {
	p.once.Do(func() {
		p.value = v
		close(p.done)
	})
}

func (p *Promise) reject(err error) {
	if err == nil {
		err = errors.New("promise rejected with nil error")
	}

	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done is closed once the promise settles.
func (p *Promise) Done() <-chan struct{} { return p.done }

// Settled reports whether the promise has resolved or rejected.
func (p *Promise) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Result returns the settled value and error without blocking. Before settlement it returns
// (nil, nil); check Settled or wait on Done first.
func (p *Promise) Result() (any, error) {
	if !p.Settled() {
		return nil, nil
	}

	return p.value, p.err
}

// Await blocks until the promise settles or ctx is done. Cancelling ctx only stops this wait;
// the promise itself keeps its state and may still settle later.
func (p *Promise) Await(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AwaitAs waits like Await and asserts the resolved value to T.
func AwaitAs[T any](ctx context.Context, p *Promise) (T, error) {
	var zero T

	v, err := p.Await(ctx)
	if err != nil {
		return zero, err
	}

	if v == nil {
		return zero, nil
	}

	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("await %T as %T: %w", v, zero, berr.ErrInvalidArgument)
	}

	return t, nil
}
