package eventbus

import (
	"context"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
	ev "github.com/next-trace/scg-logged-events/contract/events"
	"github.com/next-trace/scg-logged-events/promise"
)

// Trigger posts a record and then invokes every handler for name in registration order.
// The first handler error stops dispatch and is returned unchanged.
func (b *Bus) Trigger(ctx context.Context, name string, args ...any) error {
	b.post(ctx, b.record(ev.TriggerPlain, name, cloneParams(args)))

	for _, reg := range b.reg.Handlers(name) {
		if _, _, err := b.invoke(ctx, reg, args); err != nil {
			return err
		}
	}

	return nil
}

// TriggerFirst invokes handlers in registration order until one matches and returns its value.
// It returns nil when no handler matches. The record is posted after invocation and carries
// the returned value as its results.
func (b *Bus) TriggerFirst(ctx context.Context, name string, args ...any) (any, error) {
	params := cloneParams(args)

	var result any

	for _, reg := range b.reg.Handlers(name) {
		v, ok, err := b.invoke(ctx, reg, args)
		if err != nil {
			return nil, err
		}

		if ok {
			result = v

			break
		}
	}

	rec := b.record(ev.TriggerFirst, name, params)
	rec.Results = result
	b.post(ctx, rec)

	return result, nil
}

// TriggerResults invokes every handler for name and returns their values in registration
// order. The slice is empty, not nil, when no handler is registered. The record is posted
// after invocation with the full slice as its results.
func (b *Bus) TriggerResults(ctx context.Context, name string, args ...any) ([]any, error) {
	params := cloneParams(args)
	regs := b.reg.Handlers(name)
	results := make([]any, 0, len(regs))

	for _, reg := range regs {
		v, ok, err := b.invoke(ctx, reg, args)
		if err != nil {
			return nil, err
		}

		if ok {
			results = append(results, v)
		}
	}

	rec := b.record(ev.TriggerResults, name, params)
	rec.Results = results
	b.post(ctx, rec)

	return results, nil
}

// TriggerThen posts a record, invokes every handler for name and joins their value-or-promise
// results with promise.All. A handler error becomes a rejected outcome. The returned promise
// resolves to a []any in registration order or rejects with the first rejection observed.
func (b *Bus) TriggerThen(ctx context.Context, name string, args ...any) *promise.Promise {
	b.post(ctx, b.record(ev.TriggerThen, name, cloneParams(args)))

	regs := b.reg.Handlers(name)
	outcomes := make([]any, 0, len(regs))

	for _, reg := range regs {
		v, ok, err := b.invoke(ctx, reg, args)
		if !ok {
			continue
		}

		if err != nil {
			outcomes = append(outcomes, promise.Reject(err))

			continue
		}

		outcomes = append(outcomes, v)
	}

	return promise.All(outcomes)
}

// TriggerDefer schedules Trigger(name, args...) on a later scheduler turn and returns at once.
// The argument slice is captured now; the context keeps its values but not its cancellation.
// A handler error in the deferred dispatch has no caller to reach and is logged.
// A nil ctx is treated as context.Background().
func (b *Bus) TriggerDefer(ctx context.Context, name string, args ...any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if b.Closed() {
		return berr.ErrBusClosed
	}

	captured := append([]any(nil), args...)
	dctx := context.WithoutCancel(ctx)

	return b.sched.Enqueue(func() {
		if b.Closed() {
			b.logger.DebugContext(dctx, "deferred trigger dropped: bus closed", "bus", b.Name(), "event", name)

			return
		}

		if err := b.Trigger(dctx, name, captured...); err != nil {
			b.logger.ErrorContext(dctx, "deferred trigger failed", "bus", b.Name(), "event", name, "error", err)
		}
	})
}

// invoke claims reg and calls its handler. ok is false when reg is a once registration that
// another dispatch already consumed.
func (b *Bus) invoke(ctx context.Context, reg *ev.Registration, args []any) (v any, ok bool, err error) {
	if !reg.Claim() {
		return nil, false, nil
	}

	if reg.Once {
		b.reg.Remove(reg.ID)
	}

	v, err = reg.Invoke(ctx, args...)

	return v, true, err
}
