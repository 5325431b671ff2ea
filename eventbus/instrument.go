package eventbus

import (
	"context"
	"fmt"
	"reflect"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
	ev "github.com/next-trace/scg-logged-events/contract/events"
)

func (b *Bus) record(tt ev.TriggerType, name string, params []any) ev.LogRecord {
	return ev.LogRecord{
		BusName:     b.Name(),
		TriggerType: tt,
		EventName:   name,
		Params:      params,
	}
}

// post scrubs rec when a scrubber is set and hands it to the sink exactly once. The sink runs on
// its own goroutine and the dispatch waits at most the post timeout for it. Sink errors, panics and
// timeouts are logged and swallowed so that logging can never abort or stall a dispatch.
func (b *Bus) post(ctx context.Context, rec ev.LogRecord) {
	b.mu.RLock()
	level, scrubber, timeout := b.level, b.scrubber, b.timeout
	b.mu.RUnlock()

	if scrubber != nil {
		rec = scrubber.Scrub(rec)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: sink panicked: %v", berr.ErrPostFailed, r)
			}
		}()

		done <- b.sink.Post(pctx, level, rec)
	}()

	var err error

	select {
	case err = <-done:
	case <-pctx.Done():
		err = fmt.Errorf("%w: %w", berr.ErrPostFailed, pctx.Err())
	}

	if err != nil {
		b.logger.WarnContext(ctx, "log sink post failed",
			"bus", rec.BusName, "event", rec.EventName, "trigger", string(rec.TriggerType), "error", err)
	}
}

// cloneParams copies every argument one level deep so that later mutation by the caller does not
// change what was logged. Maps and slices get new backing storage; pointers to structs point to a
// copy of the struct. Everything else is already a value.
func cloneParams(args []any) []any {
	params := make([]any, len(args))
	for i, a := range args {
		params[i] = shallowClone(a)
	}

	return params
}

func shallowClone(v any) any {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return v
		}

		m := reflect.MakeMapWithSize(rv.Type(), rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			m.SetMapIndex(iter.Key(), iter.Value())
		}

		return m.Interface()
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}

		s := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(s, rv)

		return s.Interface()
	case reflect.Pointer:
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return v
		}

		p := reflect.New(rv.Elem().Type())
		p.Elem().Set(rv.Elem())

		return p.Interface()
	default:
		return v
	}
}
