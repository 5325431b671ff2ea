package eventbus

import (
	"fmt"
	"reflect"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
	ev "github.com/next-trace/scg-logged-events/contract/events"
)

// EventScrubber returns the installed scrubber, or nil when records are posted unmodified.
func (b *Bus) EventScrubber() ev.Scrubber {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.scrubber
}

// SetEventScrubber installs the scrubber applied to every record before it is posted.
//
// v may be an events.Scrubber, a func(events.LogRecord) events.LogRecord, or nil (including a
// nil function or nil pointer) to turn scrubbing off. Any other value fails with
// ErrInvalidArgument and leaves the current scrubber in place.
func (b *Bus) SetEventScrubber(v any) error {
	var s ev.Scrubber

	switch x := v.(type) {
	case nil:
	case func(ev.LogRecord) ev.LogRecord:
		if x != nil {
			s = ev.ScrubberFunc(x)
		}
	case ev.Scrubber:
		if !isNil(x) {
			s = x
		}
	default:
		return fmt.Errorf("set event scrubber %T: %w", v, berr.ErrInvalidArgument)
	}

	b.mu.Lock()
	b.scrubber = s
	b.mu.Unlock()

	return nil
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
