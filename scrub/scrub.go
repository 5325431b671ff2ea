package scrub

import (
	"encoding/json"
	"reflect"
	"strings"

	ev "github.com/next-trace/scg-logged-events/contract/events"
)

// Redacted replaces scrubbed values.
const Redacted = "[REDACTED]"

// Chain applies scrubbers in order. Nil entries are skipped.
func Chain(scrubbers ...ev.Scrubber) ev.Scrubber {
	return ev.ScrubberFunc(func(rec ev.LogRecord) ev.LogRecord {
		for _, s := range scrubbers {
			if s != nil {
				rec = s.Scrub(rec)
			}
		}

		return rec
	})
}

// Keys redacts every map entry or struct field whose key matches one of keys, case-insensitively,
// at any depth of params and results. Maps and slices on the way to a redacted value are copied,
// never modified in place.
//
// Structs, pointers and typed collections are inspected through their JSON form (json tags apply).
// A value holding a match is replaced by that redacted JSON form; a value without one is kept as is.
// Such a value that cannot be encoded is replaced by Redacted as a whole.
func Keys(keys ...string) ev.Scrubber {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			set[strings.ToLower(k)] = struct{}{}
		}
	}

	redact := func(v any) any {
		out, _ := redactKeys(v, set)

		return out
	}

	return ev.ScrubberFunc(func(rec ev.LogRecord) ev.LogRecord {
		if len(set) == 0 {
			return rec
		}

		return mapRecord(rec, redact)
	})
}

// redactKeys returns v with matching keys redacted and whether anything was redacted.
func redactKeys(v any, set map[string]struct{}) (any, bool) {
	switch x := v.(type) {
	case nil, string, []byte:
		return v, false
	case map[string]any:
		hit := false
		out := make(map[string]any, len(x))

		for k, val := range x {
			if _, ok := set[strings.ToLower(k)]; ok {
				out[k] = Redacted
				hit = true

				continue
			}

			var h bool
			out[k], h = redactKeys(val, set)
			hit = hit || h
		}

		return out, hit
	case map[string]string:
		hit := false
		out := make(map[string]string, len(x))

		for k, val := range x {
			if _, ok := set[strings.ToLower(k)]; ok {
				val = Redacted
				hit = true
			}

			out[k] = val
		}

		return out, hit
	case []any:
		hit := false
		out := make([]any, len(x))

		for i, val := range x {
			var h bool
			out[i], h = redactKeys(val, set)
			hit = hit || h
		}

		return out, hit
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Struct, reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Array:
	default:
		return v, false
	}

	generic, err := toJSONValue(v)
	if err != nil {
		return Redacted, true
	}

	out, hit := redactKeys(generic, set)
	if !hit {
		return v, false
	}

	return out, true
}

// toJSONValue converts v to the map[string]any / []any / scalar shape it has as JSON.
func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// mapRecord returns a copy of rec with fn applied to every param and to the results.
func mapRecord(rec ev.LogRecord, fn func(any) any) ev.LogRecord {
	params := make([]any, len(rec.Params))
	for i, p := range rec.Params {
		params[i] = fn(p)
	}

	rec.Params = params

	if rec.Results != nil {
		rec.Results = fn(rec.Results)
	}

	return rec
}
