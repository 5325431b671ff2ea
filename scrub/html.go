package scrub

import (
	"github.com/microcosm-cc/bluemonday"

	ev "github.com/next-trace/scg-logged-events/contract/events"
)

// HTML sanitises every string found in params and results with policy. A nil policy strips all
// markup (bluemonday.StrictPolicy).
func HTML(policy *bluemonday.Policy) ev.Scrubber {
	if policy == nil {
		policy = bluemonday.StrictPolicy()
	}

	var sanitize func(v any) any

	sanitize = func(v any) any {
		switch x := v.(type) {
		case string:
			return policy.Sanitize(x)
		case []string:
			out := make([]string, len(x))
			for i, s := range x {
				out[i] = policy.Sanitize(s)
			}

			return out
		case []any:
			out := make([]any, len(x))
			for i, val := range x {
				out[i] = sanitize(val)
			}

			return out
		case map[string]any:
			out := make(map[string]any, len(x))
			for k, val := range x {
				out[k] = sanitize(val)
			}

			return out
		case map[string]string:
			out := make(map[string]string, len(x))
			for k, s := range x {
				out[k] = policy.Sanitize(s)
			}

			return out
		default:
			return v
		}
	}

	return ev.ScrubberFunc(func(rec ev.LogRecord) ev.LogRecord {
		return mapRecord(rec, sanitize)
	})
}
