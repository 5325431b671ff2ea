package scrub

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	ev "github.com/next-trace/scg-logged-events/contract/events"
)

// JSONPaths redacts values addressed by paths in the JSON form of the record, for example
// "params.0.password". A single "#" segment fans out over an array, as in "params.#.token".
// Params and results of a scrubbed record become plain JSON values (map[string]any, []any,
// float64, ...). Records that cannot be encoded, or where no path matches, are returned unchanged.
func JSONPaths(paths ...string) ev.Scrubber {
	return ev.ScrubberFunc(func(rec ev.LogRecord) ev.LogRecord {
		raw, err := json.Marshal(rec)
		if err != nil {
			return rec
		}

		changed := false

		for _, p := range paths {
			for _, concrete := range expand(raw, p) {
				if !gjson.GetBytes(raw, concrete).Exists() {
					continue
				}

				next, err := sjson.SetBytes(raw, concrete, Redacted)
				if err != nil {
					return rec
				}

				raw = next
				changed = true
			}
		}

		if !changed {
			return rec
		}

		var out ev.LogRecord
		if err := json.Unmarshal(raw, &out); err != nil {
			return rec
		}

		return out
	})
}

// expand resolves the first "#" segment of path against raw into one concrete path per element.
func expand(raw []byte, path string) []string {
	prefix, suffix, ok := strings.Cut(path, ".#")
	if !ok {
		return []string{path}
	}

	n := int(gjson.GetBytes(raw, prefix+".#").Int())
	out := make([]string, 0, n)

	for i := 0; i < n; i++ {
		out = append(out, prefix+"."+strconv.Itoa(i)+suffix)
	}

	return out
}
