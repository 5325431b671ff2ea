package events

// Scrubber transforms a LogRecord before it is posted, typically to redact credentials.
// Implementations must be pure and must not panic.
type Scrubber interface {
	Scrub(rec LogRecord) LogRecord
}

// ScrubberFunc adapts an ordinary function to the Scrubber interface.
type ScrubberFunc func(rec LogRecord) LogRecord

// Scrub calls f(rec).
func (f ScrubberFunc) Scrub(rec LogRecord) LogRecord { return f(rec) }
