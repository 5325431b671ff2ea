package events

import "context"

// Sink receives every LogRecord produced by a bus. The level is a severity tag only; whether
// a record is kept at that level is the sink's decision.
//
// Post is fire-and-forget from the bus point of view: returned errors are logged and dropped.
type Sink interface {
	Post(ctx context.Context, level string, rec LogRecord) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, level string, rec LogRecord) error

// Post calls f(ctx, level, rec).
func (f SinkFunc) Post(ctx context.Context, level string, rec LogRecord) error { return f(ctx, level, rec) }

// NopSink discards every record.
type NopSink struct{}

func (NopSink) Post(ctx context.Context, level string, rec LogRecord) error {
	_ = ctx
	_ = level
	_ = rec

	return nil
}
