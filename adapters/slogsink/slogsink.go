// Package slogsink posts event log records as structured log/slog entries.
package slogsink

import (
	"context"
	"log/slog"
	"strings"

	ev "github.com/next-trace/scg-logged-events/contract/events"
)

// Message is the log message used for every record.
const Message = "event dispatched"

// Sink writes each record as one slog entry whose level is parsed from the bus level tag.
type Sink struct {
	logger *slog.Logger
}

var _ ev.Sink = (*Sink)(nil)

// New returns a Sink writing to logger, or to slog.Default when logger is nil.
func New(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}

	return &Sink{logger: logger}
}

// Post logs rec. It never fails.
func (s *Sink) Post(ctx context.Context, level string, rec ev.LogRecord) error {
	attrs := []slog.Attr{
		slog.String("busName", rec.BusName),
		slog.String("triggerType", string(rec.TriggerType)),
		slog.String("eventName", rec.EventName),
		slog.Any("params", rec.Params),
	}

	if rec.Results != nil {
		attrs = append(attrs, slog.Any("results", rec.Results))
	}

	s.logger.LogAttrs(ctx, ParseLevel(level), Message, attrs...)

	return nil
}

// ParseLevel maps a level tag such as "debug", "WARN" or "info+2" to a slog.Level.
// Unknown tags map to slog.LevelInfo.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}

	return l
}
