// Package zapsink posts event log records through a zap logger.
package zapsink

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	ev "github.com/next-trace/scg-logged-events/contract/events"
)

// Message is the log message used for every record.
const Message = "event dispatched"

// Sink writes each record as one zap entry.
type Sink struct {
	logger *zap.Logger
}

var _ ev.Sink = (*Sink)(nil)

// New wraps logger. A nil logger yields a no-op sink.
func New(logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sink{logger: logger}
}

// NewFromConfig builds a zap logger the way the services in this stack do: a colourised
// development config or a sampled ISO8601 production config. The returned cleanup flushes it.
func NewFromConfig(environment, logLevel string) (*Sink, func(), error) {
	var config zap.Config

	if environment == "development" {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}

	config.Level = zap.NewAtomicLevelAt(ParseLevel(logLevel))

	logger, err := config.Build()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() { _ = logger.Sync() }

	return New(logger), cleanup, nil
}

// Post logs rec at the parsed level. It never fails.
func (s *Sink) Post(_ context.Context, level string, rec ev.LogRecord) error {
	ce := s.logger.Check(ParseLevel(level), Message)
	if ce == nil {
		return nil
	}

	fields := []zap.Field{
		zap.String("busName", rec.BusName),
		zap.String("triggerType", string(rec.TriggerType)),
		zap.String("eventName", rec.EventName),
		zap.Any("params", rec.Params),
	}

	if rec.Results != nil {
		fields = append(fields, zap.Any("results", rec.Results))
	}

	ce.Write(fields...)

	return nil
}

// ParseLevel maps a level tag to a zap level. Unknown tags map to info; levels above error are
// capped at error so that posting a record can never panic or exit the process.
func ParseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}

	if l > zapcore.ErrorLevel {
		return zapcore.ErrorLevel
	}

	return l
}
